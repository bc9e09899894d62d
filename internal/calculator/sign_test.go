package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/utang/internal/models"
)

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name      string
		kind      models.Kind
		magnitude int64
		want      int64
		wantErr   error
	}{
		{name: "pay is positive", kind: models.KindPay, magnitude: 1000, want: 1000},
		{name: "lend is positive", kind: models.KindLend, magnitude: 200, want: 200},
		{name: "receive is negative", kind: models.KindReceive, magnitude: 300, want: -300},
		{name: "borrow is negative", kind: models.KindBorrow, magnitude: 500, want: -500},
		{name: "zero magnitude", kind: models.KindPay, magnitude: 0, wantErr: ErrZeroMagnitude},
		{name: "negative magnitude", kind: models.KindPay, magnitude: -5, wantErr: ErrNegativeMagnitude},
		{name: "unknown kind", kind: models.Kind("gift"), magnitude: 5, wantErr: ErrUnknownKind},
		{name: "empty kind", kind: models.Kind(""), magnitude: 5, wantErr: ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedAmount(tt.kind, tt.magnitude)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SignedAmount(%q, %d) error = %v, want %v", tt.kind, tt.magnitude, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SignedAmount(%q, %d) unexpected error: %v", tt.kind, tt.magnitude, err)
			}
			if got != tt.want {
				t.Errorf("SignedAmount(%q, %d) = %d, want %d", tt.kind, tt.magnitude, got, tt.want)
			}
		})
	}
}

func TestAddBalance(t *testing.T) {
	if got, err := AddBalance(100, -250); err != nil || got != -150 {
		t.Errorf("AddBalance(100, -250) = %d, %v; want -150, nil", got, err)
	}
	if _, err := AddBalance(math.MaxInt64, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("AddBalance(MaxInt64, 1) error = %v, want ErrOverflow", err)
	}
	if _, err := AddBalance(math.MinInt64, -1); !errors.Is(err, ErrOverflow) {
		t.Errorf("AddBalance(MinInt64, -1) error = %v, want ErrOverflow", err)
	}
	if got, err := AddBalance(math.MinInt64, math.MaxInt64); err != nil || got != -1 {
		t.Errorf("AddBalance(MinInt64, MaxInt64) = %d, %v; want -1, nil", got, err)
	}
}
