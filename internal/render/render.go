// Package render turns ledger read models into Markdown tables and shows
// them on a terminal with glamour.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"

	"github.com/mmynk/utang/internal/calculator"
	"github.com/mmynk/utang/internal/currency"
	"github.com/mmynk/utang/internal/models"
)

const dateLayout = "2006-01-02 15:04"

// Renderer writes reports to w. Output is styled by glamour when w is a
// terminal and left as plain Markdown otherwise.
type Renderer struct {
	w        io.Writer
	currency string
	styled   bool
}

// New creates a Renderer that formats money in the given currency.
func New(w io.Writer, currencyCode string) *Renderer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd())
	}
	return &Renderer{w: w, currency: currencyCode, styled: styled}
}

// Money formats an amount in minor units.
func (r *Renderer) Money(amount int64) string {
	return currency.Format(amount, r.currency)
}

// Statement shows a user's balance and recent transactions.
func (r *Renderer) Statement(stmt *models.Statement) error {
	var b strings.Builder
	fmt.Fprintf(&b, "**Name**: %s  \n", escape(stmt.User.Username))
	fmt.Fprintf(&b, "**Balance**: %s\n\n", r.Money(stmt.User.Balance))

	if len(stmt.Transactions) == 0 {
		b.WriteString("_No transactions._\n")
		return r.write(b.String())
	}

	b.WriteString("| # | Type | Amount | Date | Description |\n")
	b.WriteString("|---|------|-------:|------|-------------|\n")
	for i, t := range stmt.Transactions {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, t.Kind, r.Money(t.Amount), t.Date.Format(dateLayout), description(t.Description))
	}
	return r.write(b.String())
}

// History shows recent transactions across all users.
func (r *Renderer) History(transactions []*models.Transaction) error {
	var b strings.Builder
	b.WriteString("**Recent transactions**\n\n")

	if len(transactions) == 0 {
		b.WriteString("_No transactions._\n")
		return r.write(b.String())
	}

	b.WriteString("| # | Name | Type | Amount | Date | Description |\n")
	b.WriteString("|---|------|------|-------:|------|-------------|\n")
	for i, t := range transactions {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, escape(t.Username), t.Kind, r.Money(t.Amount), t.Date.Format(dateLayout), description(t.Description))
	}
	return r.write(b.String())
}

// Balances shows every user's balance and the totals.
func (r *Renderer) Balances(users []*models.User, totals calculator.Totals) error {
	var b strings.Builder

	if len(users) == 0 {
		b.WriteString("_No counterparties yet._\n")
		return r.write(b.String())
	}

	b.WriteString("| Name | Balance |\n")
	b.WriteString("|------|--------:|\n")
	for _, u := range users {
		fmt.Fprintf(&b, "| %s | %s |\n", escape(u.Username), r.Money(u.Balance))
	}

	fmt.Fprintf(&b, "\n**Paid or lent out**: %s  \n", r.Money(totals.Positive))
	fmt.Fprintf(&b, "**Received or borrowed**: %s  \n", r.Money(totals.Negative))
	fmt.Fprintf(&b, "**Net**: %s  \n", r.Money(totals.Net))
	fmt.Fprintf(&b, "**Settled**: %d\n", totals.Settled)
	return r.write(b.String())
}

// Drifts shows the result of a reconciliation pass.
func (r *Renderer) Drifts(drifts []calculator.Drift) error {
	var b strings.Builder

	if len(drifts) == 0 {
		b.WriteString("All balances match the transaction log.\n")
		return r.write(b.String())
	}

	b.WriteString("| Name | Stored | From log | Difference |\n")
	b.WriteString("|------|-------:|---------:|-----------:|\n")
	for _, d := range drifts {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escape(d.Username), r.Money(d.Stored), r.Money(d.Computed), r.Money(d.Difference()))
	}
	return r.write(b.String())
}

func (r *Renderer) write(md string) error {
	if !r.styled {
		_, err := io.WriteString(r.w, md)
		return err
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := tr.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(r.w, out)
	return err
}

func description(s string) string {
	if s == "" {
		return "-"
	}
	return escape(s)
}

// escape keeps user text from breaking the table layout.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
