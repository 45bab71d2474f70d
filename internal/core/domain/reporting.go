package domain

import (
	"github.com/shopspring/decimal"
)

// LedgerReport is the result of aggregating a period window.
// Empty is set when no transaction fell into the window; Total is then meaningless
// and callers render a "nothing recorded" message instead of a zero total.
type LedgerReport struct {
	Period       Period          `json:"period"`
	Window       Window          `json:"window"`
	Transactions []Transaction   `json:"transactions"` // Ascending by CreatedAt
	Total        decimal.Decimal `json:"total"`
	Empty        bool            `json:"empty"`
}

// NewLedgerReport sums the amounts of txns with exact decimal arithmetic.
// txns must already be ordered and filtered to window.
func NewLedgerReport(period Period, window Window, txns []Transaction) *LedgerReport {
	if len(txns) == 0 {
		return &LedgerReport{
			Period:       period,
			Window:       window,
			Transactions: []Transaction{},
			Empty:        true,
		}
	}

	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}

	return &LedgerReport{
		Period:       period,
		Window:       window,
		Transactions: txns,
		Total:        total,
	}
}
