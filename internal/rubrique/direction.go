package rubrique

import (
	"strings"

	"github.com/arnaudGHB/glconfig/internal/ledger"
)

// DirectionFor maps a rubrique name to its booking direction. The policy is a
// substring match evaluated in a fixed order; names matching none of the
// patterns resolve to DirectionUnresolved, which callers must surface rather
// than guess a side.
func DirectionFor(name string) ledger.BookingDirection {
	switch {
	case strings.Contains(name, "Expense_Account"):
		return ledger.DirectionDebit
	case strings.Contains(name, "Saving_Account"):
		return ledger.DirectionCredit
	case strings.Contains(name, "Interest_Account"):
		return ledger.DirectionDebit
	default:
		return ledger.DirectionUnresolved
	}
}
