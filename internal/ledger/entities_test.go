package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventCode(t *testing.T) {
	code := EventCode("P1", "Loan_Principal_Account")
	assert.Equal(t, "P1@Loan_Principal_Account", code)

	productID, rub, ok := SplitEventCode(code)
	assert.True(t, ok)
	assert.Equal(t, "P1", productID)
	assert.Equal(t, "Loan_Principal_Account", rub)

	_, _, ok = SplitEventCode("no-separator")
	assert.False(t, ok)
}

func TestHasProductPrefix(t *testing.T) {
	assert.True(t, HasProductPrefix("P1@Loan_Principal_Account", "P1"))
	// "P1" must not match "P10"'s entries.
	assert.False(t, HasProductPrefix("P10@Loan_Principal_Account", "P1"))
	assert.False(t, HasProductPrefix("P2@Loan_Principal_Account", "P1"))
}
