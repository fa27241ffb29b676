package configure

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/arnaudGHB/glconfig/internal/ledger"
)

func entry(productID, rub string, pos uuid.UUID) ledger.RuleEntry {
	return ledger.RuleEntry{
		ID:                     uuid.New(),
		ProductID:              productID,
		Rubrique:               rub,
		EventCode:              ledger.EventCode(productID, rub),
		DeterminationAccountID: pos,
	}
}

func TestDiff_Buckets(t *testing.T) {
	posA, posB, posC := uuid.New(), uuid.New(), uuid.New()
	existing := []ledger.RuleEntry{
		entry("P1", "Loan_Principal_Account", posA),
		entry("P1", "Loan_Interest_Account", posB),
	}
	requested := []Mapping{
		{Rubrique: "Loan_Principal_Account", PositionID: posA}, // unchanged
		{Rubrique: "Loan_Interest_Account", PositionID: posC},  // reassigned
		{Rubrique: "Loan_Fee_Account", PositionID: posB},       // new
	}

	toUpdate, toCreate := Diff(existing, requested, "P1")

	assert.Len(t, toUpdate, 1)
	assert.Equal(t, "Loan_Interest_Account", toUpdate[0].Entry.Rubrique)
	assert.Equal(t, posC, toUpdate[0].NewPositionID)
	assert.Equal(t, posB, toUpdate[0].Entry.DeterminationAccountID)

	assert.Len(t, toCreate, 1)
	assert.Equal(t, "Loan_Fee_Account", toCreate[0].Rubrique)
}

func TestDiff_EveryRequestedRubriqueLandsOnce(t *testing.T) {
	posA, posB := uuid.New(), uuid.New()
	existing := []ledger.RuleEntry{entry("P1", "Loan_Principal_Account", posA)}
	requested := []Mapping{
		{Rubrique: "Loan_Principal_Account", PositionID: posB},
		{Rubrique: "Loan_Interest_Account", PositionID: posA},
		{Rubrique: "Loan_Fee_Account", PositionID: posB},
	}

	toUpdate, toCreate := Diff(existing, requested, "P1")

	seen := map[string]int{}
	for _, pu := range toUpdate {
		seen[pu.Entry.Rubrique]++
	}
	for _, m := range toCreate {
		seen[m.Rubrique]++
	}
	assert.Len(t, seen, 3)
	for rub, n := range seen {
		assert.Equal(t, 1, n, "rubrique %s", rub)
	}
}

func TestDiff_IdenticalRerunIsEmpty(t *testing.T) {
	posA, posB := uuid.New(), uuid.New()
	existing := []ledger.RuleEntry{
		entry("P1", "Loan_Principal_Account", posA),
		entry("P1", "Loan_Interest_Account", posB),
	}
	requested := []Mapping{
		{Rubrique: "Loan_Principal_Account", PositionID: posA},
		{Rubrique: "Loan_Interest_Account", PositionID: posB},
	}

	toUpdate, toCreate := Diff(existing, requested, "P1")
	assert.Empty(t, toUpdate)
	assert.Empty(t, toCreate)
}

func TestDiff_OtherProductsEntriesIgnored(t *testing.T) {
	posA := uuid.New()
	existing := []ledger.RuleEntry{entry("P2", "Loan_Principal_Account", posA)}
	requested := []Mapping{{Rubrique: "Loan_Principal_Account", PositionID: posA}}

	toUpdate, toCreate := Diff(existing, requested, "P1")
	assert.Empty(t, toUpdate)
	assert.Len(t, toCreate, 1)
}
