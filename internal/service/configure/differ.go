package configure

import (
	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/ledger"
)

// Mapping is one requested rubrique -> chart position binding.
type Mapping struct {
	Rubrique   string
	PositionID uuid.UUID
}

// PendingUpdate pairs an existing rule entry with the position it should be
// reassigned to.
type PendingUpdate struct {
	Entry         ledger.RuleEntry
	NewPositionID uuid.UUID
}

// Diff compares the requested mappings against a product's existing rule
// entries. Every requested rubrique lands in exactly one bucket: unchanged
// (dropped from both results), toUpdate (entry exists with a different
// determination account) or toCreate (no entry yet). Result order follows the
// request order.
func Diff(existing []ledger.RuleEntry, requested []Mapping, productID string) (toUpdate []PendingUpdate, toCreate []Mapping) {
	byCode := make(map[string]ledger.RuleEntry, len(existing))
	for _, e := range existing {
		byCode[e.EventCode] = e
	}
	for _, m := range requested {
		entry, ok := byCode[ledger.EventCode(productID, m.Rubrique)]
		switch {
		case !ok:
			toCreate = append(toCreate, m)
		case entry.DeterminationAccountID == m.PositionID:
			// unchanged
		default:
			toUpdate = append(toUpdate, PendingUpdate{Entry: entry, NewPositionID: m.PositionID})
		}
	}
	return toUpdate, toCreate
}
