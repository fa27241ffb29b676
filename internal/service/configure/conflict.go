package configure

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/ledger"
)

// Outcome classifies a determination-account reassignment.
type Outcome int

const (
	// OutcomeClean means neither position has a ledger account at the branch
	// yet; the new account can be provisioned and the entry updated.
	OutcomeClean Outcome = iota
	// OutcomeNoOp means the same physical account already serves both
	// positions. The entry is still updated but the result is flagged.
	OutcomeNoOp
	// OutcomePartial means at least one side's account is already in use by
	// another role. The entry is still updated but the result is flagged.
	OutcomePartial
)

// Conflict is the resolver's verdict for one reassignment.
type Conflict struct {
	Outcome    Outcome
	Diagnostic string
}

// Flagged reports whether the outcome must mark the overall result as not
// fully successful.
func (c Conflict) Flagged() bool { return c.Outcome != OutcomeClean }

// accountLookup is the single read the resolver needs.
type accountLookup interface {
	AccountByPosition(ctx context.Context, positionID, branchID uuid.UUID) (ledger.Account, bool, error)
}

// resolveConflict inspects the ledger accounts bound to the old and new
// positions at the owning branch and classifies the reassignment. Non-clean
// outcomes carry a diagnostic naming the in-use account numbers; they are
// warnings, never hard failures.
func resolveConflict(ctx context.Context, repo accountLookup, oldPositionID, newPositionID, branchID uuid.UUID) (Conflict, error) {
	newAcct, newOK, err := repo.AccountByPosition(ctx, newPositionID, branchID)
	if err != nil {
		return Conflict{}, err
	}
	oldAcct, oldOK, err := repo.AccountByPosition(ctx, oldPositionID, branchID)
	if err != nil {
		return Conflict{}, err
	}
	switch {
	case newOK && oldOK && newAcct.ID == oldAcct.ID:
		return Conflict{
			Outcome:    OutcomeNoOp,
			Diagnostic: fmt.Sprintf("account %s already serves both the current position and the requested one (%s)", oldAcct.NetworkNumber, newAcct.NetworkNumber),
		}, nil
	case newOK && oldOK:
		return Conflict{
			Outcome:    OutcomePartial,
			Diagnostic: fmt.Sprintf("account %s is bound to the requested position and account %s is still bound to the current one", newAcct.NetworkNumber, oldAcct.NetworkNumber),
		}, nil
	case newOK:
		return Conflict{
			Outcome:    OutcomePartial,
			Diagnostic: fmt.Sprintf("account %s is already bound to the requested position", newAcct.NetworkNumber),
		}, nil
	case oldOK:
		return Conflict{
			Outcome:    OutcomePartial,
			Diagnostic: fmt.Sprintf("account %s is still bound to the current position", oldAcct.NetworkNumber),
		}, nil
	default:
		return Conflict{Outcome: OutcomeClean}, nil
	}
}
