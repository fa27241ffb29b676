// Package provision ensures a branch-scoped ledger account exists for a chart
// position, creating it on first reference. EnsureAccount is idempotent: the
// existence check runs again after the per-key lock is held, so racing
// configuration runs resolve to the same account.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/acctnum"
	"github.com/arnaudGHB/glconfig/internal/errs"
	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/lock"
)

// Repo defines the read operations needed by the provisioner.
type Repo interface {
	ChartOfAccount(ctx context.Context, id uuid.UUID) (ledger.ChartOfAccount, error)
	AccountByPosition(ctx context.Context, positionID, branchID uuid.UUID) (ledger.Account, bool, error)
}

// Writer defines the write operations needed by the provisioner.
type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
}

// Service provisions branch ledger accounts.
type Service interface {
	EnsureAccount(ctx context.Context, position ledger.ChartPosition, branch ledger.Branch) (ledger.Account, error)
}

type service struct {
	repo   Repo
	writer Writer
	locker lock.Locker
}

// New constructs the provisioner.
func New(repo Repo, writer Writer, locker lock.Locker) Service {
	return &service{repo: repo, writer: writer, locker: locker}
}

// EnsureAccount returns the account bound to (position, branch), creating it
// if absent. Creation fails with ErrMissingChartReference when the position
// has no resolvable parent chart of account.
func (s *service) EnsureAccount(ctx context.Context, position ledger.ChartPosition, branch ledger.Branch) (ledger.Account, error) {
	if position.ID == uuid.Nil || branch.ID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	if acct, ok, err := s.repo.AccountByPosition(ctx, position.ID, branch.ID); err != nil {
		return ledger.Account{}, err
	} else if ok {
		return acct, nil
	}

	release, err := s.locker.Acquire(ctx, provisionKey(position.ID, branch.ID))
	if err != nil {
		return ledger.Account{}, err
	}
	defer release()

	// Re-check under the lock: another run may have created it meanwhile.
	if acct, ok, err := s.repo.AccountByPosition(ctx, position.ID, branch.ID); err != nil {
		return ledger.Account{}, err
	} else if ok {
		return acct, nil
	}

	chart, err := s.repo.ChartOfAccount(ctx, position.ChartOfAccountID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ledger.Account{}, fmt.Errorf("position %s: %w", position.ID, errs.ErrMissingChartReference)
		}
		return ledger.Account{}, err
	}

	acct := ledger.Account{
		ID:                uuid.New(),
		ChartPositionID:   position.ID,
		BranchID:          branch.ID,
		NetworkNumber:     acctnum.Network(chart.AccountNumber, position.PositionNumber, branch.BankCode, branch.Code),
		CreditUnionNumber: acctnum.CreditUnion(chart.AccountNumber, position.PositionNumber, branch.Code),
		DisplayNumber:     acctnum.Display(chart.AccountNumber, position.PositionNumber),
		Description:       position.Description + " - " + branch.Name,
	}
	created, err := s.writer.CreateAccount(ctx, acct)
	if err != nil {
		return ledger.Account{}, err
	}
	return created, nil
}

func provisionKey(positionID, branchID uuid.UUID) string {
	return "provision:" + positionID.String() + ":" + branchID.String()
}
