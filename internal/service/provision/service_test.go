package provision

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnaudGHB/glconfig/internal/errs"
	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/lock"
	"github.com/arnaudGHB/glconfig/internal/storage/memory"
)

// countingWriter counts CreateAccount calls to assert provisioning idempotence.
type countingWriter struct {
	inner   *memory.Store
	creates int
}

func (w *countingWriter) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	w.creates++
	return w.inner.CreateAccount(ctx, a)
}

func fixtures(t *testing.T) (*memory.Store, ledger.ChartPosition, ledger.Branch) {
	t.Helper()
	s := memory.New()
	branch := ledger.Branch{ID: uuid.New(), Code: "001", Name: "Head Office", BankID: uuid.New(), BankCode: "05"}
	s.SeedBranch(branch)
	chart := ledger.ChartOfAccount{ID: uuid.New(), AccountNumber: "371", Category: "LIABILITY", Description: "Member deposits"}
	s.SeedChart(chart)
	pos := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "001", Description: "Ordinary deposits"}
	s.SeedPosition(pos)
	return s, pos, branch
}

func TestEnsureAccount_CreatesOnFirstReference(t *testing.T) {
	s, pos, branch := fixtures(t)
	svc := New(s, s, lock.NewLocal())

	acct, err := svc.EnsureAccount(context.Background(), pos, branch)
	require.NoError(t, err)
	assert.Equal(t, "371000050010001", acct.NetworkNumber)
	assert.Equal(t, "371000001001", acct.CreditUnionNumber)
	assert.Equal(t, "371000001", acct.DisplayNumber)
	assert.Equal(t, "Ordinary deposits - Head Office", acct.Description)
	assert.Equal(t, pos.ID, acct.ChartPositionID)
	assert.Equal(t, branch.ID, acct.BranchID)
}

func TestEnsureAccount_Idempotent(t *testing.T) {
	s, pos, branch := fixtures(t)
	w := &countingWriter{inner: s}
	svc := New(s, w, lock.NewLocal())

	first, err := svc.EnsureAccount(context.Background(), pos, branch)
	require.NoError(t, err)
	second, err := svc.EnsureAccount(context.Background(), pos, branch)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, w.creates)
	assert.Equal(t, 1, s.AccountCount())
}

func TestEnsureAccount_BranchScoped(t *testing.T) {
	s, pos, branch := fixtures(t)
	other := ledger.Branch{ID: uuid.New(), Code: "002", Name: "Agency Two", BankID: branch.BankID, BankCode: "05"}
	s.SeedBranch(other)
	svc := New(s, s, lock.NewLocal())

	a1, err := svc.EnsureAccount(context.Background(), pos, branch)
	require.NoError(t, err)
	a2, err := svc.EnsureAccount(context.Background(), pos, other)
	require.NoError(t, err)

	assert.NotEqual(t, a1.ID, a2.ID)
	assert.Equal(t, "371000050010001", a1.NetworkNumber)
	assert.Equal(t, "371000050020001", a2.NetworkNumber)
	assert.Equal(t, 2, s.AccountCount())
}

func TestEnsureAccount_MissingChartReference(t *testing.T) {
	s, _, branch := fixtures(t)
	orphan := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: uuid.New(), PositionNumber: "009", Description: "Orphan"}
	s.SeedPosition(orphan)
	svc := New(s, s, lock.NewLocal())

	_, err := svc.EnsureAccount(context.Background(), orphan, branch)
	require.ErrorIs(t, err, errs.ErrMissingChartReference)
	assert.Equal(t, 0, s.AccountCount())
}

func TestEnsureAccount_RejectsZeroIdentifiers(t *testing.T) {
	s, pos, branch := fixtures(t)
	svc := New(s, s, lock.NewLocal())

	_, err := svc.EnsureAccount(context.Background(), ledger.ChartPosition{}, branch)
	assert.ErrorIs(t, err, errs.ErrInvalid)
	_, err = svc.EnsureAccount(context.Background(), pos, ledger.Branch{})
	assert.ErrorIs(t, err, errs.ErrInvalid)
}
