package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/service/configure"
	"github.com/arnaudGHB/glconfig/internal/service/provision"
)

// BranchReader resolves the branch identity attached to a request.
type BranchReader interface {
	GetBranch(ctx context.Context, id uuid.UUID) (ledger.Branch, error)
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Store composes every read/write operation the API needs. It is a
// convenience union satisfied by both storage backends.
type Store interface {
	configure.Repo
	provision.Repo
	BranchReader
	CommitBatch(ctx context.Context, cs ledger.ChangeSet) error
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
}

// Ensure the service packages keep satisfying their own contracts.
var (
	_ configure.Writer = (Store)(nil)
	_ provision.Writer = (Store)(nil)
)
