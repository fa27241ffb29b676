package postgres

// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit: it maps domain entities to SQL rows
// and runs the necessary statements. The change-set commit runs in a single
// transaction so a configuration run is all-or-nothing. Uniqueness of
// (chart_position_id, branch_id) on accounts and of event_code on
// rule_entries is enforced by database constraints.

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arnaudGHB/glconfig/internal/errs"
	"github.com/arnaudGHB/glconfig/internal/ledger"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Branch reads ---

// GetBranch returns the branch identity for id.
func (s *Store) GetBranch(ctx context.Context, id uuid.UUID) (ledger.Branch, error) {
	var b ledger.Branch
	err := s.pool.QueryRow(ctx, `
		select id, code, name, bank_id, bank_code
		from branches
		where id = $1
	`, id).Scan(&b.ID, &b.Code, &b.Name, &b.BankID, &b.BankCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Branch{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Branch{}, err
	}
	return b, nil
}

// --- Chart reads ---

// ChartPosition returns a management position by id.
func (s *Store) ChartPosition(ctx context.Context, id uuid.UUID) (ledger.ChartPosition, error) {
	var p ledger.ChartPosition
	err := s.pool.QueryRow(ctx, `
		select id, chart_of_account_id, position_number, description, is_root
		from chart_positions
		where id = $1
	`, id).Scan(&p.ID, &p.ChartOfAccountID, &p.PositionNumber, &p.Description, &p.Root)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ChartPosition{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.ChartPosition{}, err
	}
	return p, nil
}

// ChartOfAccount returns chart-level reference data by id.
func (s *Store) ChartOfAccount(ctx context.Context, id uuid.UUID) (ledger.ChartOfAccount, error) {
	var c ledger.ChartOfAccount
	err := s.pool.QueryRow(ctx, `
		select id, account_number, category, description
		from chart_of_accounts
		where id = $1
	`, id).Scan(&c.ID, &c.AccountNumber, &c.Category, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ChartOfAccount{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.ChartOfAccount{}, err
	}
	return c, nil
}

// RootPosition returns the designated balancing position.
func (s *Store) RootPosition(ctx context.Context) (ledger.ChartPosition, error) {
	var p ledger.ChartPosition
	err := s.pool.QueryRow(ctx, `
		select id, chart_of_account_id, position_number, description, is_root
		from chart_positions
		where is_root
		limit 1
	`).Scan(&p.ID, &p.ChartOfAccountID, &p.PositionNumber, &p.Description, &p.Root)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ChartPosition{}, errs.ErrRootAccountMissing
	}
	if err != nil {
		return ledger.ChartPosition{}, err
	}
	return p, nil
}

// AccountTypeRoot returns the account-type root for a family.
func (s *Store) AccountTypeRoot(ctx context.Context, fam ledger.AccountTypeFamily) (ledger.AccountType, error) {
	var t ledger.AccountType
	err := s.pool.QueryRow(ctx, `
		select id, name, family
		from account_types
		where family = $1 and parent_id is null
		limit 1
	`, string(fam)).Scan(&t.ID, &t.Name, &t.Family)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.AccountType{}, errs.ErrNoAccountTypeRoot
	}
	if err != nil {
		return ledger.AccountType{}, err
	}
	return t, nil
}

// --- Ledger account reads/writes ---

// AccountByPosition returns the account bound to (position, branch) if any.
func (s *Store) AccountByPosition(ctx context.Context, positionID, branchID uuid.UUID) (ledger.Account, bool, error) {
	var a ledger.Account
	err := s.pool.QueryRow(ctx, `
		select id, chart_position_id, branch_id, network_number, credit_union_number, display_number, description
		from accounts
		where chart_position_id = $1 and branch_id = $2
	`, positionID, branchID).Scan(&a.ID, &a.ChartPositionID, &a.BranchID, &a.NetworkNumber, &a.CreditUnionNumber, &a.DisplayNumber, &a.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, false, nil
	}
	if err != nil {
		return ledger.Account{}, false, err
	}
	return a, true, nil
}

// CreateAccount inserts a ledger account row. The unique index on
// (chart_position_id, branch_id) surfaces duplicate provisioning as a
// conflict instead of a second row.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.pool.Exec(ctx, `
		insert into accounts (id, chart_position_id, branch_id, network_number, credit_union_number, display_number, description)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, a.ID, a.ChartPositionID, a.BranchID, a.NetworkNumber, a.CreditUnionNumber, a.DisplayNumber, a.Description)
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// --- Rule entry reads ---

// RuleEntriesByProduct returns entries whose event code is prefixed by the
// product id, ordered by event code.
func (s *Store) RuleEntriesByProduct(ctx context.Context, productID string) ([]ledger.RuleEntry, error) {
	rows, err := s.pool.Query(ctx, `
		select id, product_id, rubrique, event_code, determination_account_id, balancing_account_id, direction, account_type_id
		from rule_entries
		where product_id = $1
		order by event_code
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.RuleEntry, 0)
	for rows.Next() {
		var e ledger.RuleEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Rubrique, &e.EventCode, &e.DeterminationAccountID, &e.BalancingAccountID, &e.Direction, &e.AccountTypeID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RuleEntryByEventCode returns the single entry for an event code.
func (s *Store) RuleEntryByEventCode(ctx context.Context, code string) (ledger.RuleEntry, error) {
	var e ledger.RuleEntry
	err := s.pool.QueryRow(ctx, `
		select id, product_id, rubrique, event_code, determination_account_id, balancing_account_id, direction, account_type_id
		from rule_entries
		where event_code = $1
	`, code).Scan(&e.ID, &e.ProductID, &e.Rubrique, &e.EventCode, &e.DeterminationAccountID, &e.BalancingAccountID, &e.Direction, &e.AccountTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.RuleEntry{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.RuleEntry{}, err
	}
	return e, nil
}

// OperationEventFor returns the event grouping for (product name, account type).
func (s *Store) OperationEventFor(ctx context.Context, productName string, accountTypeID uuid.UUID) (ledger.OperationEvent, bool, error) {
	var e ledger.OperationEvent
	err := s.pool.QueryRow(ctx, `
		select id, code, product_name, account_type_id
		from operation_events
		where product_name = $1 and account_type_id = $2
	`, productName, accountTypeID).Scan(&e.ID, &e.Code, &e.ProductName, &e.AccountTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.OperationEvent{}, false, nil
	}
	if err != nil {
		return ledger.OperationEvent{}, false, err
	}
	return e, true, nil
}

// --- Batch write ---

// CommitBatch applies a change set inside one transaction.
func (s *Store) CommitBatch(ctx context.Context, cs ledger.ChangeSet) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if cs.NewEvent != nil {
		if _, err := tx.Exec(ctx, `
			insert into operation_events (id, code, product_name, account_type_id)
			values ($1,$2,$3,$4)
			on conflict (product_name, account_type_id) do nothing
		`, cs.NewEvent.ID, cs.NewEvent.Code, cs.NewEvent.ProductName, cs.NewEvent.AccountTypeID); err != nil {
			return err
		}
	}
	for _, e := range cs.NewEntries {
		if _, err := tx.Exec(ctx, `
			insert into rule_entries (id, product_id, rubrique, event_code, determination_account_id, balancing_account_id, direction, account_type_id)
			values ($1,$2,$3,$4,$5,$6,$7,$8)
		`, e.ID, e.ProductID, e.Rubrique, e.EventCode, e.DeterminationAccountID, e.BalancingAccountID, e.Direction, e.AccountTypeID); err != nil {
			return err
		}
	}
	for _, e := range cs.UpdatedEntries {
		ct, err := tx.Exec(ctx, `
			update rule_entries
			set determination_account_id = $1, direction = $2
			where event_code = $3
		`, e.DeterminationAccountID, e.Direction, e.EventCode)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
	}
	for _, b := range cs.NewBooks {
		if _, err := tx.Exec(ctx, `
			insert into accounting_books (id, product_id, rubrique, chart_position_id)
			values ($1,$2,$3,$4)
		`, b.ID, b.ProductID, b.Rubrique, b.ChartPositionID); err != nil {
			return err
		}
	}
	for _, b := range cs.UpdatedBooks {
		if _, err := tx.Exec(ctx, `
			update accounting_books
			set chart_position_id = $1
			where id = $2
		`, b.ChartPositionID, b.ID); err != nil {
			return err
		}
	}
	for _, a := range cs.NewEventAttributes {
		if _, err := tx.Exec(ctx, `
			insert into operation_event_attributes (id, operation_event_id, name, rubrique)
			values ($1,$2,$3,$4)
		`, a.ID, a.OperationEventID, a.Name, a.Rubrique); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
