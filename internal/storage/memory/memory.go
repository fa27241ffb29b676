package memory

// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing
// the pgx store to be plugged in for real deployments.
import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/errs"
	"github.com/arnaudGHB/glconfig/internal/ledger"
)

// posBranchKey indexes ledger accounts by (chart position, owning branch).
type posBranchKey struct {
	Position uuid.UUID
	Branch   uuid.UUID
}

// Store is an in-memory implementation of the repository+writer interfaces
// used by the services and the API. It is guarded by an RWMutex.
type Store struct {
	mu           sync.RWMutex
	branches     map[uuid.UUID]ledger.Branch
	charts       map[uuid.UUID]ledger.ChartOfAccount
	positions    map[uuid.UUID]ledger.ChartPosition
	accountTypes map[ledger.AccountTypeFamily]ledger.AccountType
	accounts     map[uuid.UUID]ledger.Account
	accountIdx   map[posBranchKey]uuid.UUID
	entries      map[string]ledger.RuleEntry
	books        map[string]ledger.AccountingBook
	events       map[string]ledger.OperationEvent
	attributes   map[uuid.UUID]ledger.OperationEventAttribute
	rootPosition uuid.UUID

	failCommits bool
}

// New constructs an empty in-memory store.
func New() *Store {
	s := &Store{}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	s.branches = make(map[uuid.UUID]ledger.Branch)
	s.charts = make(map[uuid.UUID]ledger.ChartOfAccount)
	s.positions = make(map[uuid.UUID]ledger.ChartPosition)
	s.accountTypes = make(map[ledger.AccountTypeFamily]ledger.AccountType)
	s.accounts = make(map[uuid.UUID]ledger.Account)
	s.accountIdx = make(map[posBranchKey]uuid.UUID)
	s.entries = make(map[string]ledger.RuleEntry)
	s.books = make(map[string]ledger.AccountingBook)
	s.events = make(map[string]ledger.OperationEvent)
	s.attributes = make(map[uuid.UUID]ledger.OperationEventAttribute)
	s.rootPosition = uuid.Nil
	s.failCommits = false
}

// Reset clears all state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// Seed helpers for local dev/tests.

func (s *Store) SeedBranch(b ledger.Branch) {
	s.mu.Lock()
	s.branches[b.ID] = b
	s.mu.Unlock()
}

func (s *Store) SeedChart(c ledger.ChartOfAccount) {
	s.mu.Lock()
	s.charts[c.ID] = c
	s.mu.Unlock()
}

// SeedPosition registers a chart position; a position marked Root becomes the
// designated balancing position.
func (s *Store) SeedPosition(p ledger.ChartPosition) {
	s.mu.Lock()
	s.positions[p.ID] = p
	if p.Root {
		s.rootPosition = p.ID
	}
	s.mu.Unlock()
}

func (s *Store) SeedAccountType(t ledger.AccountType) {
	s.mu.Lock()
	s.accountTypes[t.Family] = t
	s.mu.Unlock()
}

func (s *Store) SeedAccount(a ledger.Account) {
	s.mu.Lock()
	s.accounts[a.ID] = a
	s.accountIdx[posBranchKey{Position: a.ChartPositionID, Branch: a.BranchID}] = a.ID
	s.mu.Unlock()
}

func (s *Store) SeedRuleEntry(e ledger.RuleEntry) {
	s.mu.Lock()
	s.entries[e.EventCode] = e
	s.mu.Unlock()
}

// AccountCount returns the number of ledger accounts held; used by tests to
// assert provisioning idempotence.
func (s *Store) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// FailCommits makes every subsequent CommitBatch fail; used by tests to
// exercise the persistence-failure path.
func (s *Store) FailCommits(fail bool) {
	s.mu.Lock()
	s.failCommits = fail
	s.mu.Unlock()
}

// --- Branch reads ---

// GetBranch returns the branch identity for id.
func (s *Store) GetBranch(_ context.Context, id uuid.UUID) (ledger.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[id]
	if !ok {
		return ledger.Branch{}, errs.ErrNotFound
	}
	return b, nil
}

// --- Chart reads ---

// ChartPosition returns a management position by id.
func (s *Store) ChartPosition(_ context.Context, id uuid.UUID) (ledger.ChartPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	if !ok {
		return ledger.ChartPosition{}, errs.ErrNotFound
	}
	return p, nil
}

// ChartOfAccount returns the chart-level reference data by id.
func (s *Store) ChartOfAccount(_ context.Context, id uuid.UUID) (ledger.ChartOfAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.charts[id]
	if !ok {
		return ledger.ChartOfAccount{}, errs.ErrNotFound
	}
	return c, nil
}

// RootPosition returns the designated balancing position.
func (s *Store) RootPosition(_ context.Context) (ledger.ChartPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rootPosition == uuid.Nil {
		return ledger.ChartPosition{}, errs.ErrRootAccountMissing
	}
	return s.positions[s.rootPosition], nil
}

// AccountTypeRoot returns the account-type root for a family.
func (s *Store) AccountTypeRoot(_ context.Context, fam ledger.AccountTypeFamily) (ledger.AccountType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.accountTypes[fam]
	if !ok {
		return ledger.AccountType{}, errs.ErrNoAccountTypeRoot
	}
	return t, nil
}

// --- Ledger account reads/writes ---

// AccountByPosition returns the account bound to (position, branch) if any.
func (s *Store) AccountByPosition(_ context.Context, positionID, branchID uuid.UUID) (ledger.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.accountIdx[posBranchKey{Position: positionID, Branch: branchID}]
	if !ok {
		return ledger.Account{}, false, nil
	}
	return s.accounts[id], true, nil
}

// CreateAccount persists a new ledger account, enforcing uniqueness per
// (position, branch).
func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := posBranchKey{Position: a.ChartPositionID, Branch: a.BranchID}
	if _, exists := s.accountIdx[key]; exists {
		return ledger.Account{}, errs.ErrConflict
	}
	s.accounts[a.ID] = a
	s.accountIdx[key] = a.ID
	return a, nil
}

// --- Rule entry / book reads ---

// RuleEntriesByProduct returns entries whose event code is prefixed by the
// product id, in stable order by event code.
func (s *Store) RuleEntriesByProduct(_ context.Context, productID string) ([]ledger.RuleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.RuleEntry, 0)
	for _, e := range s.entries {
		if ledger.HasProductPrefix(e.EventCode, productID) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

// RuleEntryByEventCode returns the single entry for an event code.
func (s *Store) RuleEntryByEventCode(_ context.Context, code string) (ledger.RuleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[code]
	if !ok {
		return ledger.RuleEntry{}, errs.ErrNotFound
	}
	return e, nil
}

// AccountingBook returns the book row for id (the event code).
func (s *Store) AccountingBook(_ context.Context, id string) (ledger.AccountingBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return ledger.AccountingBook{}, errs.ErrNotFound
	}
	return b, nil
}

// OperationEventFor returns the event grouping for (product name, account
// type) if one exists.
func (s *Store) OperationEventFor(_ context.Context, productName string, accountTypeID uuid.UUID) (ledger.OperationEvent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventKey(productName, accountTypeID)]
	return e, ok, nil
}

// --- Batch write ---

var errCommitFailed = errors.New("commit failed")

// CommitBatch applies every staged mutation atomically under the store lock.
func (s *Store) CommitBatch(_ context.Context, cs ledger.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCommits {
		return errCommitFailed
	}
	// Uniqueness: at most one entry per event code.
	for _, e := range cs.NewEntries {
		if _, exists := s.entries[e.EventCode]; exists {
			return errs.ErrConflict
		}
	}
	if cs.NewEvent != nil {
		s.events[eventKey(cs.NewEvent.ProductName, cs.NewEvent.AccountTypeID)] = *cs.NewEvent
	}
	for _, e := range cs.NewEntries {
		s.entries[e.EventCode] = e
	}
	for _, e := range cs.UpdatedEntries {
		if _, exists := s.entries[e.EventCode]; !exists {
			return errs.ErrNotFound
		}
		s.entries[e.EventCode] = e
	}
	for _, b := range cs.NewBooks {
		s.books[b.ID] = b
	}
	for _, b := range cs.UpdatedBooks {
		s.books[b.ID] = b
	}
	for _, a := range cs.NewEventAttributes {
		s.attributes[a.ID] = a
	}
	return nil
}

func eventKey(productName string, accountTypeID uuid.UUID) string {
	return productName + "@" + accountTypeID.String()
}

// sortEntries orders entries by event code for deterministic listings.
func sortEntries(entries []ledger.RuleEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].EventCode < entries[j].EventCode })
}
