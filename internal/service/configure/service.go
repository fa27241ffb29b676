// Package configure implements the accounting-rule reconciliation engine: it
// resolves a product's account-type family, diffs the requested rubrique
// mappings against existing rule entries, provisions branch ledger accounts,
// detects reuse conflicts and commits the resulting change set as one unit.
package configure

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/audit"
	"github.com/arnaudGHB/glconfig/internal/errs"
	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/rubrique"
	"github.com/arnaudGHB/glconfig/internal/service/provision"
)

// Repo defines the read operations needed by the orchestrator.
type Repo interface {
	AccountTypeRoot(ctx context.Context, fam ledger.AccountTypeFamily) (ledger.AccountType, error)
	RootPosition(ctx context.Context) (ledger.ChartPosition, error)
	ChartPosition(ctx context.Context, id uuid.UUID) (ledger.ChartPosition, error)
	RuleEntriesByProduct(ctx context.Context, productID string) ([]ledger.RuleEntry, error)
	AccountByPosition(ctx context.Context, positionID, branchID uuid.UUID) (ledger.Account, bool, error)
	OperationEventFor(ctx context.Context, productName string, accountTypeID uuid.UUID) (ledger.OperationEvent, bool, error)
}

// Writer persists a change set transactionally: all rows or none.
type Writer interface {
	CommitBatch(ctx context.Context, cs ledger.ChangeSet) error
}

// ConfigureRequest is the inbound configuration operation.
type ConfigureRequest struct {
	ProductID   string
	ProductName string
	ProductType ledger.ProductType
	Mappings    []Mapping
	Branch      ledger.Branch
	Actor       string
}

// UpdateRequest reassigns determination accounts for an existing product.
type UpdateRequest struct {
	ProductID   string
	ProductName string
	ProductType ledger.ProductType
	Mappings    []Mapping
	Branch      ledger.Branch
	Actor       string
}

// ConfigureResult reports the outcome of a configuration run. A run with
// warnings still succeeds; NotUpdated lists the rubriques that could not be
// cleanly applied.
type ConfigureResult struct {
	PrincipalAccountNumber  string
	ChartPositionID         uuid.UUID
	NotUpdated              []string
	WasCompletelySuccessful bool
	Message                 string
}

// UpdateResult reports the outcome of an update run.
type UpdateResult struct {
	ItemsCreated            int
	HasNewAccountingBooks   bool
	NotUpdated              []string
	WasCompletelySuccessful bool
}

// Service is the product accounting configuration entry point.
type Service interface {
	Configure(ctx context.Context, req ConfigureRequest) (ConfigureResult, error)
	Update(ctx context.Context, req UpdateRequest) (UpdateResult, error)
}

type service struct {
	repo        Repo
	writer      Writer
	provisioner provision.Service
	audit       audit.Sink
}

// New constructs the orchestrator.
func New(repo Repo, writer Writer, provisioner provision.Service, sink audit.Sink) Service {
	return &service{repo: repo, writer: writer, provisioner: provisioner, audit: sink}
}

// Configure applies a full rubrique mapping for a product: new rubriques get
// rule entries, books and provisioned accounts; changed rubriques go through
// the update path first. Re-running with an identical mapping is a no-op that
// returns the already-resolved principal account.
func (s *service) Configure(ctx context.Context, req ConfigureRequest) (ConfigureResult, error) {
	if err := s.validate(req.ProductID, req.ProductName, req.Mappings, req.Branch, req.ProductType); err != nil {
		return ConfigureResult{}, err
	}
	fam := ledger.FamilyForProduct(req.ProductType)
	root, err := s.repo.AccountTypeRoot(ctx, fam)
	if err != nil {
		s.auditReject(ctx, req.Actor, "product.accounting.configure", req.ProductID, err)
		return ConfigureResult{}, err
	}
	balancing, err := s.repo.RootPosition(ctx)
	if err != nil {
		s.auditReject(ctx, req.Actor, "product.accounting.configure", req.ProductID, err)
		return ConfigureResult{}, err
	}
	existing, err := s.repo.RuleEntriesByProduct(ctx, req.ProductID)
	if err != nil {
		return ConfigureResult{}, err
	}
	toUpdate, toCreate := Diff(existing, req.Mappings, req.ProductID)

	res := ConfigureResult{WasCompletelySuccessful: true}
	var cs ledger.ChangeSet

	if len(toUpdate) > 0 {
		notUpdated, err := s.stageUpdates(ctx, req.Branch, toUpdate, &cs)
		if err != nil {
			return ConfigureResult{}, err
		}
		if len(notUpdated) > 0 {
			res.NotUpdated = append(res.NotUpdated, notUpdated...)
			res.WasCompletelySuccessful = false
		}
	}

	principal := rubrique.Principal(req.ProductType)
	if len(toCreate) > 0 {
		staged, notUpdated, err := s.stageCreates(ctx, req.ProductID, req.ProductName, req.Branch, root, balancing, toCreate, &cs)
		if err != nil {
			return ConfigureResult{}, err
		}
		if len(notUpdated) > 0 {
			res.NotUpdated = append(res.NotUpdated, notUpdated...)
			res.WasCompletelySuccessful = false
		}
		for _, sc := range staged {
			if sc.Rubrique == principal {
				res.PrincipalAccountNumber = sc.Account.NetworkNumber
				res.ChartPositionID = sc.PositionID
			}
		}
	}

	if !cs.Empty() {
		if err := s.writer.CommitBatch(ctx, cs); err != nil {
			s.audit.Record(ctx, audit.Event{
				Actor: req.Actor, Action: "product.accounting.configure",
				Payload: req.ProductID, Message: "commit failed: " + err.Error(),
				Severity: audit.SeverityError, StatusCode: 500,
			})
			return ConfigureResult{}, fmt.Errorf("commit change set: %w", err)
		}
	}

	// Principal not among the creates: resolve it from the committed entries so
	// re-runs and partial mappings still return the composed account number.
	if res.PrincipalAccountNumber == "" {
		if num, posID, err := s.resolvePrincipal(ctx, req.ProductID, principal, req.Branch, overlay(existing, cs.UpdatedEntries)); err == nil {
			res.PrincipalAccountNumber = num
			res.ChartPositionID = posID
		}
	}

	if res.WasCompletelySuccessful {
		res.Message = "accounting configuration applied"
	} else {
		res.Message = "accounting configuration applied with warnings; some accounts were not updated"
	}
	s.audit.Record(ctx, audit.Event{
		Actor: req.Actor, Action: "product.accounting.configure",
		Payload: req.ProductID, Message: res.Message,
		Severity: severityFor(res.WasCompletelySuccessful), StatusCode: 200,
	})
	return res, nil
}

// Update reassigns determination accounts for an existing product and creates
// entries for rubriques configured for the first time.
func (s *service) Update(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	if err := s.validate(req.ProductID, req.ProductName, req.Mappings, req.Branch, req.ProductType); err != nil {
		return UpdateResult{}, err
	}
	fam := ledger.FamilyForProduct(req.ProductType)
	root, err := s.repo.AccountTypeRoot(ctx, fam)
	if err != nil {
		s.auditReject(ctx, req.Actor, "product.accounting.update", req.ProductID, err)
		return UpdateResult{}, err
	}
	balancing, err := s.repo.RootPosition(ctx)
	if err != nil {
		s.auditReject(ctx, req.Actor, "product.accounting.update", req.ProductID, err)
		return UpdateResult{}, err
	}
	existing, err := s.repo.RuleEntriesByProduct(ctx, req.ProductID)
	if err != nil {
		return UpdateResult{}, err
	}
	toUpdate, toCreate := Diff(existing, req.Mappings, req.ProductID)

	res := UpdateResult{WasCompletelySuccessful: true}
	var cs ledger.ChangeSet

	if len(toUpdate) > 0 {
		notUpdated, err := s.stageUpdates(ctx, req.Branch, toUpdate, &cs)
		if err != nil {
			return UpdateResult{}, err
		}
		if len(notUpdated) > 0 {
			res.NotUpdated = append(res.NotUpdated, notUpdated...)
			res.WasCompletelySuccessful = false
		}
	}
	if len(toCreate) > 0 {
		staged, notUpdated, err := s.stageCreates(ctx, req.ProductID, req.ProductName, req.Branch, root, balancing, toCreate, &cs)
		if err != nil {
			return UpdateResult{}, err
		}
		if len(notUpdated) > 0 {
			res.NotUpdated = append(res.NotUpdated, notUpdated...)
			res.WasCompletelySuccessful = false
		}
		res.ItemsCreated = len(staged)
	}
	res.HasNewAccountingBooks = len(cs.NewBooks) > 0

	if !cs.Empty() {
		if err := s.writer.CommitBatch(ctx, cs); err != nil {
			s.audit.Record(ctx, audit.Event{
				Actor: req.Actor, Action: "product.accounting.update",
				Payload: req.ProductID, Message: "commit failed: " + err.Error(),
				Severity: audit.SeverityError, StatusCode: 500,
			})
			return UpdateResult{}, fmt.Errorf("commit change set: %w", err)
		}
	}
	s.audit.Record(ctx, audit.Event{
		Actor: req.Actor, Action: "product.accounting.update",
		Payload: req.ProductID, Message: "accounting configuration updated",
		Severity: severityFor(res.WasCompletelySuccessful), StatusCode: 200,
	})
	return res, nil
}

func (s *service) validate(productID, productName string, mappings []Mapping, branch ledger.Branch, pt ledger.ProductType) error {
	if productID == "" || productName == "" || len(mappings) == 0 || branch.ID == uuid.Nil {
		return errs.ErrInvalid
	}
	seen := make(map[string]struct{}, len(mappings))
	for _, m := range mappings {
		if m.PositionID == uuid.Nil {
			return fmt.Errorf("%w: rubrique %q has no chart position", errs.ErrInvalid, m.Rubrique)
		}
		if !rubrique.Known(pt, m.Rubrique) {
			return fmt.Errorf("%w: unknown rubrique %q for product type %s", errs.ErrInvalid, m.Rubrique, pt)
		}
		if _, dup := seen[m.Rubrique]; dup {
			return fmt.Errorf("%w: rubrique %q mapped more than once", errs.ErrInvalid, m.Rubrique)
		}
		seen[m.Rubrique] = struct{}{}
	}
	return nil
}

// stagedCreate records the account provisioned for a newly configured rubrique.
type stagedCreate struct {
	Rubrique   string
	PositionID uuid.UUID
	Account    ledger.Account
}

// stageCreates builds the rule entry, accounting book and operation event
// attribute for each new rubrique and provisions its determination account.
// A rubrique whose chart position cannot be resolved is skipped with a
// diagnostic; the rest of the batch continues.
func (s *service) stageCreates(ctx context.Context, productID, productName string, branch ledger.Branch, root ledger.AccountType, balancing ledger.ChartPosition, toCreate []Mapping, cs *ledger.ChangeSet) ([]stagedCreate, []string, error) {
	event, found, err := s.repo.OperationEventFor(ctx, productName, root.ID)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		event = ledger.OperationEvent{
			ID:            uuid.New(),
			Code:          productName,
			ProductName:   productName,
			AccountTypeID: root.ID,
		}
		cs.NewEvent = &event
	}

	staged := make([]stagedCreate, 0, len(toCreate))
	var notUpdated []string
	for _, m := range toCreate {
		pos, err := s.repo.ChartPosition(ctx, m.PositionID)
		if err != nil {
			notUpdated = append(notUpdated, fmt.Sprintf("%s: chart position %s not found", m.Rubrique, m.PositionID))
			continue
		}
		acct, err := s.provisioner.EnsureAccount(ctx, pos, branch)
		if err != nil {
			notUpdated = append(notUpdated, fmt.Sprintf("%s: %v", m.Rubrique, err))
			continue
		}
		code := ledger.EventCode(productID, m.Rubrique)
		cs.NewEntries = append(cs.NewEntries, ledger.RuleEntry{
			ID:                     uuid.New(),
			ProductID:              productID,
			Rubrique:               m.Rubrique,
			EventCode:              code,
			DeterminationAccountID: m.PositionID,
			BalancingAccountID:     balancing.ID,
			Direction:              rubrique.DirectionFor(m.Rubrique),
			AccountTypeID:          root.ID,
		})
		cs.NewBooks = append(cs.NewBooks, ledger.AccountingBook{
			ID:              code,
			ProductID:       productID,
			Rubrique:        m.Rubrique,
			ChartPositionID: m.PositionID,
		})
		cs.NewEventAttributes = append(cs.NewEventAttributes, ledger.OperationEventAttribute{
			ID:               uuid.New(),
			OperationEventID: event.ID,
			Name:             productName + "@" + m.Rubrique,
			Rubrique:         m.Rubrique,
		})
		staged = append(staged, stagedCreate{Rubrique: m.Rubrique, PositionID: m.PositionID, Account: acct})
	}
	return staged, notUpdated, nil
}

// stageUpdates runs each reassignment through the conflict resolver. The rule
// entry and its book are staged regardless of the outcome; non-clean outcomes
// only add a diagnostic. A missing chart position skips that rubrique.
func (s *service) stageUpdates(ctx context.Context, branch ledger.Branch, toUpdate []PendingUpdate, cs *ledger.ChangeSet) ([]string, error) {
	var notUpdated []string
	for _, pu := range toUpdate {
		pos, err := s.repo.ChartPosition(ctx, pu.NewPositionID)
		if err != nil {
			notUpdated = append(notUpdated, fmt.Sprintf("%s: chart position %s not found", pu.Entry.Rubrique, pu.NewPositionID))
			continue
		}
		conflict, err := resolveConflict(ctx, s.repo, pu.Entry.DeterminationAccountID, pu.NewPositionID, branch.ID)
		if err != nil {
			return nil, err
		}
		if conflict.Outcome == OutcomeClean {
			if _, err := s.provisioner.EnsureAccount(ctx, pos, branch); err != nil {
				notUpdated = append(notUpdated, fmt.Sprintf("%s: %v", pu.Entry.Rubrique, err))
				continue
			}
		} else {
			notUpdated = append(notUpdated, fmt.Sprintf("%s: %s", pu.Entry.Rubrique, conflict.Diagnostic))
		}
		entry := pu.Entry
		entry.DeterminationAccountID = pu.NewPositionID
		cs.UpdatedEntries = append(cs.UpdatedEntries, entry)
		cs.UpdatedBooks = append(cs.UpdatedBooks, ledger.AccountingBook{
			ID:              entry.EventCode,
			ProductID:       entry.ProductID,
			Rubrique:        entry.Rubrique,
			ChartPositionID: pu.NewPositionID,
		})
	}
	return notUpdated, nil
}

// resolvePrincipal returns the composed account number already bound to the
// product's principal rubrique, provisioning the branch account if it was
// never referenced at this branch before.
func (s *service) resolvePrincipal(ctx context.Context, productID, principal string, branch ledger.Branch, entries []ledger.RuleEntry) (string, uuid.UUID, error) {
	code := ledger.EventCode(productID, principal)
	for _, e := range entries {
		if e.EventCode != code {
			continue
		}
		pos, err := s.repo.ChartPosition(ctx, e.DeterminationAccountID)
		if err != nil {
			return "", uuid.Nil, err
		}
		acct, err := s.provisioner.EnsureAccount(ctx, pos, branch)
		if err != nil {
			return "", uuid.Nil, err
		}
		return acct.NetworkNumber, e.DeterminationAccountID, nil
	}
	return "", uuid.Nil, errs.ErrNotFound
}

// overlay replaces entries by event code with their updated versions.
func overlay(entries, updated []ledger.RuleEntry) []ledger.RuleEntry {
	if len(updated) == 0 {
		return entries
	}
	byCode := make(map[string]ledger.RuleEntry, len(updated))
	for _, u := range updated {
		byCode[u.EventCode] = u
	}
	out := make([]ledger.RuleEntry, len(entries))
	for i, e := range entries {
		if u, ok := byCode[e.EventCode]; ok {
			out[i] = u
		} else {
			out[i] = e
		}
	}
	return out
}

func (s *service) auditReject(ctx context.Context, actor, action, productID string, err error) {
	s.audit.Record(ctx, audit.Event{
		Actor: actor, Action: action, Payload: productID,
		Message: "rejected: " + err.Error(), Severity: audit.SeverityWarning, StatusCode: 409,
	})
}

func severityFor(fullyOK bool) audit.Severity {
	if fullyOK {
		return audit.SeverityInfo
	}
	return audit.SeverityWarning
}
