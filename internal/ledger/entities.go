package ledger

import (
	"strings"

	"github.com/google/uuid"
)

// ProductType identifies the commercial product kind a configuration request
// refers to. Anything that is not a loan or savings product is treated as a
// system/operational product (tellers, vaults, internal accounts).
type ProductType string

const (
	ProductTypeLoan   ProductType = "Loan_Product"
	ProductTypeSaving ProductType = "Saving_Product"
	ProductTypeTeller ProductType = "Teller"
	ProductTypeSystem ProductType = "System"
)

// AccountTypeFamily classifies which account-type root a product's rule
// entries attach to.
type AccountTypeFamily string

const (
	// FamilyOrdinary covers loan and savings products.
	FamilyOrdinary AccountTypeFamily = "ORD"
	// FamilyOperational covers tellers and other system accounts.
	FamilyOperational AccountTypeFamily = "OPE"
)

// FamilyForProduct maps a product type to its account-type family.
// The mapping is total: unknown product types classify as operational.
func FamilyForProduct(pt ProductType) AccountTypeFamily {
	switch pt {
	case ProductTypeLoan, ProductTypeSaving:
		return FamilyOrdinary
	default:
		return FamilyOperational
	}
}

// BookingDirection is the debit/credit policy attached to a rule entry.
type BookingDirection string

const (
	DirectionDebit  BookingDirection = "DEBIT"
	DirectionCredit BookingDirection = "CREDIT"
	// DirectionUnresolved marks rubriques the direction policy does not cover.
	// The stored value is "Not Found" for compatibility with existing rows.
	DirectionUnresolved BookingDirection = "Not Found"
)

// AccountType is a root node of the account-type tree. Exactly one root is
// expected per family; rule entries for a product hang off the root matching
// the product's family.
type AccountType struct {
	ID     uuid.UUID
	Name   string
	Family AccountTypeFamily
}

// ChartOfAccount is chart-level reference data carrying the base account
// number and category shared by its management positions.
type ChartOfAccount struct {
	ID            uuid.UUID
	AccountNumber string
	Category      string
	Description   string
}

// ChartPosition is a ledger slot under a chart of account: the reference data
// a rubrique's determination account points at. Looked up, never created here.
type ChartPosition struct {
	ID               uuid.UUID
	ChartOfAccountID uuid.UUID
	PositionNumber   string
	Description      string
	// Root marks the designated balancing ("root account") position.
	Root bool
}

// RuleEntry is the live mapping of one (product, rubrique) pair to ledger
// positions. At most one non-deleted entry exists per event code.
type RuleEntry struct {
	ID        uuid.UUID
	ProductID string
	Rubrique  string
	// EventCode is ProductID + "@" + Rubrique and is the natural key.
	EventCode              string
	DeterminationAccountID uuid.UUID
	BalancingAccountID     uuid.UUID
	Direction              BookingDirection
	AccountTypeID          uuid.UUID
}

// AccountingBook is the record of record for a configured (product, rubrique)
// pair. Its ID equals the rule entry's event code.
type AccountingBook struct {
	ID              string
	ProductID       string
	Rubrique        string
	ChartPositionID uuid.UUID
}

// Account is a branch-scoped, physically postable ledger account bound to
// exactly one chart position and one owning branch. Created lazily on first
// reference and never deleted by this engine.
type Account struct {
	ID                uuid.UUID
	ChartPositionID   uuid.UUID
	BranchID          uuid.UUID
	NetworkNumber     string
	CreditUnionNumber string
	DisplayNumber     string
	Description       string
}

// OperationEvent groups rubriques under a named business event per
// account-type root. Created once per (product name, account type) and reused.
type OperationEvent struct {
	ID            uuid.UUID
	Code          string
	ProductName   string
	AccountTypeID uuid.UUID
}

// OperationEventAttribute is the per-rubrique member of an operation event,
// named ProductName + "@" + Rubrique.
type OperationEventAttribute struct {
	ID               uuid.UUID
	OperationEventID uuid.UUID
	Name             string
	Rubrique         string
}

// Branch supplies the branch/bank identity used when composing account
// numbers and scoping ledger accounts.
type Branch struct {
	ID       uuid.UUID
	Code     string
	Name     string
	BankID   uuid.UUID
	BankCode string
}

// EventCode composes the natural key of a rule entry.
func EventCode(productID, rubrique string) string {
	return productID + "@" + rubrique
}

// SplitEventCode returns the product id and rubrique of an event code.
// ok is false when the code has no separator.
func SplitEventCode(code string) (productID, rubrique string, ok bool) {
	i := strings.IndexByte(code, '@')
	if i < 0 {
		return "", "", false
	}
	return code[:i], code[i+1:], true
}

// HasProductPrefix reports whether the event code belongs to the product.
func HasProductPrefix(code, productID string) bool {
	return strings.HasPrefix(code, productID+"@")
}
