// Package rubrique holds the static catalogue of product sub-accounts
// ("rubriques") and the booking-direction policy attached to their names.
package rubrique

import "github.com/arnaudGHB/glconfig/internal/ledger"

// Def describes one catalogued rubrique for a product type.
type Def struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	// Principal marks the rubrique whose account number is returned as the
	// primary result of a configuration run.
	Principal bool `json:"principal"`
}

// The catalogue is keyed by product type: loan and savings products carry
// disjoint rubrique sets even though both attach to the ordinary account-type
// root. Operational products (tellers, vaults) share one set.
var (
	loanDefs = []Def{
		{Name: "Loan_Principal_Account", Label: "Loan Principal", Principal: true},
		{Name: "Loan_Interest_Account", Label: "Loan Interest"},
		{Name: "Loan_Fee_Account", Label: "Loan Fees"},
		{Name: "Loan_Penalty_Account", Label: "Loan Penalties"},
		{Name: "Loan_Provision_Expense_Account", Label: "Loan Provisioning"},
		{Name: "Loan_WriteOff_Expense_Account", Label: "Loan Write-Off"},
		{Name: "Loan_Transit_Account", Label: "Loan Transit"},
	}
	savingDefs = []Def{
		{Name: "Principal_Saving_Account", Label: "Savings Principal", Principal: true},
		{Name: "Saving_Interest_Account", Label: "Savings Interest"},
		{Name: "Saving_Fee_Account", Label: "Savings Fees"},
		{Name: "Saving_Commission_Expense_Account", Label: "Savings Commission"},
	}
	operationalDefs = []Def{
		{Name: "Teller_Principal_Account", Label: "Teller Principal", Principal: true},
		{Name: "Teller_Expense_Account", Label: "Teller Expenses"},
		{Name: "Vault_Principal_Account", Label: "Vault Principal"},
	}
)

// ForProduct returns the catalogued rubriques for a product type.
func ForProduct(pt ledger.ProductType) []Def {
	switch pt {
	case ledger.ProductTypeLoan:
		return loanDefs
	case ledger.ProductTypeSaving:
		return savingDefs
	default:
		return operationalDefs
	}
}

// For returns the catalogued rubriques for an account-type family, or every
// family when fam is nil. The ordinary family spans loan and savings sets.
func For(fam *ledger.AccountTypeFamily) []Def {
	ordinary := append(append([]Def{}, loanDefs...), savingDefs...)
	if fam == nil {
		return append(ordinary, operationalDefs...)
	}
	if *fam == ledger.FamilyOrdinary {
		return ordinary
	}
	return operationalDefs
}

// Known reports whether name is catalogued for the product type.
func Known(pt ledger.ProductType, name string) bool {
	for _, d := range ForProduct(pt) {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Principal returns the principal rubrique name for a product type, e.g.
// Loan_Principal_Account for loans and Principal_Saving_Account for savings.
func Principal(pt ledger.ProductType) string {
	switch pt {
	case ledger.ProductTypeLoan:
		return "Loan_Principal_Account"
	case ledger.ProductTypeSaving:
		return "Principal_Saving_Account"
	default:
		return "Teller_Principal_Account"
	}
}
