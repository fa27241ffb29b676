package v1

import (
	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/ledger"
)

type mappingRequest struct {
	Rubrique        string    `json:"rubrique"`
	ChartPositionID uuid.UUID `json:"chart_position_id"`
}

type configureRequest struct {
	ProductName string             `json:"product_name"`
	ProductType ledger.ProductType `json:"product_type"`
	Mappings    []mappingRequest   `json:"mappings"`
}

type configureResponse struct {
	PrincipalAccountNumber  string    `json:"principal_account_number"`
	ChartPositionID         uuid.UUID `json:"chart_position_id"`
	NotUpdated              []string  `json:"not_updated"`
	WasCompletelySuccessful bool      `json:"was_completely_successful"`
	Message                 string    `json:"message"`
}

type updateRequest struct {
	ProductName string             `json:"product_name"`
	ProductType ledger.ProductType `json:"product_type"`
	Mappings    []mappingRequest   `json:"mappings"`
}

type updateResponse struct {
	ItemsCreated            int      `json:"items_created"`
	HasNewAccountingBooks   bool     `json:"has_new_accounting_books"`
	NotUpdated              []string `json:"not_updated"`
	WasCompletelySuccessful bool     `json:"was_completely_successful"`
}
