package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrNoAccountTypeRoot indicates no operational or ordinary account-type
	// root is configured for the product's family; the request is rejected.
	ErrNoAccountTypeRoot = errors.New("no_account_type_root")
	// ErrMissingChartReference indicates a chart position does not resolve to
	// a valid parent chart of account.
	ErrMissingChartReference = errors.New("missing_chart_reference")
	// ErrRootAccountMissing indicates the designated balancing (root) position
	// has not been configured in the store.
	ErrRootAccountMissing = errors.New("root_account_missing")
)
