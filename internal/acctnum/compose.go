// Package acctnum composes the account-number variants of a branch ledger
// account from its chart base number, position number and bank/branch codes.
// The composition is pure and must stay bit-for-bit stable: previously
// provisioned accounts carry these numbers in persisted rows.
package acctnum

// Widths of the composed segments.
const (
	baseWidth     = 6
	positionWidth = 3
	networkWidth  = 12
	cuWidth       = 9
)

// padRight right-pads s with '0' to width n. Inputs longer than n are
// returned unchanged; truncation is never applied.
func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = '0'
	}
	return string(b)
}

// Network composes the 15-character external/network account identifier:
// base (6) + bank code + branch code padded to 12, then position padded to 3.
func Network(base, position, bankCode, branchCode string) string {
	return padRight(padRight(base, baseWidth)+bankCode+branchCode, networkWidth) + padRight(position, positionWidth)
}

// CreditUnion composes the 12-character credit-union identifier:
// base (6) + branch code padded to 9, then position padded to 3.
func CreditUnion(base, position, branchCode string) string {
	return padRight(padRight(base, baseWidth)+branchCode, cuWidth) + padRight(position, positionWidth)
}

// Display composes the 9-character human-facing number: base (6) + position (3).
func Display(base, position string) string {
	return padRight(base, baseWidth) + padRight(position, positionWidth)
}

// DisplayDraft is the display number shown to end users before the owning
// branch is finalized; the branch segment is a placeholder.
func DisplayDraft(base, position string) string {
	return padRight(base, baseWidth) + "xxx" + padRight(position, positionWidth)
}
