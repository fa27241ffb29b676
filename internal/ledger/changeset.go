package ledger

// ChangeSet carries every row mutation staged by one orchestration run. The
// writer persists it as a unit: either all rows become visible or none do.
type ChangeSet struct {
	NewEntries         []RuleEntry
	UpdatedEntries     []RuleEntry
	NewBooks           []AccountingBook
	UpdatedBooks       []AccountingBook
	NewEventAttributes []OperationEventAttribute
	NewEvent           *OperationEvent
}

// Empty reports whether the change set stages no mutation at all.
func (c ChangeSet) Empty() bool {
	return len(c.NewEntries) == 0 && len(c.UpdatedEntries) == 0 &&
		len(c.NewBooks) == 0 && len(c.UpdatedBooks) == 0 &&
		len(c.NewEventAttributes) == 0 && c.NewEvent == nil
}
