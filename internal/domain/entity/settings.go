package entity

// Category is an expense/income category used by journal entries,
// reimbursements and report filters. Names are unique; Position keeps
// insertion order for pickers.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}
