package entity

import "time"

// ReimbursementStatus is the lifecycle state of an expense claim.
// The UI may display localized labels (PROSES, BERHASIL, DITOLAK); those
// are display synonyms for PROCESSING, APPROVED and REJECTED, not
// additional states.
type ReimbursementStatus string

const (
	ReimbursementPending    ReimbursementStatus = "PENDING"
	ReimbursementProcessing ReimbursementStatus = "PROCESSING"
	ReimbursementApproved   ReimbursementStatus = "APPROVED"
	ReimbursementRejected   ReimbursementStatus = "REJECTED"
)

// Reimbursement is an employee-submitted expense claim awaiting admin
// adjudication and payout.
//
// TransferProofRef is set when the claim is approved and points at the
// uploaded payment evidence. RejectionReason is set iff the claim was
// rejected.
type Reimbursement struct {
	ID               int64               `json:"id"`
	Date             string              `json:"date"` // ISO date, YYYY-MM-DD
	RequestorID      int64               `json:"requestor_id"`
	RequestorName    string              `json:"requestor_name"`
	Category         string              `json:"category"`
	ActivityName     string              `json:"activity_name"`
	Description      string              `json:"description"`
	Items            []ItemDetail        `json:"items"`
	GrandTotal       int64               `json:"grand_total"`
	Status           ReimbursementStatus `json:"status"`
	TransferProofRef string              `json:"transfer_proof_ref,omitempty"`
	RejectionReason  string              `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
