package submissions

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies one intake form and its backing table.
type Kind string

// Form kinds accepted by the console.
const (
	KindMembership       Kind = "membership"
	KindVolunteer        Kind = "volunteer"
	KindPartnership      Kind = "partnership"
	KindContact          Kind = "contact"
	KindDonation         Kind = "donation"
	KindPhilosophyCafe   Kind = "philosophy_cafe"
	KindLeadershipEthics Kind = "leadership_ethics"
)

// kindTables maps form kinds to their fixed table names.
var kindTables = map[Kind]string{
	KindMembership:       "membership_applications",
	KindVolunteer:        "volunteer_applications",
	KindPartnership:      "partnership_applications",
	KindContact:          "contact_submissions",
	KindDonation:         "donations",
	KindPhilosophyCafe:   "philosophy_cafe_applications",
	KindLeadershipEthics: "leadership_ethics_workshop_registrations",
}

// Table returns the backing table name, or "" for an unknown kind.
func (k Kind) Table() string { return kindTables[k] }

// Valid reports whether the kind belongs to the fixed enumeration.
func (k Kind) Valid() bool {
	_, ok := kindTables[k]
	return ok
}

// Kinds returns all form kinds in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindMembership, KindVolunteer, KindPartnership, KindContact,
		KindDonation, KindPhilosophyCafe, KindLeadershipEthics,
	}
}

// Status is a submission lifecycle state.
type Status string

// The six valid submission statuses. No other value is accepted as input
// to a transition.
const (
	StatusPending        Status = "pending"
	StatusUnderReview    Status = "under_review"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusAdditionalInfo Status = "additional_info_required"
	StatusCompleted      Status = "completed"
)

// Valid reports whether the status belongs to the enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusAdditionalInfo, StatusCompleted:
		return true
	}
	return false
}

// Submission is one form-intake record. Only Status is mutated by the
// workflow; Payload stays opaque.
type Submission struct {
	ID          uuid.UUID      `json:"id"`
	Kind        Kind           `json:"kind"`
	Email       string         `json:"email"`
	Status      Status         `json:"status"`
	SubmittedAt time.Time      `json:"submission_date"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Payload     map[string]any `json:"payload"`
}

var (
	// ErrNotFound indicates the submission does not exist.
	ErrNotFound = errors.New("submissions: not found")
	// ErrUnauthorized indicates the actor lacks the manage-forms capability.
	ErrUnauthorized = errors.New("submissions: unauthorized")
	// ErrInvalidStatus indicates a status outside the enumeration.
	ErrInvalidStatus = errors.New("submissions: invalid status")
	// ErrInvalidKind indicates a form kind outside the enumeration.
	ErrInvalidKind = errors.New("submissions: invalid form kind")
)

// BulkFailure reports one failed id within a bulk operation.
type BulkFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkResult aggregates per-item outcomes of a bulk status change. Partial
// success is expected; nothing is rolled back.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// SuccessCount returns the number of ids updated.
func (r BulkResult) SuccessCount() int { return len(r.Succeeded) }
