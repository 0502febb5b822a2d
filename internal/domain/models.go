/**
 * @description
 * Domain models used by the reconciliation-service.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quotation status values. The reconciliation sweep only ever moves a
// quotation from StatusAccepted to StatusExpired.
const (
	StatusPublished = "published"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Quotation carries the fields of a commissioned work request that the
// overdue sweep reads and writes. Amounts are in kobo.
type Quotation struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	EditorID          uuid.UUID `json:"editor_id"`
	Title             string    `json:"title"`
	Status            string    `json:"status"`
	DueDate           time.Time `json:"due_date"`
	AdvanceAmount     int64     `json:"advance_amount"`
	PaymentInProgress bool      `json:"is_payment_in_progress"`
}

// EditorProfile tracks the discipline state of a freelance editor.
// Invariant: IsSuspended implies SuspendedUntil is non-nil.
type EditorProfile struct {
	UserID          uuid.UUID  `json:"user_id"`
	WarningCount    int        `json:"warning_count"`
	IsSuspended     bool       `json:"is_suspended"`
	SuspendedUntil  *time.Time `json:"suspended_until,omitempty"`
	LastWarningDate *time.Time `json:"last_warning_date,omitempty"`
}

// User is the slice of the account record this service needs for email
// fan-out.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}
