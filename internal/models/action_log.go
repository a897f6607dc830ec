package models

import (
	"github.com/google/uuid"
)

// Action types.
const (
	ActionEnrollment       = "ENROLLMENT"
	ActionCourseDropped    = "COURSE_DROPPED"
	ActionPaymentRecorded  = "PAYMENT_RECORDED"
	ActionPenaltyApplied   = "PENALTY_APPLIED"
	ActionBlocked          = "REGISTRATION_BLOCKED"
	ActionUnblocked        = "REGISTRATION_UNBLOCKED"
	ActionContactRequest   = "CONTACT_REQUEST"
	ActionReminderSent     = "REMINDER_SENT"
	ActionBankMatch        = "BANK_MATCH"
)

// ActionLog is the append-only audit record of an administrative action
// against a student account. No code path updates or deletes rows of this
// table after creation.
type ActionLog struct {
	DefaultModel
	Student       User      `json:"-"`
	StudentID     uuid.UUID `gorm:"index"`
	Type          string
	Description   string
	PerformedBy   User `json:"-"`
	PerformedByID uuid.UUID
}
