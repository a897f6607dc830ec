package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationEnrollment      = "ENROLLMENT"
	NotificationCourseDropped   = "COURSE_DROPPED"
	NotificationPaymentReceived = "PAYMENT_RECEIVED"
	NotificationPaymentPending  = "PAYMENT_PENDING"
	NotificationPenaltyApplied  = "PENALTY_APPLIED"
	NotificationPaymentReminder = "PAYMENT_REMINDER"
	NotificationContactRequest  = "CONTACT_REQUEST"
	NotificationBlocked         = "REGISTRATION_BLOCKED"
	NotificationUnblocked       = "REGISTRATION_UNBLOCKED"
)

// Notification is a student-facing message emitted as a side effect of
// ledger and reconciliation operations. Notifications are never updated
// except for the read flag.
type Notification struct {
	DefaultModel
	Student    User      `json:"-"`
	StudentID  uuid.UUID `gorm:"index"`
	Type       string
	Message    string
	Read       bool
	ActionDate *time.Time
}

func (n *Notification) BeforeSave(_ *gorm.DB) error {
	if n.ActionDate != nil {
		actionDate := n.ActionDate.In(time.UTC)
		n.ActionDate = &actionDate
	}

	return nil
}
