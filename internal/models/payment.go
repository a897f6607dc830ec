package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod is the channel through which a payment was made.
type PaymentMethod string

const (
	PaymentMethodManual       PaymentMethod = "MANUAL"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// PaymentStatus is the settlement state of a payment.
//
// BANK_TRANSFER payments start out PENDING since they are unverified until
// a bank transaction is matched against them. All other methods settle
// immediately as RECEIVED. RECONCILED marks payments that have been matched
// to a bank transaction.
type PaymentStatus string

const (
	PaymentReceived   PaymentStatus = "RECEIVED"
	PaymentPending    PaymentStatus = "PENDING"
	PaymentReconciled PaymentStatus = "RECONCILED"
)

// Payment represents money received from a student.
type Payment struct {
	DefaultModel
	Student         User      `json:"-"`
	StudentID       uuid.UUID `gorm:"index"`
	Amount          decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Method          PaymentMethod
	Status          PaymentStatus
	ReferenceNumber string // Correlation id of an external system, e.g. a bank
	Notes           string
	RecordedBy      *User      `json:"-"`
	RecordedByID    *uuid.UUID // The acting admin, or the student for self-submitted payments
	PaymentDate     time.Time
}

var (
	ErrPaymentAmountNotPositive = errors.New("payment amounts must be larger than zero")
	ErrOverpayment              = errors.New("the payment amount must not exceed the outstanding dues balance")
)

// BeforeSave sets defaults and normalizes the payment date to UTC.
func (p *Payment) BeforeSave(_ *gorm.DB) error {
	p.ReferenceNumber = strings.TrimSpace(p.ReferenceNumber)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Method == "" {
		p.Method = PaymentMethodManual
	}

	if p.Status == "" {
		p.Status = PaymentReceived
	}

	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().In(time.UTC)
	} else {
		p.PaymentDate = p.PaymentDate.In(time.UTC)
	}

	return nil
}

func (p *Payment) AfterFind(tx *gorm.DB) error {
	_ = p.DefaultModel.AfterFind(tx)

	p.PaymentDate = p.PaymentDate.In(time.UTC)
	return nil
}

func (p *Payment) AfterSave(_ *gorm.DB) error {
	if !p.Amount.IsPositive() {
		return ErrPaymentAmountNotPositive
	}

	return nil
}
