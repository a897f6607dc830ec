package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BankTransactionStatus is the reconciliation state of an imported bank
// transaction.
type BankTransactionStatus string

const (
	BankTransactionUnmatched BankTransactionStatus = "UNMATCHED"
	BankTransactionMatched   BankTransactionStatus = "MATCHED"
)

// BankTransaction represents an externally sourced bank statement entry.
// Rows are created by the import operation and only ever mutated by the
// reconciliation matcher.
type BankTransaction struct {
	DefaultModel
	BankRef          string `gorm:"uniqueIndex"`
	Amount           decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TransactionDate  time.Time
	Description      string
	Status           BankTransactionStatus
	MatchedPayment   *Payment   `json:"-"`
	MatchedPaymentID *uuid.UUID
	MatchedStudent   *User      `json:"-"`
	MatchedStudentID *uuid.UUID
	MatchedBy        *User      `json:"-"`
	MatchedByID      *uuid.UUID
	MatchedAt        *time.Time
}

var (
	ErrBankRefNotUnique    = errors.New("a bank transaction with this reference already exists")
	ErrAlreadyMatched      = errors.New("the bank transaction is already matched")
	ErrPaymentClaimed      = errors.New("the payment is already matched to another bank transaction")
	ErrBankEntryIncomplete = errors.New("bank entries must have a reference, a positive amount and a transaction date")
)

// BeforeSave sets defaults and normalizes the transaction date to UTC.
func (b *BankTransaction) BeforeSave(_ *gorm.DB) error {
	b.BankRef = strings.TrimSpace(b.BankRef)
	b.Description = strings.TrimSpace(b.Description)

	if b.Status == "" {
		b.Status = BankTransactionUnmatched
	}

	b.TransactionDate = b.TransactionDate.In(time.UTC)

	if b.MatchedAt != nil {
		matchedAt := b.MatchedAt.In(time.UTC)
		b.MatchedAt = &matchedAt
	}

	return nil
}

func (b *BankTransaction) AfterFind(tx *gorm.DB) error {
	_ = b.DefaultModel.AfterFind(tx)

	b.TransactionDate = b.TransactionDate.In(time.UTC)
	return nil
}
