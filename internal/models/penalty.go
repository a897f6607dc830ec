package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PenaltyLateFee is the penalty type for late payments.
const PenaltyLateFee = "LATE_FEE"

// Penalty represents an extra charge applied to a student by an admin.
// Penalties only ever increase the dues balance.
type Penalty struct {
	DefaultModel
	Student     User      `json:"-"`
	StudentID   uuid.UUID `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Type        string
	Notes       string
	AppliedBy   User `json:"-"`
	AppliedByID uuid.UUID
}

var ErrPenaltyAmountNotPositive = errors.New("penalty amounts must be larger than zero")

func (p *Penalty) BeforeSave(_ *gorm.DB) error {
	p.Type = strings.TrimSpace(p.Type)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Type == "" {
		p.Type = PenaltyLateFee
	}

	return nil
}

func (p *Penalty) AfterSave(_ *gorm.DB) error {
	if !p.Amount.IsPositive() {
		return ErrPenaltyAmountNotPositive
	}

	return nil
}
