package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeCategory groups fee structures.
type FeeCategory string

const (
	FeeCategoryTuition FeeCategory = "tuition"
	FeeCategoryBus     FeeCategory = "bus"
	FeeCategoryOther   FeeCategory = "other"
)

// FeeStructure is a configurable fee component. The total fee of a new
// course can be derived from the active fee structures, see CourseFee.
type FeeStructure struct {
	DefaultModel
	Category     FeeCategory
	Name         string
	Amount       decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	IsPerCredit  bool // If set, Amount is charged per credit hour
	IsActive     bool
	DisplayOrder uint
}

var ErrFeeAmountNegative = errors.New("fee structure amounts must not be negative")

func (f *FeeStructure) BeforeSave(_ *gorm.DB) error {
	f.Name = strings.TrimSpace(f.Name)

	if f.Category == "" {
		f.Category = FeeCategoryOther
	}

	return nil
}

func (f *FeeStructure) AfterSave(_ *gorm.DB) error {
	if f.Amount.IsNegative() {
		return ErrFeeAmountNegative
	}

	return nil
}

// CourseFee derives the total fee for a course with the given credit hours
// from all active fee structures. Per-credit structures are multiplied with
// the credit hours, flat structures are added as-is.
func CourseFee(db *gorm.DB, creditHours uint) (decimal.Decimal, error) {
	var structures []FeeStructure
	err := db.Where(&FeeStructure{IsActive: true}).Order("display_order ASC").Find(&structures).Error
	if err != nil {
		return decimal.Zero, err
	}

	fee := decimal.Zero
	for _, s := range structures {
		if s.IsPerCredit {
			fee = fee.Add(s.Amount.Mul(decimal.NewFromInt(int64(creditHours))))
		} else {
			fee = fee.Add(s.Amount)
		}
	}

	return fee, nil
}
