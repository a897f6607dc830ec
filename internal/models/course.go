package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course represents a course offered by a faculty.
//
// TotalFee is the fee charged on enrollment. It is snapshotted into the
// Enrollment at enrollment time, so changing it never affects students who
// are already enrolled.
type Course struct {
	DefaultModel
	CourseCode  string `gorm:"uniqueIndex"`
	Name        string
	Description string
	CreditHours uint
	TotalFee    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Faculty     Faculty         `json:"-"`
	FacultyID   uuid.UUID
}

var (
	ErrCourseCodeNotUnique    = errors.New("the course code must be unique")
	ErrCreditHoursNotPositive = errors.New("the credit hours of a course must be larger than zero")
	ErrCourseTotalFeeNegative = errors.New("the total fee of a course must not be negative")
)

// BeforeSave trims whitespace from all strings.
func (c *Course) BeforeSave(_ *gorm.DB) error {
	c.CourseCode = strings.TrimSpace(c.CourseCode)
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)

	return nil
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Course)
	return c.checkIntegrity(tx, *toSave)
}

// BeforeUpdate verifies the state of the course before
// committing an update to the database.
func (c *Course) BeforeUpdate(tx *gorm.DB) error {
	toSave := tx.Statement.Dest.(Course)
	if tx.Statement.Changed("FacultyID") {
		return c.checkIntegrity(tx, toSave)
	}

	return nil
}

// checkIntegrity verifies references to other resources
func (c *Course) checkIntegrity(tx *gorm.DB, toSave Course) error {
	return tx.First(&Faculty{}, "id = ?", toSave.FacultyID).Error
}

func (c *Course) AfterSave(_ *gorm.DB) error {
	if c.CreditHours == 0 {
		return ErrCreditHoursNotPositive
	}

	if c.TotalFee.IsNegative() {
		return ErrCourseTotalFeeNegative
	}

	return nil
}
