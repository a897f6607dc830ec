package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive  EnrollmentStatus = "ACTIVE"
	EnrollmentDropped EnrollmentStatus = "DROPPED"
)

// Enrollment links a student to a course.
//
// CourseFee is a snapshot of the course fee at enrollment time. Later changes
// to the course price must not retroactively change what the student owes.
type Enrollment struct {
	DefaultModel
	Student    User      `json:"-"`
	StudentID  uuid.UUID `gorm:"uniqueIndex:enrollment_student_course"`
	Course     Course    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CourseID   uuid.UUID `gorm:"uniqueIndex:enrollment_student_course"`
	CourseFee  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Status     EnrollmentStatus
	EnrolledAt time.Time
}

var (
	ErrAlreadyEnrolled  = errors.New("the student is already enrolled in this course")
	ErrDropAfterPayment = errors.New("courses cannot be dropped once a payment has been made")
)

// BeforeSave sets defaults and normalizes the enrollment timestamp to UTC.
func (e *Enrollment) BeforeSave(_ *gorm.DB) error {
	if e.Status == "" {
		e.Status = EnrollmentActive
	}

	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().In(time.UTC)
	} else {
		e.EnrolledAt = e.EnrolledAt.In(time.UTC)
	}

	return nil
}

func (e *Enrollment) AfterFind(tx *gorm.DB) error {
	_ = e.DefaultModel.AfterFind(tx)

	e.EnrolledAt = e.EnrolledAt.In(time.UTC)
	return nil
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	_ = e.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Enrollment)
	return e.checkIntegrity(tx, *toSave)
}

// checkIntegrity verifies references to other resources
func (e *Enrollment) checkIntegrity(tx *gorm.DB, toSave Enrollment) error {
	err := tx.First(&User{}, "id = ?", toSave.StudentID).Error
	if err != nil {
		return err
	}

	return tx.First(&Course{}, "id = ?", toSave.CourseID).Error
}
