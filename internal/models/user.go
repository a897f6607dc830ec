package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a student or an administrator. Administrators have no
// faculty and never carry dues.
type User struct {
	DefaultModel
	Username       string          `gorm:"uniqueIndex"`
	Email          *string         `gorm:"uniqueIndex"`
	PasswordHash   string          `json:"-"`
	IsAdmin        bool
	Faculty        *Faculty        `json:"-"`
	FacultyID      *uuid.UUID      // Students may reference a faculty, admins never do
	DuesBalance    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	IsBlocked      bool
	BlockedReason  string
	BlockedAt      *time.Time
	PaymentDueDate *time.Time
}

var (
	ErrUsernameNotUnique   = errors.New("the username must be unique")
	ErrEmailNotUnique      = errors.New("the email must be unique")
	ErrDuesBalanceNegative = errors.New("the dues balance must never be negative")
	ErrNoStudent           = errors.New("the referenced user is not a student")
	ErrNoAdmin             = errors.New("the referenced user is not an administrator")
)

// BeforeSave trims whitespace from all strings.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Username = strings.TrimSpace(u.Username)
	u.BlockedReason = strings.TrimSpace(u.BlockedReason)

	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		u.Email = &email
	}

	return nil
}

// AfterSave enforces the non-negativity of the dues balance. All balance
// mutations clamp at zero before writing, this backstops the invariant.
func (u *User) AfterSave(_ *gorm.DB) error {
	if u.DuesBalance.IsNegative() {
		return ErrDuesBalanceNegative
	}

	return nil
}

// SetPassword hashes the password and stores the hash on the user.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the password against the stored hash.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Student loads a non-admin user.
func Student(db *gorm.DB, id uuid.UUID) (User, error) {
	var user User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		return User{}, err
	}

	if user.IsAdmin {
		return User{}, ErrNoStudent
	}

	return user, nil
}

// Admin loads an admin user.
func Admin(db *gorm.DB, id uuid.UUID) (User, error) {
	var user User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		return User{}, err
	}

	if !user.IsAdmin {
		return User{}, ErrNoAdmin
	}

	return user, nil
}

// RecomputeDuesBalance calculates the dues balance of a student from its
// causing records:
//
//	max(0, sum(active enrollment fee snapshots) + sum(penalties) - sum(settled payments))
//
// The live balance is maintained incrementally by the ledger package. This
// function restores it from the record trail and is used to verify that the
// incremental bookkeeping has not drifted.
func RecomputeDuesBalance(db *gorm.DB, studentID uuid.UUID) (decimal.Decimal, error) {
	var enrolled, penalties, received decimal.NullDecimal

	err := db.Model(&Enrollment{}).
		Where(&Enrollment{StudentID: studentID, Status: EnrollmentActive}).
		Select("SUM(course_fee)").
		Row().
		Scan(&enrolled)
	if err != nil {
		return decimal.Zero, err
	}

	err = db.Model(&Penalty{}).
		Where(&Penalty{StudentID: studentID}).
		Select("SUM(amount)").
		Row().
		Scan(&penalties)
	if err != nil {
		return decimal.Zero, err
	}

	// RECONCILED payments settled the balance as RECEIVED before they were
	// matched, so both statuses count
	err = db.Model(&Payment{}).
		Where("student_id = ?", studentID).
		Where("status IN ?", []PaymentStatus{PaymentReceived, PaymentReconciled}).
		Select("SUM(amount)").
		Row().
		Scan(&received)
	if err != nil {
		return decimal.Zero, err
	}

	balance := enrolled.Decimal.Add(penalties.Decimal).Sub(received.Decimal)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return balance, nil
}
