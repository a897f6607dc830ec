// Package reconciliation correlates imported bank transactions with
// payments and students.
package reconciliation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"gorm.io/gorm"
)

const (
	// MatchWindow is how far apart a payment date and a bank transaction
	// date may be for the two to be considered a match. Bank statement
	// references rarely align with internal ids, so matching works on
	// amount and date proximity instead.
	MatchWindow = 7 * 24 * time.Hour

	// SuggestionLimit caps the number of suggestions per transaction.
	SuggestionLimit = 10
)

// BalanceTolerance is the relative deviation between a transaction amount
// and a student's dues balance that still yields a medium confidence
// suggestion.
var BalanceTolerance = decimal.NewFromFloat(0.1)

// Entry is one bank statement line handed to Import.
type Entry struct {
	BankRef     string          `json:"bankRef" example:"TRX-2025-0042"`
	Amount      decimal.Decimal `json:"amount" example:"2500"`
	Date        time.Time       `json:"date" example:"2025-11-04T00:00:00Z"`
	Description string          `json:"description" example:"TUITION john.doe"`
}

// ImportResult reports the per-batch counters of an import run.
type ImportResult struct {
	Imported    int      `json:"imported"`
	AutoMatched int      `json:"autoMatched"`
	Unmatched   int      `json:"unmatched"`
	Duplicates  int      `json:"duplicates"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
}

// Import stores bank statement entries and attempts to match each of them.
//
// Entries are processed independently: a malformed or duplicate entry is
// counted and the batch continues. Matching runs in two passes, first the
// admin-defined match rules (glob on reference and description), then the
// amount/date-window heuristic against RECEIVED payments.
func Import(adminID uuid.UUID, entries []Entry) (ImportResult, error) {
	_, err := models.Admin(models.DB, adminID)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	for _, entry := range entries {
		if entry.BankRef == "" || !entry.Amount.IsPositive() || entry.Date.IsZero() {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", entry.BankRef, models.ErrBankEntryIncomplete))
			continue
		}

		// Idempotence: re-importing a known reference is a no-op
		var count int64
		err := models.DB.Model(&models.BankTransaction{}).Where("bank_ref = ?", entry.BankRef).Count(&count).Error
		if err != nil {
			return result, err
		}

		if count > 0 {
			result.Duplicates++
			continue
		}

		var matched bool
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			transaction := models.BankTransaction{
				BankRef:         entry.BankRef,
				Amount:          entry.Amount,
				TransactionDate: entry.Date,
				Description:     entry.Description,
				Status:          models.BankTransactionUnmatched,
			}

			err := tx.Create(&transaction).Error
			if err != nil {
				return err
			}

			matched, err = matchByRule(tx, &transaction, adminID)
			if err != nil {
				return err
			}

			if !matched {
				matched, err = autoMatch(tx, &transaction, adminID)
				if err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", entry.BankRef, err))
			continue
		}

		result.Imported++
		if matched {
			result.AutoMatched++
		} else {
			result.Unmatched++
		}
	}

	return result, nil
}

// matchByRule checks the transaction against all match rules in ascending
// priority order. The first matching rule settles the transaction as a new
// RECEIVED payment for the rule's student.
func matchByRule(tx *gorm.DB, transaction *models.BankTransaction, adminID uuid.UUID) (bool, error) {
	var rules []models.MatchRule
	err := tx.Order("priority ASC").Find(&rules).Error
	if err != nil {
		return false, err
	}

	for _, rule := range rules {
		if !glob.Glob(rule.Match, transaction.BankRef) && !glob.Glob(rule.Match, transaction.Description) {
			continue
		}

		err := settleForStudent(tx, transaction, rule.StudentID, adminID)
		if err != nil {
			return false, err
		}

		return true, nil
	}

	return false, nil
}

// autoMatch looks for a payment with the identical amount whose payment
// date falls into the match window around the transaction date. The earliest
// unclaimed candidate wins. PENDING bank transfers count as candidates, a
// match is what verifies them.
func autoMatch(tx *gorm.DB, transaction *models.BankTransaction, adminID uuid.UUID) (bool, error) {
	var payments []models.Payment

	err := tx.
		Where("amount = ?", transaction.Amount).
		Where("status IN ?", []models.PaymentStatus{models.PaymentReceived, models.PaymentPending}).
		Where("datetime(payment_date) >= datetime(?)", transaction.TransactionDate.Add(-MatchWindow)).
		Where("datetime(payment_date) <= datetime(?)", transaction.TransactionDate.Add(MatchWindow)).
		Order("datetime(payment_date) ASC").
		Find(&payments).Error
	if err != nil {
		return false, err
	}

	for _, payment := range payments {
		// Skip payments another bank transaction already claimed
		var claimed int64
		err := tx.Model(&models.BankTransaction{}).Where("matched_payment_id = ?", payment.ID).Count(&claimed).Error
		if err != nil {
			return false, err
		}

		if claimed > 0 {
			continue
		}

		err = settlePayment(tx, &payment)
		if err != nil {
			return false, err
		}

		err = stampMatch(tx, transaction, payment.ID, payment.StudentID, adminID)
		if err != nil {
			return false, err
		}

		return true, nil
	}

	return false, nil
}

// settlePayment flips a matched payment to RECONCILED.
//
// A RECEIVED payment already settled the balance when it was recorded, so
// only the status changes. A PENDING bank transfer is settled now: the
// student's dues balance is decremented, clamped at zero.
func settlePayment(tx *gorm.DB, payment *models.Payment) error {
	if payment.Status == models.PaymentPending {
		student, err := models.Student(tx, payment.StudentID)
		if err != nil {
			return err
		}

		balance := student.DuesBalance.Sub(payment.Amount)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		student.DuesBalance = balance
		err = tx.Model(&student).Select("DuesBalance").Updates(student).Error
		if err != nil {
			return err
		}

		now := time.Now().In(time.UTC)
		err = tx.Create(&models.Notification{
			StudentID:  student.ID,
			Type:       models.NotificationPaymentReceived,
			Message:    fmt.Sprintf("Your bank transfer of %s has been verified. Remaining dues: %s", payment.Amount.StringFixed(2), balance.StringFixed(2)),
			ActionDate: &now,
		}).Error
		if err != nil {
			return err
		}
	}

	payment.Status = models.PaymentReconciled
	return tx.Model(payment).Select("Status").Updates(*payment).Error
}

// stampMatch marks the transaction as matched.
func stampMatch(tx *gorm.DB, transaction *models.BankTransaction, paymentID, studentID, adminID uuid.UUID) error {
	now := time.Now().In(time.UTC)

	transaction.Status = models.BankTransactionMatched
	transaction.MatchedPaymentID = &paymentID
	transaction.MatchedStudentID = &studentID
	transaction.MatchedByID = &adminID
	transaction.MatchedAt = &now

	return tx.Model(transaction).
		Select("Status", "MatchedPaymentID", "MatchedStudentID", "MatchedByID", "MatchedAt").
		Updates(*transaction).Error
}

// settleForStudent synthesizes a RECEIVED payment for the student from the
// transaction and decrements the dues balance, clamped at zero.
func settleForStudent(tx *gorm.DB, transaction *models.BankTransaction, studentID, adminID uuid.UUID) error {
	student, err := models.Student(tx, studentID)
	if err != nil {
		return err
	}

	payment := models.Payment{
		StudentID:       student.ID,
		Amount:          transaction.Amount,
		Method:          models.PaymentMethodBankTransfer,
		Status:          models.PaymentReceived,
		ReferenceNumber: transaction.BankRef,
		PaymentDate:     transaction.TransactionDate,
		RecordedByID:    &adminID,
	}

	err = tx.Create(&payment).Error
	if err != nil {
		return err
	}

	balance := student.DuesBalance.Sub(transaction.Amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	student.DuesBalance = balance
	err = tx.Model(&student).Select("DuesBalance").Updates(student).Error
	if err != nil {
		return err
	}

	now := time.Now().In(time.UTC)
	err = tx.Create(&models.Notification{
		StudentID:  student.ID,
		Type:       models.NotificationPaymentReceived,
		Message:    fmt.Sprintf("Bank payment of %s has been matched to your account. Remaining dues: %s", transaction.Amount.StringFixed(2), balance.StringFixed(2)),
		ActionDate: &now,
	}).Error
	if err != nil {
		return err
	}

	err = tx.Create(&models.ActionLog{
		StudentID:     student.ID,
		Type:          models.ActionBankMatch,
		Description:   fmt.Sprintf("Matched bank transaction %s (%s) to student", transaction.BankRef, transaction.Amount.StringFixed(2)),
		PerformedByID: adminID,
	}).Error
	if err != nil {
		return err
	}

	err = tx.Model(&payment).Select("Status").Updates(models.Payment{Status: models.PaymentReconciled}).Error
	if err != nil {
		return err
	}

	return stampMatch(tx, transaction, payment.ID, student.ID, adminID)
}
