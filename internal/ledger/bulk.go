package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"gorm.io/gorm"
)

// BulkStatus is the outcome for one student in a bulk operation.
type BulkStatus string

const (
	BulkOK      BulkStatus = "ok"
	BulkFailed  BulkStatus = "failed"
	BulkSkipped BulkStatus = "skipped"
)

// BulkDetail is the per-student result slot of a bulk operation.
type BulkDetail struct {
	StudentID uuid.UUID       `json:"studentId"`
	Status    BulkStatus      `json:"status"`
	Error     string          `json:"error,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

// BulkResult is the outcome of a bulk operation. A bulk call succeeds as a
// whole even when individual students fail, the per-student outcomes are in
// Details.
type BulkResult struct {
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Details   []BulkDetail `json:"details"`
}

func (r *BulkResult) append(detail BulkDetail) {
	switch detail.Status {
	case BulkOK:
		r.Processed++
	case BulkFailed:
		r.Failed++
	case BulkSkipped:
		r.Skipped++
	}

	r.Details = append(r.Details, detail)
}

// resolveStudents expands the target set of a bulk operation. With all set,
// every non-admin student is targeted and the explicit ids are ignored.
func resolveStudents(db *gorm.DB, studentIDs []uuid.UUID, all bool) ([]uuid.UUID, error) {
	if !all {
		return studentIDs, nil
	}

	var ids []uuid.UUID
	err := db.Model(&models.User{}).Where("is_admin = ?", false).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// BulkReminder sends a payment reminder to each targeted student with
// outstanding dues. Students without dues are skipped.
func BulkReminder(adminID uuid.UUID, studentIDs []uuid.UUID, all bool) (BulkResult, error) {
	ids, err := resolveStudents(models.DB, studentIDs, all)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for _, id := range ids {
		detail := BulkDetail{StudentID: id, Status: BulkOK}

		err := models.DB.Transaction(func(tx *gorm.DB) error {
			admin, err := models.Admin(tx, adminID)
			if err != nil {
				return err
			}

			student, err := models.Student(tx, id)
			if err != nil {
				return err
			}

			detail.Balance = student.DuesBalance
			if !student.DuesBalance.IsPositive() {
				detail.Status = BulkSkipped
				return nil
			}

			err = notify(tx, student.ID, models.NotificationPaymentReminder,
				fmt.Sprintf("Reminder: you have outstanding dues of %s. Please settle your balance.",
					student.DuesBalance.StringFixed(2)))
			if err != nil {
				return err
			}

			return logAction(tx, student.ID, admin.ID, models.ActionReminderSent, "Sent payment reminder")
		})
		if err != nil {
			detail.Status = BulkFailed
			detail.Error = err.Error()
		}

		result.append(detail)
	}

	return result, nil
}

// BulkPenalty applies a penalty to each targeted student with outstanding
// dues. Students without dues are skipped, nonexistent students are reported
// as failed. One bad student never aborts the batch.
func BulkPenalty(adminID uuid.UUID, studentIDs []uuid.UUID, all bool, amount decimal.Decimal, penaltyType, notes string) (BulkResult, error) {
	if !amount.IsPositive() {
		return BulkResult{}, models.ErrPenaltyAmountNotPositive
	}

	ids, err := resolveStudents(models.DB, studentIDs, all)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for _, id := range ids {
		detail := BulkDetail{StudentID: id, Status: BulkOK}

		student, err := models.Student(models.DB, id)
		if err != nil {
			detail.Status = BulkFailed
			detail.Error = err.Error()
			result.append(detail)
			continue
		}

		if !student.DuesBalance.IsPositive() {
			detail.Status = BulkSkipped
			detail.Balance = student.DuesBalance
			result.append(detail)
			continue
		}

		_, balance, err := ApplyPenalty(adminID, id, amount, penaltyType, notes)
		if err != nil {
			detail.Status = BulkFailed
			detail.Error = err.Error()
		} else {
			detail.Balance = balance
		}

		result.append(detail)
	}

	return result, nil
}

// BulkBlock blocks registration for each targeted student. Students that are
// already blocked are skipped.
func BulkBlock(adminID uuid.UUID, studentIDs []uuid.UUID, all bool, reason string) (BulkResult, error) {
	ids, err := resolveStudents(models.DB, studentIDs, all)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for _, id := range ids {
		detail := BulkDetail{StudentID: id, Status: BulkOK}

		student, err := models.Student(models.DB, id)
		if err != nil {
			detail.Status = BulkFailed
			detail.Error = err.Error()
			result.append(detail)
			continue
		}

		detail.Balance = student.DuesBalance
		if student.IsBlocked {
			detail.Status = BulkSkipped
			result.append(detail)
			continue
		}

		err = Block(adminID, id, reason)
		if err != nil {
			detail.Status = BulkFailed
			detail.Error = err.Error()
		}

		result.append(detail)
	}

	return result, nil
}
