// Package ledger is the single authority for changes to a student's dues
// balance. Every operation commits the causing record, the balance mutation
// and its audit trail in one transaction.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"gorm.io/gorm"
)

// clampZero caps a balance at zero. Balances never go negative, an
// overpaying mutation settles the account instead.
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}

// setBalance writes the new dues balance for a student.
func setBalance(tx *gorm.DB, student *models.User, balance decimal.Decimal) error {
	student.DuesBalance = balance
	return tx.Model(student).Select("DuesBalance").Updates(*student).Error
}

// notify creates a student-facing notification.
func notify(tx *gorm.DB, studentID uuid.UUID, notificationType, message string) error {
	now := time.Now().In(time.UTC)

	return tx.Create(&models.Notification{
		StudentID:  studentID,
		Type:       notificationType,
		Message:    message,
		ActionDate: &now,
	}).Error
}

// logAction appends to the audit trail.
func logAction(tx *gorm.DB, studentID, performedBy uuid.UUID, actionType, description string) error {
	return tx.Create(&models.ActionLog{
		StudentID:     studentID,
		Type:          actionType,
		Description:   description,
		PerformedByID: performedBy,
	}).Error
}

// Enroll enrolls a student in a course.
//
// The course fee is snapshotted into the enrollment and added to the dues
// balance. Enrollment row, balance increment and audit records commit
// together or not at all.
func Enroll(studentID, courseID uuid.UUID) (models.Enrollment, decimal.Decimal, error) {
	var enrollment models.Enrollment
	var balance decimal.Decimal

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		var course models.Course
		err = tx.First(&course, "id = ?", courseID).Error
		if err != nil {
			return err
		}

		enrollment = models.Enrollment{
			StudentID: student.ID,
			CourseID:  course.ID,
			CourseFee: course.TotalFee,
			Status:    models.EnrollmentActive,
		}

		err = tx.Create(&enrollment).Error
		if err != nil {
			return err
		}

		balance = student.DuesBalance.Add(course.TotalFee)
		err = setBalance(tx, &student, balance)
		if err != nil {
			return err
		}

		err = notify(tx, student.ID, models.NotificationEnrollment,
			fmt.Sprintf("You have been enrolled in %s (%s). Course fee of %s has been added to your dues.",
				course.Name, course.CourseCode, course.TotalFee.StringFixed(2)))
		if err != nil {
			return err
		}

		return logAction(tx, student.ID, student.ID, models.ActionEnrollment,
			fmt.Sprintf("Enrolled in course %s with fee %s", course.CourseCode, course.TotalFee.StringFixed(2)))
	})
	if err != nil {
		return models.Enrollment{}, decimal.Zero, err
	}

	return enrollment, balance, nil
}

// Drop removes an active enrollment and refunds the fee snapshot from the
// dues balance, clamped at zero.
//
// Dropping is rejected as soon as the student has any payment on record,
// regardless of which course the payment was for.
func Drop(studentID, courseID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		var enrollment models.Enrollment
		err = tx.First(&enrollment, models.Enrollment{
			StudentID: studentID,
			CourseID:  courseID,
			Status:    models.EnrollmentActive,
		}).Error
		if err != nil {
			return err
		}

		var payments int64
		err = tx.Model(&models.Payment{}).Where(&models.Payment{StudentID: studentID}).Count(&payments).Error
		if err != nil {
			return err
		}

		if payments > 0 {
			return models.ErrDropAfterPayment
		}

		// Hard delete so that the student can re-enroll later
		err = tx.Unscoped().Delete(&enrollment).Error
		if err != nil {
			return err
		}

		balance = clampZero(student.DuesBalance.Sub(enrollment.CourseFee))
		err = setBalance(tx, &student, balance)
		if err != nil {
			return err
		}

		var course models.Course
		err = tx.First(&course, "id = ?", courseID).Error
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationCourseDropped,
			fmt.Sprintf("You have dropped %s (%s). The course fee of %s has been removed from your dues.",
				course.Name, course.CourseCode, enrollment.CourseFee.StringFixed(2)))
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// RemoveCourse deletes a course and cascades to its enrollments. Every
// enrolled student is refunded the fee snapshot of their enrollment, clamped
// at zero, and notified.
//
// Unlike Drop, removal is an administrative action and is not rejected when
// students already have payments on record.
func RemoveCourse(courseID uuid.UUID) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		err := tx.First(&course, "id = ?", courseID).Error
		if err != nil {
			return err
		}

		var enrollments []models.Enrollment
		err = tx.Find(&enrollments, models.Enrollment{CourseID: courseID}).Error
		if err != nil {
			return err
		}

		for _, enrollment := range enrollments {
			student, err := models.Student(tx, enrollment.StudentID)
			if err != nil {
				return err
			}

			if enrollment.Status == models.EnrollmentActive {
				balance := clampZero(student.DuesBalance.Sub(enrollment.CourseFee))
				err = setBalance(tx, &student, balance)
				if err != nil {
					return err
				}
			}

			// Hard delete so that the course row can go away with it
			err = tx.Unscoped().Delete(&enrollment).Error
			if err != nil {
				return err
			}

			err = notify(tx, student.ID, models.NotificationCourseDropped,
				fmt.Sprintf("%s (%s) has been removed from the course catalog. The course fee of %s has been removed from your dues.",
					course.Name, course.CourseCode, enrollment.CourseFee.StringFixed(2)))
			if err != nil {
				return err
			}
		}

		return tx.Delete(&course).Error
	})
}

// RecordPayment records a payment submitted by the student.
//
// Bank transfers stay PENDING and leave the balance untouched until the
// reconciliation matcher verifies them against a bank transaction. All other
// methods settle immediately: the amount must not exceed the outstanding
// balance and is subtracted right away.
func RecordPayment(studentID uuid.UUID, amount decimal.Decimal, method models.PaymentMethod, reference, notes string) (models.Payment, decimal.Decimal, error) {
	var payment models.Payment
	var balance decimal.Decimal

	if !amount.IsPositive() {
		return models.Payment{}, decimal.Zero, models.ErrPaymentAmountNotPositive
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		payment = models.Payment{
			StudentID:       student.ID,
			Amount:          amount,
			Method:          method,
			ReferenceNumber: reference,
			Notes:           notes,
			RecordedByID:    &student.ID,
		}

		if method == models.PaymentMethodBankTransfer {
			// Unverified, settles on reconciliation
			payment.Status = models.PaymentPending
			balance = student.DuesBalance

			err = tx.Create(&payment).Error
			if err != nil {
				return err
			}

			return notify(tx, student.ID, models.NotificationPaymentPending,
				fmt.Sprintf("Your bank transfer of %s is pending verification. Your dues remain %s until it is confirmed.",
					amount.StringFixed(2), balance.StringFixed(2)))
		}

		if amount.GreaterThan(student.DuesBalance) {
			return models.ErrOverpayment
		}

		payment.Status = models.PaymentReceived
		err = tx.Create(&payment).Error
		if err != nil {
			return err
		}

		balance = clampZero(student.DuesBalance.Sub(amount))
		err = setBalance(tx, &student, balance)
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationPaymentReceived,
			fmt.Sprintf("Payment of %s has been recorded. Remaining dues: %s", amount.StringFixed(2), balance.StringFixed(2)))
	})
	if err != nil {
		return models.Payment{}, decimal.Zero, err
	}

	return payment, balance, nil
}

// RecordExternalPayment records a payment on behalf of a student, e.g. one
// received outside the system. It always settles immediately, clamped at
// zero, and names the acting admin in the audit trail.
func RecordExternalPayment(adminID, studentID uuid.UUID, amount decimal.Decimal, method models.PaymentMethod, reference, notes string) (models.Payment, decimal.Decimal, error) {
	var payment models.Payment
	var balance decimal.Decimal

	if !amount.IsPositive() {
		return models.Payment{}, decimal.Zero, models.ErrPaymentAmountNotPositive
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := models.Admin(tx, adminID)
		if err != nil {
			return err
		}

		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		payment = models.Payment{
			StudentID:       student.ID,
			Amount:          amount,
			Method:          method,
			Status:          models.PaymentReceived,
			ReferenceNumber: reference,
			Notes:           notes,
			RecordedByID:    &admin.ID,
		}

		err = tx.Create(&payment).Error
		if err != nil {
			return err
		}

		balance = clampZero(student.DuesBalance.Sub(amount))
		err = setBalance(tx, &student, balance)
		if err != nil {
			return err
		}

		err = logAction(tx, student.ID, admin.ID, models.ActionPaymentRecorded,
			fmt.Sprintf("Recorded external payment of %s via %s", amount.StringFixed(2), payment.Method))
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationPaymentReceived,
			fmt.Sprintf("Payment of %s has been recorded. Remaining dues: %s", amount.StringFixed(2), balance.StringFixed(2)))
	})
	if err != nil {
		return models.Payment{}, decimal.Zero, err
	}

	return payment, balance, nil
}

// ApplyPenalty adds a penalty to a student's dues balance. Penalties only
// ever increase the balance, there is nothing to clamp.
func ApplyPenalty(adminID, studentID uuid.UUID, amount decimal.Decimal, penaltyType, notes string) (models.Penalty, decimal.Decimal, error) {
	var penalty models.Penalty
	var balance decimal.Decimal

	if !amount.IsPositive() {
		return models.Penalty{}, decimal.Zero, models.ErrPenaltyAmountNotPositive
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := models.Admin(tx, adminID)
		if err != nil {
			return err
		}

		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		penalty = models.Penalty{
			StudentID:   student.ID,
			Amount:      amount,
			Type:        penaltyType,
			Notes:       notes,
			AppliedByID: admin.ID,
		}

		err = tx.Create(&penalty).Error
		if err != nil {
			return err
		}

		balance = student.DuesBalance.Add(amount)
		err = setBalance(tx, &student, balance)
		if err != nil {
			return err
		}

		err = logAction(tx, student.ID, admin.ID, models.ActionPenaltyApplied,
			fmt.Sprintf("Applied %s penalty of %s", penalty.Type, amount.StringFixed(2)))
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationPenaltyApplied,
			fmt.Sprintf("A %s penalty of %s has been applied to your account. Your dues are now %s.",
				penalty.Type, amount.StringFixed(2), balance.StringFixed(2)))
	})
	if err != nil {
		return models.Penalty{}, decimal.Zero, err
	}

	return penalty, balance, nil
}

// Block prevents a student from registering for courses. The dues balance is
// not touched.
func Block(adminID, studentID uuid.UUID, reason string) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := models.Admin(tx, adminID)
		if err != nil {
			return err
		}

		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		now := time.Now().In(time.UTC)
		student.IsBlocked = true
		student.BlockedReason = reason
		student.BlockedAt = &now

		err = tx.Model(&student).Select("IsBlocked", "BlockedReason", "BlockedAt").Updates(student).Error
		if err != nil {
			return err
		}

		err = logAction(tx, student.ID, admin.ID, models.ActionBlocked,
			fmt.Sprintf("Blocked registration: %s", reason))
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationBlocked,
			fmt.Sprintf("Your course registration has been blocked: %s", reason))
	})
}

// Unblock lifts a registration block.
func Unblock(adminID, studentID uuid.UUID) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := models.Admin(tx, adminID)
		if err != nil {
			return err
		}

		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		err = tx.Model(&student).Updates(map[string]any{
			"is_blocked":     false,
			"blocked_reason": "",
			"blocked_at":     nil,
		}).Error
		if err != nil {
			return err
		}

		err = logAction(tx, student.ID, admin.ID, models.ActionUnblocked, "Unblocked registration")
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationUnblocked, "Your course registration has been unblocked.")
	})
}

// Contact logs that the finance department reached out to a student about
// outstanding dues and notifies the student.
func Contact(adminID, studentID uuid.UUID, contactMethod, notes string) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := models.Admin(tx, adminID)
		if err != nil {
			return err
		}

		student, err := models.Student(tx, studentID)
		if err != nil {
			return err
		}

		err = logAction(tx, student.ID, admin.ID, models.ActionContactRequest,
			fmt.Sprintf("Contacted student via %s. Notes: %s", contactMethod, notes))
		if err != nil {
			return err
		}

		return notify(tx, student.ID, models.NotificationContactRequest,
			fmt.Sprintf("The finance department has contacted you regarding your outstanding dues of %s",
				student.DuesBalance.StringFixed(2)))
	})
}
