package reconciliation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Confidence ranks how likely a suggestion is to be the right match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// rank orders confidences for sorting, lower is better.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// Suggestion is one candidate match for an unmatched bank transaction.
// Either StudentID or PaymentID is set, depending on what matched.
type Suggestion struct {
	Confidence  Confidence      `json:"confidence"`
	Reason      string          `json:"reason"`
	StudentID   *uuid.UUID      `json:"studentId,omitempty"`
	Username    string          `json:"username,omitempty"`
	DuesBalance decimal.Decimal `json:"duesBalance"`
	PaymentID   *uuid.UUID      `json:"paymentId,omitempty"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
}

var ErrNoUnmatchedTransaction = errors.New("suggestions are only available for unmatched bank transactions")

// Suggest produces ranked match candidates for an unmatched transaction:
// students whose dues balance equals the amount exactly (high), students
// whose balance is within the tolerance (medium), and settled payments with
// the identical amount inside the match window (high). The list is sorted by
// confidence and capped at SuggestionLimit.
func Suggest(transactionID uuid.UUID) ([]Suggestion, error) {
	var transaction models.BankTransaction
	err := models.DB.First(&transaction, "id = ?", transactionID).Error
	if err != nil {
		return nil, err
	}

	if transaction.Status != models.BankTransactionUnmatched {
		return nil, ErrNoUnmatchedTransaction
	}

	suggestions := make([]Suggestion, 0, SuggestionLimit)

	var students []models.User
	err = models.DB.
		Where("is_admin = ?", false).
		Where("dues_balance > 0").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	tolerance := transaction.Amount.Mul(BalanceTolerance).Abs()
	for _, student := range students {
		student := student

		if student.DuesBalance.Equal(transaction.Amount) {
			suggestions = append(suggestions, Suggestion{
				Confidence:  ConfidenceHigh,
				Reason:      "dues balance matches the transaction amount exactly",
				StudentID:   &student.ID,
				Username:    student.Username,
				DuesBalance: student.DuesBalance,
			})
			continue
		}

		if student.DuesBalance.Sub(transaction.Amount).Abs().LessThanOrEqual(tolerance) {
			suggestions = append(suggestions, Suggestion{
				Confidence:  ConfidenceMedium,
				Reason:      "dues balance is within tolerance of the transaction amount",
				StudentID:   &student.ID,
				Username:    student.Username,
				DuesBalance: student.DuesBalance,
			})
		}
	}

	var payments []models.Payment
	err = models.DB.
		Preload("Student").
		Where("amount = ?", transaction.Amount).
		Where("status = ?", models.PaymentReceived).
		Where("datetime(payment_date) >= datetime(?)", transaction.TransactionDate.Add(-MatchWindow)).
		Where("datetime(payment_date) <= datetime(?)", transaction.TransactionDate.Add(MatchWindow)).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	for _, payment := range payments {
		payment := payment

		suggestions = append(suggestions, Suggestion{
			Confidence:  ConfidenceHigh,
			Reason:      "payment with identical amount inside the match window",
			PaymentID:   &payment.ID,
			PaymentDate: &payment.PaymentDate,
			Username:    payment.Student.Username,
			DuesBalance: payment.Student.DuesBalance,
		})
	}

	slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
		return a.Confidence.rank() - b.Confidence.rank()
	})

	if len(suggestions) > SuggestionLimit {
		suggestions = suggestions[:SuggestionLimit]
	}

	return suggestions, nil
}

// MatchRequest selects what an unmatched transaction is matched against.
// Either PaymentID is set, or StudentID together with CreatePayment.
type MatchRequest struct {
	PaymentID     *uuid.UUID `json:"paymentId"`
	StudentID     *uuid.UUID `json:"studentId"`
	CreatePayment bool       `json:"createPayment"`
}

var ErrMatchTargetMissing = errors.New("either a payment id or a student id with createPayment must be given")

// ManualMatch confirms a match chosen by an admin.
//
// Attaching to an existing payment settles that payment (a PENDING bank
// transfer is verified now, a RECEIVED payment only changes status). With
// CreatePayment set, a new RECEIVED payment over the transaction amount is
// synthesized for the student and the dues balance is decremented, clamped
// at zero.
func ManualMatch(adminID, transactionID uuid.UUID, request MatchRequest) (models.BankTransaction, error) {
	var transaction models.BankTransaction

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		_, err := models.Admin(tx, adminID)
		if err != nil {
			return err
		}

		err = tx.First(&transaction, "id = ?", transactionID).Error
		if err != nil {
			return err
		}

		if transaction.Status == models.BankTransactionMatched {
			return models.ErrAlreadyMatched
		}

		if request.PaymentID != nil {
			var payment models.Payment
			err := tx.First(&payment, "id = ?", *request.PaymentID).Error
			if err != nil {
				return err
			}

			// A payment settles at most one bank transaction
			var claimed int64
			err = tx.Model(&models.BankTransaction{}).Where("matched_payment_id = ?", payment.ID).Count(&claimed).Error
			if err != nil {
				return err
			}

			if claimed > 0 {
				return models.ErrPaymentClaimed
			}

			err = settlePayment(tx, &payment)
			if err != nil {
				return err
			}

			return stampMatch(tx, &transaction, payment.ID, payment.StudentID, adminID)
		}

		if request.StudentID != nil && request.CreatePayment {
			return settleForStudent(tx, &transaction, *request.StudentID, adminID)
		}

		return ErrMatchTargetMissing
	})
	if err != nil {
		return models.BankTransaction{}, err
	}

	return transaction, nil
}
