// Package reporting computes point-in-time financial views over the entity
// store. Nothing in this package mutates ledger state, generated reports are
// persisted as snapshots of their payload.
package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"golang.org/x/exp/slices"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Dues tier boundaries.
var (
	CriticalDues = decimal.NewFromInt(5000)
	ModerateDues = decimal.NewFromInt(1000)
)

// DuesFilter narrows the dues report population.
type DuesFilter struct {
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	SortBy    string // "dues_balance" (default, descending) or "username" (ascending)
}

// StudentDues is one row of the dues report.
type StudentDues struct {
	UserID           uuid.UUID       `json:"userId"`
	Username         string          `json:"username"`
	Email            *string         `json:"email"`
	DuesBalance      decimal.Decimal `json:"duesBalance"`
	TotalEnrollments int64           `json:"totalEnrollments"`
	LastPaymentDate  *time.Time      `json:"lastPaymentDate"`
}

// DuesReport lists all students with outstanding dues.
type DuesReport struct {
	TotalStudents    int             `json:"totalStudentsWithDues"`
	TotalOutstanding decimal.Decimal `json:"totalOutstandingAmount"`
	Students         []StudentDues   `json:"students"`
}

// Dues lists students with a dues balance above zero, optionally filtered by
// amount bounds. Sorting is deterministic: by balance descending, or by
// username ascending with locale-aware collation.
func Dues(filter DuesFilter) (DuesReport, error) {
	query := models.DB.
		Where("is_admin = ?", false).
		Where("dues_balance > 0")

	if filter.MinAmount != nil {
		query = query.Where("dues_balance >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("dues_balance <= ?", *filter.MaxAmount)
	}

	var students []models.User
	err := query.Find(&students).Error
	if err != nil {
		return DuesReport{}, err
	}

	if filter.SortBy == "username" {
		collator := collate.New(language.English)
		slices.SortStableFunc(students, func(a, b models.User) int {
			return collator.CompareString(a.Username, b.Username)
		})
	} else {
		slices.SortStableFunc(students, func(a, b models.User) int {
			return b.DuesBalance.Cmp(a.DuesBalance)
		})
	}

	report := DuesReport{
		TotalStudents:    len(students),
		TotalOutstanding: decimal.Zero,
		Students:         make([]StudentDues, 0, len(students)),
	}

	for _, student := range students {
		row := StudentDues{
			UserID:      student.ID,
			Username:    student.Username,
			Email:       student.Email,
			DuesBalance: student.DuesBalance,
		}

		err = models.DB.Model(&models.Enrollment{}).
			Where(&models.Enrollment{StudentID: student.ID}).
			Count(&row.TotalEnrollments).Error
		if err != nil {
			return DuesReport{}, err
		}

		var lastPayment models.Payment
		err = models.DB.
			Where(&models.Payment{StudentID: student.ID}).
			Order("datetime(payment_date) DESC").
			Limit(1).
			Find(&lastPayment).Error
		if err != nil {
			return DuesReport{}, err
		}

		if lastPayment.ID != uuid.Nil {
			row.LastPaymentDate = &lastPayment.PaymentDate
		}

		report.TotalOutstanding = report.TotalOutstanding.Add(student.DuesBalance)
		report.Students = append(report.Students, row)
	}

	return report, nil
}

// EnrollmentDetail is one enrollment in the unpaid status report.
type EnrollmentDetail struct {
	CourseName     string          `json:"courseName"`
	CourseCode     string          `json:"courseCode"`
	CourseFee      decimal.Decimal `json:"courseFee"`
	EnrollmentDate time.Time       `json:"enrollmentDate"`
}

// PaymentDetail is one payment in the unpaid status report.
type PaymentDetail struct {
	Amount      decimal.Decimal      `json:"amount"`
	PaymentDate time.Time            `json:"paymentDate"`
	Method      models.PaymentMethod `json:"paymentMethod"`
}

// UnpaidStudent is one student in the unpaid status report.
type UnpaidStudent struct {
	UserID         uuid.UUID          `json:"userId"`
	Username       string             `json:"username"`
	Email          *string            `json:"email"`
	DuesBalance    decimal.Decimal    `json:"duesBalance"`
	Enrollments    []EnrollmentDetail `json:"enrollments"`
	RecentPayments []PaymentDetail    `json:"recentPayments"`
}

// UnpaidStatusReport buckets students with outstanding dues into severity
// tiers.
type UnpaidStatusReport struct {
	ReportDate       time.Time       `json:"reportDate"`
	TotalStudents    int             `json:"totalStudents"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	Critical         []UnpaidStudent `json:"critical"` // dues > 5000
	Moderate         []UnpaidStudent `json:"moderate"` // 1000 <= dues <= 5000
	Low              []UnpaidStudent `json:"low"`      // dues < 1000
}

// UnpaidStatus builds the detailed unpaid report, including enrollments and
// the last five payments per student.
func UnpaidStatus() (UnpaidStatusReport, error) {
	var students []models.User
	err := models.DB.
		Where("is_admin = ?", false).
		Where("dues_balance > 0").
		Order("dues_balance DESC").
		Find(&students).Error
	if err != nil {
		return UnpaidStatusReport{}, err
	}

	report := UnpaidStatusReport{
		ReportDate:       time.Now().In(time.UTC),
		TotalStudents:    len(students),
		TotalOutstanding: decimal.Zero,
		Critical:         make([]UnpaidStudent, 0),
		Moderate:         make([]UnpaidStudent, 0),
		Low:              make([]UnpaidStudent, 0),
	}

	for _, student := range students {
		var enrollments []models.Enrollment
		err = models.DB.
			Preload("Course").
			Where(&models.Enrollment{StudentID: student.ID}).
			Find(&enrollments).Error
		if err != nil {
			return UnpaidStatusReport{}, err
		}

		var payments []models.Payment
		err = models.DB.
			Where(&models.Payment{StudentID: student.ID}).
			Order("datetime(payment_date) DESC").
			Limit(5).
			Find(&payments).Error
		if err != nil {
			return UnpaidStatusReport{}, err
		}

		row := UnpaidStudent{
			UserID:         student.ID,
			Username:       student.Username,
			Email:          student.Email,
			DuesBalance:    student.DuesBalance,
			Enrollments:    make([]EnrollmentDetail, 0, len(enrollments)),
			RecentPayments: make([]PaymentDetail, 0, len(payments)),
		}

		for _, enrollment := range enrollments {
			row.Enrollments = append(row.Enrollments, EnrollmentDetail{
				CourseName:     enrollment.Course.Name,
				CourseCode:     enrollment.Course.CourseCode,
				CourseFee:      enrollment.CourseFee,
				EnrollmentDate: enrollment.EnrolledAt,
			})
		}

		for _, payment := range payments {
			row.RecentPayments = append(row.RecentPayments, PaymentDetail{
				Amount:      payment.Amount,
				PaymentDate: payment.PaymentDate,
				Method:      payment.Method,
			})
		}

		report.TotalOutstanding = report.TotalOutstanding.Add(student.DuesBalance)

		switch {
		case student.DuesBalance.GreaterThan(CriticalDues):
			report.Critical = append(report.Critical, row)
		case student.DuesBalance.GreaterThanOrEqual(ModerateDues):
			report.Moderate = append(report.Moderate, row)
		default:
			report.Low = append(report.Low, row)
		}
	}

	return report, nil
}

// PassFailStudent is one student in the pass/fail report.
type PassFailStudent struct {
	UserID           uuid.UUID       `json:"userId"`
	Username         string          `json:"username"`
	Email            *string         `json:"email"`
	DuesBalance      decimal.Decimal `json:"duesBalance"`
	TotalFees        decimal.Decimal `json:"totalFees"`
	TotalEnrollments int             `json:"totalEnrollments"`
	Status           string          `json:"status"` // PASS or FAIL
}

// PassFailReport classifies all students by their payment condition.
type PassFailReport struct {
	ReportDate    time.Time         `json:"reportDate"`
	Threshold     decimal.Decimal   `json:"threshold"`
	TotalStudents int               `json:"totalStudents"`
	PassCount     int               `json:"passCount"`
	FailCount     int               `json:"failCount"`
	PassStudents  []PassFailStudent `json:"passStudents"`
	FailStudents  []PassFailStudent `json:"failStudents"`
}

// PassFail classifies every student as PASS when the dues balance is at or
// below the threshold, FAIL otherwise. The default threshold of zero fails
// any student with outstanding dues.
func PassFail(threshold decimal.Decimal) (PassFailReport, error) {
	var students []models.User
	err := models.DB.Where("is_admin = ?", false).Find(&students).Error
	if err != nil {
		return PassFailReport{}, err
	}

	report := PassFailReport{
		ReportDate:    time.Now().In(time.UTC),
		Threshold:     threshold,
		TotalStudents: len(students),
		PassStudents:  make([]PassFailStudent, 0),
		FailStudents:  make([]PassFailStudent, 0),
	}

	for _, student := range students {
		var enrollments []models.Enrollment
		err = models.DB.Where(&models.Enrollment{StudentID: student.ID}).Find(&enrollments).Error
		if err != nil {
			return PassFailReport{}, err
		}

		totalFees := decimal.Zero
		for _, enrollment := range enrollments {
			totalFees = totalFees.Add(enrollment.CourseFee)
		}

		row := PassFailStudent{
			UserID:           student.ID,
			Username:         student.Username,
			Email:            student.Email,
			DuesBalance:      student.DuesBalance,
			TotalFees:        totalFees,
			TotalEnrollments: len(enrollments),
		}

		if student.DuesBalance.LessThanOrEqual(threshold) {
			row.Status = "PASS"
			report.PassCount++
			report.PassStudents = append(report.PassStudents, row)
		} else {
			row.Status = "FAIL"
			report.FailCount++
			report.FailStudents = append(report.FailStudents, row)
		}
	}

	return report, nil
}
