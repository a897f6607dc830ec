package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"gorm.io/gorm"
)

// settledStatuses are the payment statuses that have settled the balance.
var settledStatuses = []models.PaymentStatus{models.PaymentReceived, models.PaymentReconciled}

// FacultyCollection is the aggregation for one faculty.
//
// Collected is an estimate: the system has no per-enrollment payment
// allocation, so a student's payments are attributed to faculties in
// proportion to the student's fee snapshots per faculty.
type FacultyCollection struct {
	FacultyID        uuid.UUID       `json:"facultyId"`
	Name             string          `json:"name"`
	Code             string          `json:"code"`
	EnrolledStudents int             `json:"enrolledStudents"`
	ExpectedFees     decimal.Decimal `json:"expectedFees"`
	Collected        decimal.Decimal `json:"collectedEstimate"`
	CollectionRate   decimal.Decimal `json:"collectionRate"` // percent, 0 when nothing is expected
	Estimate         bool            `json:"estimate"`
}

// dateRange applies an optional date range to a query on the given column.
func dateRange(query *gorm.DB, column string, from, until *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("datetime("+column+") >= datetime(?)", *from)
	}
	if until != nil {
		query = query.Where("datetime("+column+") <= datetime(?)", *until)
	}

	return query
}

// studentAllocation holds the per-student inputs of the proportional
// allocation heuristic.
type studentAllocation struct {
	paid         decimal.Decimal               // settled payments in range
	feeByFaculty map[uuid.UUID]decimal.Decimal // active enrollment fee snapshots per faculty
	totalFees    decimal.Decimal
}

// collectAllocations walks all students and splits their fees and payments
// across faculties.
func collectAllocations(from, until *time.Time) (map[uuid.UUID]*studentAllocation, error) {
	var students []models.User
	err := models.DB.Where("is_admin = ?", false).Find(&students).Error
	if err != nil {
		return nil, err
	}

	allocations := make(map[uuid.UUID]*studentAllocation, len(students))
	for _, student := range students {
		allocation := &studentAllocation{
			paid:         decimal.Zero,
			feeByFaculty: make(map[uuid.UUID]decimal.Decimal),
			totalFees:    decimal.Zero,
		}

		var enrollments []models.Enrollment
		query := models.DB.
			Preload("Course").
			Where(&models.Enrollment{StudentID: student.ID, Status: models.EnrollmentActive})
		err = dateRange(query, "enrolled_at", from, until).Find(&enrollments).Error
		if err != nil {
			return nil, err
		}

		for _, enrollment := range enrollments {
			facultyID := enrollment.Course.FacultyID
			allocation.feeByFaculty[facultyID] = allocation.feeByFaculty[facultyID].Add(enrollment.CourseFee)
			allocation.totalFees = allocation.totalFees.Add(enrollment.CourseFee)
		}

		var paid decimal.NullDecimal
		query = models.DB.Model(&models.Payment{}).
			Where("student_id = ?", student.ID).
			Where("status IN ?", settledStatuses)
		err = dateRange(query, "payment_date", from, until).
			Select("SUM(amount)").
			Row().
			Scan(&paid)
		if err != nil {
			return nil, err
		}

		allocation.paid = paid.Decimal
		allocations[student.ID] = allocation
	}

	return allocations, nil
}

// FacultySummary aggregates enrollment counts, expected fees and estimated
// collections per faculty.
func FacultySummary(from, until *time.Time) ([]FacultyCollection, error) {
	var faculties []models.Faculty
	err := models.DB.Order("name ASC").Find(&faculties).Error
	if err != nil {
		return nil, err
	}

	allocations, err := collectAllocations(from, until)
	if err != nil {
		return nil, err
	}

	summaries := make([]FacultyCollection, 0, len(faculties))
	for _, faculty := range faculties {
		summary := FacultyCollection{
			FacultyID:    faculty.ID,
			Name:         faculty.Name,
			Code:         faculty.Code,
			ExpectedFees: decimal.Zero,
			Collected:    decimal.Zero,
			Estimate:     true,
		}

		for _, allocation := range allocations {
			fees, ok := allocation.feeByFaculty[faculty.ID]
			if !ok {
				continue
			}

			summary.EnrolledStudents++
			summary.ExpectedFees = summary.ExpectedFees.Add(fees)

			// Allocate the student's payments proportionally to this
			// faculty's share of the student's fees
			if allocation.totalFees.IsPositive() {
				share := fees.Div(allocation.totalFees)
				summary.Collected = summary.Collected.Add(allocation.paid.Mul(share))
			}
		}

		if summary.ExpectedFees.IsPositive() {
			summary.CollectionRate = summary.Collected.
				Div(summary.ExpectedFees).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// MonthlyCollection is one month in the trailing collection series.
type MonthlyCollection struct {
	Month     string          `json:"month"` // YYYY-MM
	Collected decimal.Decimal `json:"collected"`
	Target    decimal.Decimal `json:"target"` // expected / months, an estimate
}

// MethodCollection is the settled sum for one payment method.
type MethodCollection struct {
	Method models.PaymentMethod `json:"method"`
	Amount decimal.Decimal      `json:"amount"`
}

// UniversitySummary is the whole-institution aggregation.
type UniversitySummary struct {
	TotalStudents    int                 `json:"totalStudents"`
	TotalExpected    decimal.Decimal     `json:"totalExpected"`
	TotalCollected   decimal.Decimal     `json:"totalCollectedEstimate"`
	TotalOutstanding decimal.Decimal     `json:"totalOutstanding"`
	CollectionRate   decimal.Decimal     `json:"collectionRate"`
	MonthlySeries    []MonthlyCollection `json:"monthlySeries"`
	ByMethod         []MethodCollection  `json:"byMethod"`
	ByFaculty        []FacultyCollection `json:"byFaculty"`
	Estimate         bool                `json:"estimate"`
}

// trailingMonths is the length of the collected-vs-target time series.
const trailingMonths = 6

// University aggregates collections at institution scope, with a trailing
// six month time series and breakdowns by payment method and faculty.
func University(from, until *time.Time) (UniversitySummary, error) {
	summary := UniversitySummary{
		TotalExpected:    decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		MonthlySeries:    make([]MonthlyCollection, 0, trailingMonths),
		ByMethod:         make([]MethodCollection, 0),
		Estimate:         true,
	}

	var students []models.User
	err := models.DB.Where("is_admin = ?", false).Find(&students).Error
	if err != nil {
		return UniversitySummary{}, err
	}

	summary.TotalStudents = len(students)
	for _, student := range students {
		summary.TotalOutstanding = summary.TotalOutstanding.Add(student.DuesBalance)
	}

	var expected decimal.NullDecimal
	query := models.DB.Model(&models.Enrollment{}).
		Where("status = ?", models.EnrollmentActive)
	err = dateRange(query, "enrolled_at", from, until).
		Select("SUM(course_fee)").
		Row().
		Scan(&expected)
	if err != nil {
		return UniversitySummary{}, err
	}
	summary.TotalExpected = expected.Decimal

	var collected decimal.NullDecimal
	query = models.DB.Model(&models.Payment{}).
		Where("status IN ?", settledStatuses)
	err = dateRange(query, "payment_date", from, until).
		Select("SUM(amount)").
		Row().
		Scan(&collected)
	if err != nil {
		return UniversitySummary{}, err
	}
	summary.TotalCollected = collected.Decimal

	if summary.TotalExpected.IsPositive() {
		summary.CollectionRate = summary.TotalCollected.
			Div(summary.TotalExpected).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	// Trailing series, oldest month first
	now := time.Now().In(time.UTC)
	monthlyTarget := decimal.Zero
	if summary.TotalExpected.IsPositive() {
		monthlyTarget = summary.TotalExpected.Div(decimal.NewFromInt(trailingMonths)).Round(2)
	}

	for i := trailingMonths - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var monthCollected decimal.NullDecimal
		err = models.DB.Model(&models.Payment{}).
			Where("status IN ?", settledStatuses).
			Where("datetime(payment_date) >= datetime(?)", monthStart).
			Where("datetime(payment_date) < datetime(?)", monthEnd).
			Select("SUM(amount)").
			Row().
			Scan(&monthCollected)
		if err != nil {
			return UniversitySummary{}, err
		}

		summary.MonthlySeries = append(summary.MonthlySeries, MonthlyCollection{
			Month:     monthStart.Format("2006-01"),
			Collected: monthCollected.Decimal,
			Target:    monthlyTarget,
		})
	}

	for _, method := range []models.PaymentMethod{models.PaymentMethodManual, models.PaymentMethodBankTransfer, models.PaymentMethodOnline} {
		var amount decimal.NullDecimal
		query = models.DB.Model(&models.Payment{}).
			Where("status IN ?", settledStatuses).
			Where("method = ?", method)
		err = dateRange(query, "payment_date", from, until).
			Select("SUM(amount)").
			Row().
			Scan(&amount)
		if err != nil {
			return UniversitySummary{}, err
		}

		summary.ByMethod = append(summary.ByMethod, MethodCollection{Method: method, Amount: amount.Decimal})
	}

	summary.ByFaculty, err = FacultySummary(from, until)
	if err != nil {
		return UniversitySummary{}, err
	}

	return summary, nil
}

// FinanceSummary is the compact dashboard aggregation.
type FinanceSummary struct {
	TotalStudents   int             `json:"totalStudents"`
	TotalCollected  decimal.Decimal `json:"totalCollected"`
	PaidStudents    int             `json:"paidStudents"`    // no outstanding dues
	PartialStudents int             `json:"partialStudents"` // outstanding dues, some payment made
	UnpaidStudents  int             `json:"unpaidStudents"`  // outstanding dues, no payment yet
}

// Summary computes student counts by payment standing and the settled total.
func Summary() (FinanceSummary, error) {
	var students []models.User
	err := models.DB.Where("is_admin = ?", false).Find(&students).Error
	if err != nil {
		return FinanceSummary{}, err
	}

	summary := FinanceSummary{
		TotalStudents:  len(students),
		TotalCollected: decimal.Zero,
	}

	for _, student := range students {
		var paid decimal.NullDecimal
		err = models.DB.Model(&models.Payment{}).
			Where("student_id = ?", student.ID).
			Where("status IN ?", settledStatuses).
			Select("SUM(amount)").
			Row().
			Scan(&paid)
		if err != nil {
			return FinanceSummary{}, err
		}

		summary.TotalCollected = summary.TotalCollected.Add(paid.Decimal)

		switch {
		case !student.DuesBalance.IsPositive():
			summary.PaidStudents++
		case paid.Decimal.IsPositive():
			summary.PartialStudents++
		default:
			summary.UnpaidStudents++
		}
	}

	return summary, nil
}
