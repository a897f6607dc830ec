package reporting_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"github.com/unifin/backend/internal/reporting"
)

func (suite *TestSuiteStandard) TestFacultySummary() {
	science := suite.createTestFaculty(models.Faculty{Name: "Science", Code: "SCI"})
	arts := suite.createTestFaculty(models.Faculty{Name: "Arts", Code: "ART"})

	physics := suite.createTestCourse(science.ID, decimal.NewFromInt(3000))
	painting := suite.createTestCourse(arts.ID, decimal.NewFromInt(1000))

	student := suite.createTestStudent(models.User{DuesBalance: decimal.NewFromInt(2000)})
	_ = suite.createTestEnrollment(models.Enrollment{StudentID: student.ID, CourseID: physics.ID, CourseFee: physics.TotalFee})
	_ = suite.createTestEnrollment(models.Enrollment{StudentID: student.ID, CourseID: painting.ID, CourseFee: painting.TotalFee})

	// 2000 paid against 4000 total fees: 1500 allocated to Science, 500 to
	// Arts by fee share
	_ = suite.createTestPayment(models.Payment{
		StudentID:   student.ID,
		Amount:      decimal.NewFromInt(2000),
		PaymentDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	})

	summaries, err := reporting.FacultySummary(nil, nil)
	suite.Require().Nil(err)
	suite.Require().Len(summaries, 2)

	// Ordered by faculty name
	suite.Assert().Equal("Arts", summaries[0].Name)
	suite.Assert().Equal("Science", summaries[1].Name)

	suite.Assert().Equal(1, summaries[1].EnrolledStudents)
	suite.Assert().True(summaries[1].ExpectedFees.Equal(decimal.NewFromInt(3000)), "Expected fees are %s, should be 3000", summaries[1].ExpectedFees)
	suite.Assert().True(summaries[1].Collected.Equal(decimal.NewFromInt(1500)), "Collected is %s, should be 1500", summaries[1].Collected)
	suite.Assert().True(summaries[1].CollectionRate.Equal(decimal.NewFromInt(50)), "Collection rate is %s, should be 50", summaries[1].CollectionRate)
	suite.Assert().True(summaries[1].Estimate)

	suite.Assert().True(summaries[0].ExpectedFees.Equal(decimal.NewFromInt(1000)), "Expected fees are %s, should be 1000", summaries[0].ExpectedFees)
	suite.Assert().True(summaries[0].Collected.Equal(decimal.NewFromInt(500)), "Collected is %s, should be 500", summaries[0].Collected)
}

func (suite *TestSuiteStandard) TestFacultySummaryEmptyFaculty() {
	_ = suite.createTestFaculty(models.Faculty{Name: "Empty", Code: "EMP"})

	summaries, err := reporting.FacultySummary(nil, nil)
	suite.Require().Nil(err)
	suite.Require().Len(summaries, 1)

	suite.Assert().Equal(0, summaries[0].EnrolledStudents)
	suite.Assert().True(summaries[0].ExpectedFees.IsZero())
	suite.Assert().True(summaries[0].CollectionRate.IsZero())
}

func (suite *TestSuiteStandard) TestUniversity() {
	faculty := suite.createTestFaculty(models.Faculty{})
	course := suite.createTestCourse(faculty.ID, decimal.NewFromInt(4000))

	student := suite.createTestStudent(models.User{DuesBalance: decimal.NewFromInt(3000)})
	_ = suite.createTestEnrollment(models.Enrollment{StudentID: student.ID, CourseID: course.ID, CourseFee: course.TotalFee})

	_ = suite.createTestPayment(models.Payment{
		StudentID:   student.ID,
		Amount:      decimal.NewFromInt(1000),
		Method:      models.PaymentMethodOnline,
		PaymentDate: time.Now().In(time.UTC),
	})

	summary, err := reporting.University(nil, nil)
	suite.Require().Nil(err)

	suite.Assert().Equal(1, summary.TotalStudents)
	suite.Assert().True(summary.TotalExpected.Equal(decimal.NewFromInt(4000)), "Expected is %s, should be 4000", summary.TotalExpected)
	suite.Assert().True(summary.TotalCollected.Equal(decimal.NewFromInt(1000)), "Collected is %s, should be 1000", summary.TotalCollected)
	suite.Assert().True(summary.TotalOutstanding.Equal(decimal.NewFromInt(3000)), "Outstanding is %s, should be 3000", summary.TotalOutstanding)
	suite.Assert().True(summary.CollectionRate.Equal(decimal.NewFromInt(25)), "Collection rate is %s, should be 25", summary.CollectionRate)

	// Trailing months, oldest first, the current month holds the payment
	suite.Require().Len(summary.MonthlySeries, 6)
	current := summary.MonthlySeries[5]
	suite.Assert().Equal(time.Now().UTC().Format("2006-01"), current.Month)
	suite.Assert().True(current.Collected.Equal(decimal.NewFromInt(1000)), "Month collected is %s, should be 1000", current.Collected)

	suite.Require().Len(summary.ByMethod, 3)
	for _, method := range summary.ByMethod {
		if method.Method == models.PaymentMethodOnline {
			suite.Assert().True(method.Amount.Equal(decimal.NewFromInt(1000)))
		} else {
			suite.Assert().True(method.Amount.IsZero())
		}
	}

	suite.Require().Len(summary.ByFaculty, 1)
	suite.Assert().Equal(faculty.ID, summary.ByFaculty[0].FacultyID)
}

func (suite *TestSuiteStandard) TestSummary() {
	_ = suite.createTestAdmin()
	paid := suite.createTestStudent(models.User{Username: "paid"})
	partial := suite.createTestStudent(models.User{Username: "partial", DuesBalance: decimal.NewFromInt(500)})
	_ = suite.createTestStudent(models.User{Username: "unpaid", DuesBalance: decimal.NewFromInt(1000)})

	_ = suite.createTestPayment(models.Payment{
		StudentID:   paid.ID,
		Amount:      decimal.NewFromInt(2000),
		PaymentDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	_ = suite.createTestPayment(models.Payment{
		StudentID:   partial.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	// PENDING payments do not count as collected
	_ = suite.createTestPayment(models.Payment{
		StudentID:   partial.ID,
		Amount:      decimal.NewFromInt(100),
		Method:      models.PaymentMethodBankTransfer,
		Status:      models.PaymentPending,
		PaymentDate: time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
	})

	summary, err := reporting.Summary()
	suite.Require().Nil(err)

	suite.Assert().Equal(3, summary.TotalStudents)
	suite.Assert().True(summary.TotalCollected.Equal(decimal.NewFromInt(2500)), "Collected is %s, should be 2500", summary.TotalCollected)
	suite.Assert().Equal(1, summary.PaidStudents)
	suite.Assert().Equal(1, summary.PartialStudents)
	suite.Assert().Equal(1, summary.UnpaidStudents)
}
