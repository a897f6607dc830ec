package v1_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	v1 "github.com/unifin/backend/internal/controllers/v1"
	"github.com/unifin/backend/test"
)

func (suite *TestSuiteStandard) TestReportsFacultySummary() {
	faculty := createTestFaculty(suite.T(), v1.FacultyEditable{})
	student := createTestStudent(suite.T(), v1.StudentEditable{FacultyID: &faculty.Data.ID})
	course := createTestCourse(suite.T(), v1.CourseEditable{FacultyID: faculty.Data.ID})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	_ = createTestPayment(suite.T(), v1.PaymentEditable{
		StudentID: student.Data.ID,
		Amount:    decimal.NewFromInt(1000),
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/reports/faculty-summary", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FacultySummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 1)
	suite.Assert().Equal(1, response.Data[0].EnrolledStudents)
	suite.Assert().True(response.Data[0].ExpectedFees.Equal(decimal.NewFromInt(2500)))
	suite.Assert().True(response.Data[0].Collected.Equal(decimal.NewFromInt(1000)))
	suite.Assert().True(response.Data[0].CollectionRate.Equal(decimal.NewFromInt(40)))
	suite.Assert().True(response.Data[0].Estimate)
}

func (suite *TestSuiteStandard) TestReportsFacultySummaryBadRange() {
	r := test.Request(suite.T(), http.MethodGet, "/v1/reports/faculty-summary?from=yesterday", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestReportsUniversitySummary() {
	student := createTestStudent(suite.T(), v1.StudentEditable{})
	course := createTestCourse(suite.T(), v1.CourseEditable{})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	_ = createTestPayment(suite.T(), v1.PaymentEditable{
		StudentID: student.Data.ID,
		Amount:    decimal.NewFromInt(500),
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/reports/university-summary", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.UniversitySummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(1, response.Data.TotalStudents)
	suite.Assert().True(response.Data.TotalExpected.Equal(decimal.NewFromInt(2500)))
	suite.Assert().True(response.Data.TotalCollected.Equal(decimal.NewFromInt(500)))
	suite.Assert().True(response.Data.TotalOutstanding.Equal(decimal.NewFromInt(2000)))
	suite.Assert().Len(response.Data.MonthlySeries, 6)
}

func (suite *TestSuiteStandard) TestReportsFinanceSummary() {
	student := createTestStudent(suite.T(), v1.StudentEditable{})
	_ = createTestStudent(suite.T(), v1.StudentEditable{})
	course := createTestCourse(suite.T(), v1.CourseEditable{})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	_ = createTestPayment(suite.T(), v1.PaymentEditable{
		StudentID: student.Data.ID,
		Amount:    decimal.NewFromInt(500),
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/reports/summary", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FinanceSummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(2, response.Data.TotalStudents)
	suite.Assert().Equal(1, response.Data.PaidStudents)
	suite.Assert().Equal(1, response.Data.PartialStudents)
	suite.Assert().True(response.Data.TotalCollected.Equal(decimal.NewFromInt(500)))
}

func (suite *TestSuiteStandard) TestReportsGenerateDownload() {
	admin := createTestAdmin(suite.T())
	student := createTestStudent(suite.T(), v1.StudentEditable{})
	course := createTestCourse(suite.T(), v1.CourseEditable{})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	r := test.Request(suite.T(), http.MethodPost, "/v1/reports/generate", v1.GenerateEditable{
		AdminID: admin.Data.ID,
		Type:    "DUES",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var generated v1.GeneratedReportResponse
	test.DecodeResponse(suite.T(), &r, &generated)
	suite.Assert().Equal(fmt.Sprintf("RPT-%d-001", time.Now().UTC().Year()), generated.Data.ReportID)
	suite.Assert().Equal("DUES", generated.Data.Type)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/reports/download/%s", generated.Data.ReportID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var downloaded v1.GeneratedReportResponse
	test.DecodeResponse(suite.T(), &r, &downloaded)
	suite.Assert().Equal(generated.Data.ReportID, downloaded.Data.ReportID)
	suite.Assert().JSONEq(string(generated.Data.Payload), string(downloaded.Data.Payload))
}

func (suite *TestSuiteStandard) TestReportsGenerateUnknownType() {
	admin := createTestAdmin(suite.T())

	r := test.Request(suite.T(), http.MethodPost, "/v1/reports/generate", v1.GenerateEditable{
		AdminID: admin.Data.ID,
		Type:    "CAFETERIA_REVENUE",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestReportsGenerateNoAdmin() {
	student := createTestStudent(suite.T(), v1.StudentEditable{})

	r := test.Request(suite.T(), http.MethodPost, "/v1/reports/generate", v1.GenerateEditable{
		AdminID: student.Data.ID,
		Type:    "DUES",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestReportsDownloadNonexistent() {
	r := test.Request(suite.T(), http.MethodGet, "/v1/reports/download/RPT-2026-999", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
