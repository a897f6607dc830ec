package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	v1 "github.com/unifin/backend/internal/controllers/v1"
	"github.com/unifin/backend/internal/models"
	"github.com/unifin/backend/internal/reconciliation"
	"github.com/unifin/backend/test"
)

func syncTestTransactions(t *testing.T, adminID uuid.UUID, entries []reconciliation.Entry) reconciliation.ImportResult {
	r := test.Request(t, http.MethodPost, "/v1/bank-transactions/sync", v1.SyncEditable{
		AdminID: adminID,
		Entries: entries,
	})
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.SyncResponse
	test.DecodeResponse(t, &r, &response)
	return response.Data
}

func (suite *TestSuiteStandard) TestBankTransactionsOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "/v1/bank-transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("GET", r.Header().Get("allow"))

	r = test.Request(suite.T(), http.MethodOptions, "/v1/bank-transactions/sync", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("POST", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestBankTransactionsSync() {
	admin := createTestAdmin(suite.T())

	result := syncTestTransactions(suite.T(), admin.Data.ID, []reconciliation.Entry{
		{BankRef: "TRX-1", Amount: decimal.NewFromInt(100), Date: time.Now()},
		{BankRef: "TRX-2", Amount: decimal.NewFromInt(200), Date: time.Now()},
	})

	suite.Assert().Equal(2, result.Imported)
	suite.Assert().Equal(2, result.Unmatched)

	// Re-importing the same statement only counts duplicates
	result = syncTestTransactions(suite.T(), admin.Data.ID, []reconciliation.Entry{
		{BankRef: "TRX-1", Amount: decimal.NewFromInt(100), Date: time.Now()},
		{BankRef: "TRX-2", Amount: decimal.NewFromInt(200), Date: time.Now()},
	})

	suite.Assert().Equal(0, result.Imported)
	suite.Assert().Equal(2, result.Duplicates)
}

func (suite *TestSuiteStandard) TestBankTransactionsSyncNoAdmin() {
	student := createTestStudent(suite.T(), v1.StudentEditable{})

	r := test.Request(suite.T(), http.MethodPost, "/v1/bank-transactions/sync", v1.SyncEditable{
		AdminID: student.Data.ID,
		Entries: []reconciliation.Entry{{BankRef: "TRX-1", Amount: decimal.NewFromInt(100), Date: time.Now()}},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestBankTransactionsSyncAutoMatch() {
	admin := createTestAdmin(suite.T())
	student := createTestStudent(suite.T(), v1.StudentEditable{})
	course := createTestCourse(suite.T(), v1.CourseEditable{})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	payment := createTestPayment(suite.T(), v1.PaymentEditable{
		StudentID: student.Data.ID,
		Amount:    decimal.NewFromInt(2500),
		Method:    models.PaymentMethodBankTransfer,
	})
	suite.Require().Equal(models.PaymentPending, payment.Data.Status)

	result := syncTestTransactions(suite.T(), admin.Data.ID, []reconciliation.Entry{
		{BankRef: "TRX-MATCH", Amount: decimal.NewFromInt(2500), Date: time.Now()},
	})
	suite.Assert().Equal(1, result.AutoMatched)

	// Matching the pending transfer settles the balance
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/students/%s/balance", student.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var balance v1.BalanceResponse
	test.DecodeResponse(suite.T(), &r, &balance)
	suite.Assert().True(balance.Data.DuesBalance.IsZero(), "Balance is %s, should be 0", balance.Data.DuesBalance)
}

func (suite *TestSuiteStandard) TestBankTransactionsGet() {
	admin := createTestAdmin(suite.T())
	_ = syncTestTransactions(suite.T(), admin.Data.ID, []reconciliation.Entry{
		{BankRef: "TRX-1", Amount: decimal.NewFromInt(100), Date: time.Now()},
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/bank-transactions?status=UNMATCHED", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.BankTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/bank-transactions/%s", list.Data[0].ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var single v1.BankTransactionResponse
	test.DecodeResponse(suite.T(), &r, &single)
	suite.Assert().Equal("TRX-1", single.Data.BankRef)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/bank-transactions/%s", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestBankTransactionsSuggestions() {
	admin := createTestAdmin(suite.T())
	student := createTestStudent(suite.T(), v1.StudentEditable{})
	course := createTestCourse(suite.T(), v1.CourseEditable{})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	_ = syncTestTransactions(suite.T(), admin.Data.ID, []reconciliation.Entry{
		{BankRef: "TRX-SUGGEST", Amount: decimal.NewFromInt(2500), Date: time.Now()},
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/bank-transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.BankTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/bank-transactions/%s/suggestions", list.Data[0].ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var suggestions v1.SuggestionListResponse
	test.DecodeResponse(suite.T(), &r, &suggestions)
	suite.Require().Len(suggestions.Data, 1)
	suite.Assert().Equal(reconciliation.ConfidenceHigh, suggestions.Data[0].Confidence)
	suite.Assert().Equal(student.Data.ID, *suggestions.Data[0].StudentID)
}

func (suite *TestSuiteStandard) TestBankTransactionsMatch() {
	admin := createTestAdmin(suite.T())
	student := createTestStudent(suite.T(), v1.StudentEditable{})
	course := createTestCourse(suite.T(), v1.CourseEditable{})
	_ = createTestEnrollment(suite.T(), v1.EnrollmentEditable{StudentID: student.Data.ID, CourseID: course.Data.ID})

	_ = syncTestTransactions(suite.T(), admin.Data.ID, []reconciliation.Entry{
		{BankRef: "TRX-MANUAL", Amount: decimal.NewFromInt(2500), Date: time.Now()},
	})

	r := test.Request(suite.T(), http.MethodGet, "/v1/bank-transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.BankTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 1)

	url := fmt.Sprintf("/v1/bank-transactions/%s/match", list.Data[0].ID)
	r = test.Request(suite.T(), http.MethodPut, url, v1.MatchEditable{
		AdminID: admin.Data.ID,
		MatchRequest: reconciliation.MatchRequest{
			StudentID:     &student.Data.ID,
			CreatePayment: true,
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var matched v1.BankTransactionResponse
	test.DecodeResponse(suite.T(), &r, &matched)
	suite.Assert().Equal(models.BankTransactionMatched, matched.Data.Status)
	suite.Assert().Equal(student.Data.ID, *matched.Data.MatchedStudentID)
	suite.Assert().Equal(admin.Data.ID, *matched.Data.MatchedByID)

	// Matching a second time conflicts
	r = test.Request(suite.T(), http.MethodPut, url, v1.MatchEditable{
		AdminID: admin.Data.ID,
		MatchRequest: reconciliation.MatchRequest{
			StudentID:     &student.Data.ID,
			CreatePayment: true,
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestMatchRulesCRUD() {
	student := createTestStudent(suite.T(), v1.StudentEditable{})

	r := test.Request(suite.T(), http.MethodPost, "/v1/match-rules", v1.MatchRuleEditable{
		Priority:  10,
		Match:     "TUITION-*",
		StudentID: student.Data.ID,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var rule v1.MatchRuleResponse
	test.DecodeResponse(suite.T(), &r, &rule)
	suite.Assert().Equal("TUITION-*", rule.Data.Match)

	r = test.Request(suite.T(), http.MethodGet, "/v1/match-rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 1)

	url := fmt.Sprintf("/v1/match-rules/%s", rule.Data.ID)
	r = test.Request(suite.T(), http.MethodPatch, url, map[string]any{"priority": 5})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &rule)
	suite.Assert().Equal(uint(5), rule.Data.Priority)
	suite.Assert().Equal("TUITION-*", rule.Data.Match)

	r = test.Request(suite.T(), http.MethodDelete, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestMatchRulesStudentMustExist() {
	r := test.Request(suite.T(), http.MethodPost, "/v1/match-rules", v1.MatchRuleEditable{
		Match:     "TUITION-*",
		StudentID: uuid.New(),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
