package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/ledger"
	"github.com/unifin/backend/internal/models"
	"github.com/unifin/backend/internal/reporting"
)

// PenaltyEditable represents all user configurable parameters
type PenaltyEditable struct {
	AdminID   uuid.UUID       `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	StudentID uuid.UUID       `json:"studentId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
	Amount    decimal.Decimal `json:"amount" example:"250"`
	Type      string          `json:"type" example:"LATE_FEE" default:"LATE_FEE"`
	Notes     string          `json:"notes" example:"Missed the payment deadline" default:""`
}

type PenaltyResponse struct {
	Data PenaltyWithBalance `json:"data"`
}

type PenaltyWithBalance struct {
	models.Penalty
	DuesBalance decimal.Decimal `json:"duesBalance"` // Balance of the student after the penalty
}

// BlockEditable represents all user configurable parameters
type BlockEditable struct {
	AdminID   uuid.UUID `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	StudentID uuid.UUID `json:"studentId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
	Reason    string    `json:"reason" example:"Outstanding dues for two semesters" default:""`
}

// ContactEditable represents all user configurable parameters
type ContactEditable struct {
	AdminID   uuid.UUID `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	StudentID uuid.UUID `json:"studentId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
	Method    string    `json:"method" example:"EMAIL" default:""`
	Notes     string    `json:"notes" example:"Asked for a payment plan" default:""`
}

// BulkEditable represents all user configurable parameters
type BulkEditable struct {
	AdminID    uuid.UUID       `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	StudentIDs []uuid.UUID     `json:"studentIds"`
	All        bool            `json:"all" example:"false" default:"false"` // Apply to all students instead of an explicit list
	Amount     decimal.Decimal `json:"amount" example:"250"`                // Only used by bulk penalties
	Type       string          `json:"type" example:"LATE_FEE" default:"LATE_FEE"`
	Reason     string          `json:"reason" example:"Outstanding dues" default:""` // Only used by bulk blocks
	Notes      string          `json:"notes" default:""`
}

type BulkResponse struct {
	Data ledger.BulkResult `json:"data"`
}

type DuesReportResponse struct {
	Data reporting.DuesReport `json:"data"`
}

type UnpaidStatusResponse struct {
	Data reporting.UnpaidStatusReport `json:"data"`
}

type PassFailResponse struct {
	Data reporting.PassFailReport `json:"data"`
}

// RegisterFinanceRoutes registers the routes for finance operations with
// the RouterGroup that is passed.
func RegisterFinanceRoutes(r *gin.RouterGroup) {
	r.PUT("/penalty", ApplyPenalty)
	r.PUT("/block", BlockStudent)
	r.PUT("/unblock", UnblockStudent)
	r.PUT("/contact", ContactStudent)

	r.POST("/bulk-reminder", BulkReminder)
	r.POST("/bulk-penalty", BulkPenalty)
	r.POST("/bulk-block", BulkBlock)

	r.GET("/dues", GetDuesReport)
	r.GET("/unpaid-report", GetUnpaidReport)
	r.GET("/status-report", GetStatusReport)
}

// @Summary		Apply penalty
// @Description	Applies a penalty to a student. Penalties always increase the dues balance, even past any previous payment.
// @Tags			Finance
// @Produce		json
// @Success		200		{object}	PenaltyResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			penalty	body		PenaltyEditable	true	"Penalty"
// @Router			/v1/finance/penalty [put]
func ApplyPenalty(c *gin.Context) {
	var editable PenaltyEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	penalty, balance, err := ledger.ApplyPenalty(editable.AdminID, editable.StudentID, editable.Amount, editable.Type, editable.Notes)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PenaltyResponse{Data: PenaltyWithBalance{
		Penalty:     penalty,
		DuesBalance: balance,
	}})
}

// @Summary		Block registration
// @Description	Blocks a student from course registration
// @Tags			Finance
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			block	body		BlockEditable	true	"Block"
// @Router			/v1/finance/block [put]
func BlockStudent(c *gin.Context) {
	var editable BlockEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = ledger.Block(editable.AdminID, editable.StudentID, editable.Reason)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Unblock registration
// @Description	Lifts a registration block from a student
// @Tags			Finance
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			block	body		BlockEditable	true	"Unblock"
// @Router			/v1/finance/unblock [put]
func UnblockStudent(c *gin.Context) {
	var editable BlockEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = ledger.Unblock(editable.AdminID, editable.StudentID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Record contact
// @Description	Records that a student was contacted about their dues
// @Tags			Finance
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			contact	body		ContactEditable	true	"Contact"
// @Router			/v1/finance/contact [put]
func ContactStudent(c *gin.Context) {
	var editable ContactEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = ledger.Contact(editable.AdminID, editable.StudentID, editable.Method, editable.Notes)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Send bulk reminders
// @Description	Sends payment reminders to the given students. Students without outstanding dues are skipped. Individual failures do not abort the operation.
// @Tags			Finance
// @Produce		json
// @Success		200		{object}	BulkResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Param			request	body		BulkEditable	true	"Bulk request"
// @Router			/v1/finance/bulk-reminder [post]
func BulkReminder(c *gin.Context) {
	var editable BulkEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	result, err := ledger.BulkReminder(editable.AdminID, editable.StudentIDs, editable.All)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BulkResponse{Data: result})
}

// @Summary		Apply bulk penalties
// @Description	Applies the same penalty to the given students. Students without outstanding dues are skipped, unknown students are reported as failed. Individual failures do not abort the operation.
// @Tags			Finance
// @Produce		json
// @Success		200		{object}	BulkResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Param			request	body		BulkEditable	true	"Bulk request"
// @Router			/v1/finance/bulk-penalty [post]
func BulkPenalty(c *gin.Context) {
	var editable BulkEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	result, err := ledger.BulkPenalty(editable.AdminID, editable.StudentIDs, editable.All, editable.Amount, editable.Type, editable.Notes)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BulkResponse{Data: result})
}

// @Summary		Block in bulk
// @Description	Blocks the given students from course registration. Students that are already blocked are skipped. Individual failures do not abort the operation.
// @Tags			Finance
// @Produce		json
// @Success		200		{object}	BulkResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Param			request	body		BulkEditable	true	"Bulk request"
// @Router			/v1/finance/bulk-block [post]
func BulkBlock(c *gin.Context) {
	var editable BulkEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	result, err := ledger.BulkBlock(editable.AdminID, editable.StudentIDs, editable.All, editable.Reason)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BulkResponse{Data: result})
}

// @Summary		Dues report
// @Description	Lists all students with outstanding dues
// @Tags			Finance
// @Produce		json
// @Success		200	{object}	DuesReportResponse
// @Failure		400	{object}	httpError
// @Param			min		query	number	false	"Minimum dues balance"
// @Param			max		query	number	false	"Maximum dues balance"
// @Param			sortBy	query	string	false	"dues_balance (default) or username"
// @Router			/v1/finance/dues [get]
func GetDuesReport(c *gin.Context) {
	var filter reporting.DuesFilter
	filter.SortBy = c.Query("sortBy")

	if min := c.Query("min"); min != "" {
		amount, err := decimal.NewFromString(min)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}
		filter.MinAmount = &amount
	}

	if max := c.Query("max"); max != "" {
		amount, err := decimal.NewFromString(max)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}
		filter.MaxAmount = &amount
	}

	report, err := reporting.Dues(filter)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, DuesReportResponse{Data: report})
}

// @Summary		Unpaid status report
// @Description	Groups students with outstanding dues into critical, moderate and low tiers
// @Tags			Finance
// @Produce		json
// @Success		200	{object}	UnpaidStatusResponse
// @Failure		400	{object}	httpError
// @Router			/v1/finance/unpaid-report [get]
func GetUnpaidReport(c *gin.Context) {
	report, err := reporting.UnpaidStatus()
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, UnpaidStatusResponse{Data: report})
}

// @Summary		Pass/fail report
// @Description	Splits students into PASS and FAIL by their dues balance against a threshold. Students at or below the threshold pass.
// @Tags			Finance
// @Produce		json
// @Success		200	{object}	PassFailResponse
// @Failure		400	{object}	httpError
// @Param			threshold	query	number	false	"Balance threshold, defaults to 0"
// @Router			/v1/finance/status-report [get]
func GetStatusReport(c *gin.Context) {
	threshold := decimal.Zero

	if t := c.Query("threshold"); t != "" {
		parsed, err := decimal.NewFromString(t)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}
		threshold = parsed
	}

	report, err := reporting.PassFail(threshold)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PassFailResponse{Data: report})
}
