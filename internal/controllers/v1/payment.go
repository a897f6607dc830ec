package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/ledger"
	"github.com/unifin/backend/internal/models"
)

// PaymentEditable represents all user configurable parameters
type PaymentEditable struct {
	StudentID uuid.UUID            `json:"studentId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
	Amount    decimal.Decimal      `json:"amount" example:"1500"`
	Method    models.PaymentMethod `json:"method" example:"MANUAL" default:"MANUAL"`
	Reference string               `json:"reference" example:"TRX-2026-0042" default:""`
	Notes     string               `json:"notes" example:"Semester fees, first installment" default:""`
}

// ExternalPaymentEditable is a payment recorded by an administrator on
// behalf of a student.
type ExternalPaymentEditable struct {
	AdminID uuid.UUID `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	PaymentEditable
}

type PaymentResponse struct {
	Data PaymentWithBalance `json:"data"`
}

type PaymentWithBalance struct {
	models.Payment
	DuesBalance decimal.Decimal `json:"duesBalance"` // Balance of the student after the payment
}

type PaymentListResponse struct {
	Data []models.Payment `json:"data"`
}

// RegisterPaymentRoutes registers the routes for payments with
// the RouterGroup that is passed.
func RegisterPaymentRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsPaymentList)
	r.GET("", GetPayments)
	r.POST("", CreatePayment)

	r.OPTIONS("/external", OptionsPaymentExternal)
	r.POST("/external", CreateExternalPayment)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payments
// @Success		204
// @Router			/v1/payments [options]
func OptionsPaymentList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payments
// @Success		204
// @Router			/v1/payments/external [options]
func OptionsPaymentExternal(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Record payment
// @Description	Records a payment submitted by a student. Bank transfers start PENDING and do not settle the balance until they are matched against a bank transaction. Other methods settle immediately and must not exceed the outstanding balance.
// @Tags			Payments
// @Produce		json
// @Success		201		{object}	PaymentResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			payment	body		PaymentEditable	true	"Payment"
// @Router			/v1/payments [post]
func CreatePayment(c *gin.Context) {
	var editable PaymentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	payment, balance, err := ledger.RecordPayment(editable.StudentID, editable.Amount, editable.Method, editable.Reference, editable.Notes)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, PaymentResponse{Data: PaymentWithBalance{
		Payment:     payment,
		DuesBalance: balance,
	}})
}

// @Summary		Record external payment
// @Description	Records a payment on behalf of a student, for example cash received at the finance office. The payment settles immediately and may exceed the outstanding balance, the balance clamps at zero.
// @Tags			Payments
// @Produce		json
// @Success		201		{object}	PaymentResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			payment	body		ExternalPaymentEditable	true	"Payment"
// @Router			/v1/payments/external [post]
func CreateExternalPayment(c *gin.Context) {
	var editable ExternalPaymentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	payment, balance, err := ledger.RecordExternalPayment(editable.AdminID, editable.StudentID, editable.Amount, editable.Method, editable.Reference, editable.Notes)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, PaymentResponse{Data: PaymentWithBalance{
		Payment:     payment,
		DuesBalance: balance,
	}})
}

// @Summary		List payments
// @Description	Returns a list of payments, optionally filtered by student or status
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentListResponse
// @Failure		400	{object}	httpError
// @Param			student	query	string	false	"Filter by student ID"
// @Param			status	query	string	false	"Filter by payment status"
// @Router			/v1/payments [get]
func GetPayments(c *gin.Context) {
	query := models.DB.Order("payment_date DESC")

	if student := c.Query("student"); student != "" {
		studentID, err := uuid.Parse(student)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: httputil.ErrInvalidUUID.Error()})
			return
		}
		query = query.Where("student_id = ?", studentID)
	}

	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var payments []models.Payment
	err := query.Find(&payments).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PaymentListResponse{Data: payments})
}
