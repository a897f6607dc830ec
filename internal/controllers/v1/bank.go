package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/models"
	"github.com/unifin/backend/internal/reconciliation"
)

// SyncEditable represents all user configurable parameters
type SyncEditable struct {
	AdminID uuid.UUID              `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	Entries []reconciliation.Entry `json:"entries"`
}

type SyncResponse struct {
	Data reconciliation.ImportResult `json:"data"`
}

// MatchEditable represents all user configurable parameters
type MatchEditable struct {
	AdminID uuid.UUID `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	reconciliation.MatchRequest
}

type BankTransactionResponse struct {
	Data models.BankTransaction `json:"data"`
}

type BankTransactionListResponse struct {
	Data []models.BankTransaction `json:"data"`
}

type SuggestionListResponse struct {
	Data []reconciliation.Suggestion `json:"data"`
}

// RegisterBankRoutes registers the routes for bank transactions with
// the RouterGroup that is passed.
func RegisterBankRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsBankTransactionList)
	r.GET("", GetBankTransactions)

	r.OPTIONS("/sync", OptionsBankSync)
	r.POST("/sync", SyncBankTransactions)

	r.GET("/:id", GetBankTransaction)
	r.GET("/:id/suggestions", GetMatchSuggestions)
	r.PUT("/:id/match", MatchBankTransaction)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Bank
// @Success		204
// @Router			/v1/bank-transactions [options]
func OptionsBankTransactionList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Bank
// @Success		204
// @Router			/v1/bank-transactions/sync [options]
func OptionsBankSync(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Import bank statement
// @Description	Imports bank statement entries and auto-matches them against pending and received payments. Entries whose reference was imported before are counted as duplicates and skipped, re-importing the same statement is safe.
// @Tags			Bank
// @Produce		json
// @Success		200		{object}	SyncResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Param			request	body		SyncEditable	true	"Bank statement"
// @Router			/v1/bank-transactions/sync [post]
func SyncBankTransactions(c *gin.Context) {
	var editable SyncEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	result, err := reconciliation.Import(editable.AdminID, editable.Entries)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SyncResponse{Data: result})
}

// @Summary		List bank transactions
// @Description	Returns a list of imported bank transactions
// @Tags			Bank
// @Produce		json
// @Success		200	{object}	BankTransactionListResponse
// @Failure		400	{object}	httpError
// @Param			status	query	string	false	"Filter by status"
// @Router			/v1/bank-transactions [get]
func GetBankTransactions(c *gin.Context) {
	query := models.DB.Order("transaction_date DESC")

	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var transactions []models.BankTransaction
	err := query.Find(&transactions).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BankTransactionListResponse{Data: transactions})
}

// @Summary		Get bank transaction
// @Description	Returns a specific bank transaction
// @Tags			Bank
// @Produce		json
// @Success		200	{object}	BankTransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/bank-transactions/{id} [get]
func GetBankTransaction(c *gin.Context) {
	transaction, err := getBankTransaction(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BankTransactionResponse{Data: transaction})
}

// @Summary		Match suggestions
// @Description	Returns ranked candidates for matching an unmatched bank transaction, at most ten. A student whose dues balance equals the amount is a high confidence candidate, a balance within the tolerance is medium. Payments over the same amount within the date window are high confidence.
// @Tags			Bank
// @Produce		json
// @Success		200	{object}	SuggestionListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/bank-transactions/{id}/suggestions [get]
func GetMatchSuggestions(c *gin.Context) {
	transaction, err := getBankTransaction(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	suggestions, err := reconciliation.Suggest(transaction.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuggestionListResponse{Data: suggestions})
}

// @Summary		Match bank transaction
// @Description	Matches a bank transaction to an existing payment or synthesizes a new payment for a student. Settles the target payment and marks the transaction MATCHED.
// @Tags			Bank
// @Produce		json
// @Success		200		{object}	BankTransactionResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			request	body		MatchEditable	true	"Match request"
// @Router			/v1/bank-transactions/{id}/match [put]
func MatchBankTransaction(c *gin.Context) {
	transaction, err := getBankTransaction(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var editable MatchEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	matched, err := reconciliation.ManualMatch(editable.AdminID, transaction.ID, editable.MatchRequest)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BankTransactionResponse{Data: matched})
}

func getBankTransaction(c *gin.Context) (models.BankTransaction, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.BankTransaction{}, httputil.ErrInvalidUUID
	}

	var transaction models.BankTransaction
	err := models.DB.First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.BankTransaction{}, err
	}

	return transaction, nil
}
