package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/models"
)

// FeeStructureEditable represents all user configurable parameters
type FeeStructureEditable struct {
	Category     models.FeeCategory `json:"category" example:"tuition"`
	Name         string             `json:"name" example:"Tuition per credit hour"`
	Amount       decimal.Decimal    `json:"amount" example:"500"`
	IsPerCredit  bool               `json:"isPerCredit" example:"true" default:"false"`
	IsActive     bool               `json:"isActive" example:"true" default:"true"`
	DisplayOrder uint               `json:"displayOrder" example:"1" default:"0"`
}

func (editable FeeStructureEditable) model() models.FeeStructure {
	return models.FeeStructure{
		Category:     editable.Category,
		Name:         editable.Name,
		Amount:       editable.Amount,
		IsPerCredit:  editable.IsPerCredit,
		IsActive:     editable.IsActive,
		DisplayOrder: editable.DisplayOrder,
	}
}

type FeeStructureResponse struct {
	Data models.FeeStructure `json:"data"`
}

type FeeStructureListResponse struct {
	Data []models.FeeStructure `json:"data"`
}

// RegisterFeeStructureRoutes registers the routes for fee structures with
// the RouterGroup that is passed.
func RegisterFeeStructureRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsFeeStructureList)
		r.GET("", GetFeeStructures)
		r.POST("", CreateFeeStructure)
	}

	{
		r.OPTIONS("/:id", OptionsFeeStructureDetail)
		r.GET("/:id", GetFeeStructure)
		r.PATCH("/:id", UpdateFeeStructure)
		r.DELETE("/:id", DeleteFeeStructure)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FeeStructures
// @Success		204
// @Router			/v1/fee-structures [options]
func OptionsFeeStructureList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FeeStructures
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/fee-structures/{id} [options]
func OptionsFeeStructureDetail(c *gin.Context) {
	_, err := getFeeStructure(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create fee structure
// @Description	Creates a new fee structure
// @Tags			FeeStructures
// @Produce		json
// @Success		201				{object}	FeeStructureResponse
// @Failure		400				{object}	httpError
// @Param			feeStructure	body		FeeStructureEditable	true	"FeeStructure"
// @Router			/v1/fee-structures [post]
func CreateFeeStructure(c *gin.Context) {
	var editable FeeStructureEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	feeStructure := editable.model()
	err = models.DB.Create(&feeStructure).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, FeeStructureResponse{Data: feeStructure})
}

// @Summary		List fee structures
// @Description	Returns a list of all fee structures in display order
// @Tags			FeeStructures
// @Produce		json
// @Success		200	{object}	FeeStructureListResponse
// @Failure		400	{object}	httpError
// @Param			active	query	bool	false	"Only active fee structures"
// @Router			/v1/fee-structures [get]
func GetFeeStructures(c *gin.Context) {
	query := models.DB.Order("display_order ASC, name ASC")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var feeStructures []models.FeeStructure
	err := query.Find(&feeStructures).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FeeStructureListResponse{Data: feeStructures})
}

// @Summary		Get fee structure
// @Description	Returns a specific fee structure
// @Tags			FeeStructures
// @Produce		json
// @Success		200	{object}	FeeStructureResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/fee-structures/{id} [get]
func GetFeeStructure(c *gin.Context) {
	feeStructure, err := getFeeStructure(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FeeStructureResponse{Data: feeStructure})
}

// @Summary		Update fee structure
// @Description	Updates an existing fee structure. Only values to be updated need to be specified. Fee snapshots of existing enrollments are not touched.
// @Tags			FeeStructures
// @Accept			json
// @Produce		json
// @Success		200				{object}	FeeStructureResponse
// @Failure		400				{object}	httpError
// @Failure		404				{object}	httpError
// @Param			id				path		string					true	"ID formatted as string"
// @Param			feeStructure	body		FeeStructureEditable	true	"FeeStructure"
// @Router			/v1/fee-structures/{id} [patch]
func UpdateFeeStructure(c *gin.Context) {
	feeStructure, err := getFeeStructure(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, FeeStructureEditable{})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var data FeeStructureEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Model(&feeStructure).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FeeStructureResponse{Data: feeStructure})
}

// @Summary		Deactivate fee structure
// @Description	Deactivates a fee structure so future fee derivations no longer include it. The record is kept for auditability.
// @Tags			FeeStructures
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/fee-structures/{id} [delete]
func DeleteFeeStructure(c *gin.Context) {
	feeStructure, err := getFeeStructure(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Model(&feeStructure).Select("IsActive").Updates(models.FeeStructure{IsActive: false}).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func getFeeStructure(c *gin.Context) (models.FeeStructure, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.FeeStructure{}, httputil.ErrInvalidUUID
	}

	var feeStructure models.FeeStructure
	err := models.DB.First(&feeStructure, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.FeeStructure{}, err
	}

	return feeStructure, nil
}
