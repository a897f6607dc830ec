package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/models"
)

// FacultyEditable represents all user configurable parameters
type FacultyEditable struct {
	Name string `json:"name" example:"Computer and Information Sciences"`
	Code string `json:"code" example:"CIS"`
}

func (editable FacultyEditable) model() models.Faculty {
	return models.Faculty{
		Name: editable.Name,
		Code: editable.Code,
	}
}

type FacultyResponse struct {
	Data models.Faculty `json:"data"`
}

type FacultyListResponse struct {
	Data []models.Faculty `json:"data"`
}

// RegisterFacultyRoutes registers the routes for faculties with
// the RouterGroup that is passed.
func RegisterFacultyRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsFacultyList)
		r.GET("", GetFaculties)
		r.POST("", CreateFaculty)
	}

	{
		r.OPTIONS("/:id", OptionsFacultyDetail)
		r.GET("/:id", GetFaculty)
		r.PATCH("/:id", UpdateFaculty)
		r.DELETE("/:id", DeleteFaculty)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Faculties
// @Success		204
// @Router			/v1/faculties [options]
func OptionsFacultyList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Faculties
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/faculties/{id} [options]
func OptionsFacultyDetail(c *gin.Context) {
	_, err := getFaculty(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create faculty
// @Description	Creates a new faculty
// @Tags			Faculties
// @Produce		json
// @Success		201		{object}	FacultyResponse
// @Failure		400		{object}	httpError
// @Failure		409		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			faculty	body		FacultyEditable	true	"Faculty"
// @Router			/v1/faculties [post]
func CreateFaculty(c *gin.Context) {
	var editable FacultyEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	faculty := editable.model()
	err = models.DB.Create(&faculty).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, FacultyResponse{Data: faculty})
}

// @Summary		List faculties
// @Description	Returns a list of all faculties
// @Tags			Faculties
// @Produce		json
// @Success		200	{object}	FacultyListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/faculties [get]
func GetFaculties(c *gin.Context) {
	var faculties []models.Faculty
	err := models.DB.Order("name ASC").Find(&faculties).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FacultyListResponse{Data: faculties})
}

// @Summary		Get faculty
// @Description	Returns a specific faculty
// @Tags			Faculties
// @Produce		json
// @Success		200	{object}	FacultyResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/faculties/{id} [get]
func GetFaculty(c *gin.Context) {
	faculty, err := getFaculty(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FacultyResponse{Data: faculty})
}

// @Summary		Update faculty
// @Description	Updates an existing faculty. Only values to be updated need to be specified.
// @Tags			Faculties
// @Accept			json
// @Produce		json
// @Success		200		{object}	FacultyResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			faculty	body		FacultyEditable	true	"Faculty"
// @Router			/v1/faculties/{id} [patch]
func UpdateFaculty(c *gin.Context) {
	faculty, err := getFaculty(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, FacultyEditable{})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var data FacultyEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Model(&faculty).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FacultyResponse{Data: faculty})
}

// @Summary		Delete faculty
// @Description	Deletes a faculty
// @Tags			Faculties
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/faculties/{id} [delete]
func DeleteFaculty(c *gin.Context) {
	faculty, err := getFaculty(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&faculty).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// getFaculty loads the faculty the URI references.
func getFaculty(c *gin.Context) (models.Faculty, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.Faculty{}, httputil.ErrInvalidUUID
	}

	var faculty models.Faculty
	err := models.DB.First(&faculty, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.Faculty{}, err
	}

	return faculty, nil
}
