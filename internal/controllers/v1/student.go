package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/models"
)

// StudentEditable represents all user configurable parameters
type StudentEditable struct {
	Username       string     `json:"username" example:"jdoe"`
	Email          *string    `json:"email" example:"jdoe@example.com"`
	Password       string     `json:"password,omitempty" example:"hunter2"`
	IsAdmin        bool       `json:"isAdmin" example:"false" default:"false"`
	FacultyID      *uuid.UUID `json:"facultyId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
	PaymentDueDate *string    `json:"paymentDueDate" example:"2026-09-30T00:00:00Z"`
}

func (editable StudentEditable) model() (models.User, error) {
	user := models.User{
		Username:  editable.Username,
		Email:     editable.Email,
		IsAdmin:   editable.IsAdmin,
		FacultyID: editable.FacultyID,
	}

	if editable.PaymentDueDate != nil {
		due, err := parseTime(*editable.PaymentDueDate)
		if err != nil {
			return models.User{}, err
		}
		user.PaymentDueDate = &due
	}

	if editable.Password != "" {
		if err := user.SetPassword(editable.Password); err != nil {
			return models.User{}, err
		}
	}

	return user, nil
}

type StudentResponse struct {
	Data models.User `json:"data"`
}

type StudentListResponse struct {
	Data []models.User `json:"data"`
}

// BalanceResponse reports the live balance next to the balance recomputed
// from enrollments, penalties and settled payments. The two must agree.
type BalanceResponse struct {
	Data Balance `json:"data"`
}

type Balance struct {
	StudentID   uuid.UUID       `json:"studentId"`
	DuesBalance decimal.Decimal `json:"duesBalance"`
	Recomputed  decimal.Decimal `json:"recomputed"`
	Consistent  bool            `json:"consistent"`
}

type NotificationListResponse struct {
	Data []models.Notification `json:"data"`
}

// RegisterStudentRoutes registers the routes for students with
// the RouterGroup that is passed.
func RegisterStudentRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsStudentList)
		r.GET("", GetStudents)
		r.POST("", CreateStudent)
	}

	{
		r.OPTIONS("/:id", OptionsStudentDetail)
		r.GET("/:id", GetStudent)
		r.PATCH("/:id", UpdateStudent)
		r.DELETE("/:id", DeleteStudent)
	}

	r.GET("/:id/balance", GetStudentBalance)
	r.GET("/:id/notifications", GetStudentNotifications)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Students
// @Success		204
// @Router			/v1/students [options]
func OptionsStudentList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Students
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/students/{id} [options]
func OptionsStudentDetail(c *gin.Context) {
	_, err := getUser(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create user
// @Description	Creates a new student or administrator
// @Tags			Students
// @Produce		json
// @Success		201		{object}	StudentResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			student	body		StudentEditable	true	"Student"
// @Router			/v1/students [post]
func CreateStudent(c *gin.Context) {
	var editable StudentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	user, err := editable.model()
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	if user.FacultyID != nil {
		err = models.DB.First(&models.Faculty{}, "id = ?", *user.FacultyID).Error
		if err != nil {
			c.JSON(status(err), httpError{Error: err.Error()})
			return
		}
	}

	err = models.DB.Create(&user).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, StudentResponse{Data: user})
}

// @Summary		List users
// @Description	Returns a list of all students and administrators
// @Tags			Students
// @Produce		json
// @Success		200	{object}	StudentListResponse
// @Failure		400	{object}	httpError
// @Param			faculty	query	string	false	"Filter by faculty ID"
// @Param			blocked	query	bool	false	"Only blocked students"
// @Router			/v1/students [get]
func GetStudents(c *gin.Context) {
	query := models.DB.Order("username ASC")

	if faculty := c.Query("faculty"); faculty != "" {
		facultyID, err := uuid.Parse(faculty)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: httputil.ErrInvalidUUID.Error()})
			return
		}
		query = query.Where("faculty_id = ?", facultyID)
	}

	if c.Query("blocked") == "true" {
		query = query.Where("is_blocked = ?", true)
	}

	var users []models.User
	err := query.Find(&users).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, StudentListResponse{Data: users})
}

// @Summary		Get user
// @Description	Returns a specific student or administrator
// @Tags			Students
// @Produce		json
// @Success		200	{object}	StudentResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/students/{id} [get]
func GetStudent(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, StudentResponse{Data: user})
}

// @Summary		Get balance
// @Description	Returns the dues balance of a student, verified against a recomputation from the record trail
// @Tags			Students
// @Produce		json
// @Success		200	{object}	BalanceResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/students/{id}/balance [get]
func GetStudentBalance(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	recomputed, err := models.RecomputeDuesBalance(models.DB, user.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Data: Balance{
		StudentID:   user.ID,
		DuesBalance: user.DuesBalance,
		Recomputed:  recomputed,
		Consistent:  user.DuesBalance.Equal(recomputed),
	}})
}

// @Summary		List notifications
// @Description	Returns the notifications of a student, newest first
// @Tags			Students
// @Produce		json
// @Success		200	{object}	NotificationListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/students/{id}/notifications [get]
func GetStudentNotifications(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var notifications []models.Notification
	err = models.DB.
		Where("student_id = ?", user.ID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, NotificationListResponse{Data: notifications})
}

// @Summary		Update user
// @Description	Updates an existing student or administrator. Only values to be updated need to be specified.
// @Tags			Students
// @Accept			json
// @Produce		json
// @Success		200		{object}	StudentResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			student	body		StudentEditable	true	"Student"
// @Router			/v1/students/{id} [patch]
func UpdateStudent(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, StudentEditable{})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var data StudentEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	update, err := data.model()
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	// The password hash is written through SetPassword, never bound directly
	for i, field := range updateFields {
		if field == "Password" {
			updateFields[i] = "PasswordHash"
		}
	}

	err = models.DB.Model(&user).Select("", updateFields...).Updates(update).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, StudentResponse{Data: user})
}

// @Summary		Delete user
// @Description	Deletes a student or administrator
// @Tags			Students
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/students/{id} [delete]
func DeleteStudent(c *gin.Context) {
	user, err := getUser(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&user).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func getUser(c *gin.Context) (models.User, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.User{}, httputil.ErrInvalidUUID
	}

	var user models.User
	err := models.DB.First(&user, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}
