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

// EnrollmentEditable represents all user configurable parameters
type EnrollmentEditable struct {
	StudentID uuid.UUID `json:"studentId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
	CourseID  uuid.UUID `json:"courseId" example:"d43cd25c-2392-4654-9fd0-9b7ba77b0a0a"`
}

type EnrollmentResponse struct {
	Data EnrollmentWithBalance `json:"data"`
}

type EnrollmentWithBalance struct {
	models.Enrollment
	DuesBalance decimal.Decimal `json:"duesBalance"` // Balance of the student after the enrollment
}

type EnrollmentListResponse struct {
	Data []models.Enrollment `json:"data"`
}

type DropResponse struct {
	Data DropResult `json:"data"`
}

type DropResult struct {
	StudentID   uuid.UUID       `json:"studentId"`
	CourseID    uuid.UUID       `json:"courseId"`
	DuesBalance decimal.Decimal `json:"duesBalance"` // Balance of the student after the drop
}

// RegisterEnrollmentRoutes registers the routes for enrollments with
// the RouterGroup that is passed.
func RegisterEnrollmentRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsEnrollmentList)
	r.GET("", GetEnrollments)
	r.POST("", CreateEnrollment)
	r.DELETE("", DropEnrollment)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Enrollments
// @Success		204
// @Router			/v1/enrollments [options]
func OptionsEnrollmentList(c *gin.Context) {
	c.Header("allow", "GET, POST, DELETE")
	c.Status(http.StatusNoContent)
}

// @Summary		Enroll student
// @Description	Enrolls a student in a course. The current course fee is snapshotted and added to the student's dues balance.
// @Tags			Enrollments
// @Produce		json
// @Success		201			{object}	EnrollmentResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		409			{object}	httpError
// @Param			enrollment	body		EnrollmentEditable	true	"Enrollment"
// @Router			/v1/enrollments [post]
func CreateEnrollment(c *gin.Context) {
	var editable EnrollmentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	enrollment, balance, err := ledger.Enroll(editable.StudentID, editable.CourseID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, EnrollmentResponse{Data: EnrollmentWithBalance{
		Enrollment:  enrollment,
		DuesBalance: balance,
	}})
}

// @Summary		List enrollments
// @Description	Returns a list of enrollments, optionally filtered by student or course
// @Tags			Enrollments
// @Produce		json
// @Success		200	{object}	EnrollmentListResponse
// @Failure		400	{object}	httpError
// @Param			student	query	string	false	"Filter by student ID"
// @Param			course	query	string	false	"Filter by course ID"
// @Router			/v1/enrollments [get]
func GetEnrollments(c *gin.Context) {
	query := models.DB.Preload("Course").Order("enrolled_at DESC")

	if student := c.Query("student"); student != "" {
		studentID, err := uuid.Parse(student)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: httputil.ErrInvalidUUID.Error()})
			return
		}
		query = query.Where("student_id = ?", studentID)
	}

	if course := c.Query("course"); course != "" {
		courseID, err := uuid.Parse(course)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: httputil.ErrInvalidUUID.Error()})
			return
		}
		query = query.Where("course_id = ?", courseID)
	}

	var enrollments []models.Enrollment
	err := query.Find(&enrollments).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, EnrollmentListResponse{Data: enrollments})
}

// @Summary		Drop course
// @Description	Drops a student from a course and reduces the dues balance by the fee snapshot. Fails once any payment has been recorded for the student.
// @Tags			Enrollments
// @Produce		json
// @Success		200			{object}	DropResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Failure		409			{object}	httpError
// @Param			enrollment	body		EnrollmentEditable	true	"Enrollment"
// @Router			/v1/enrollments [delete]
func DropEnrollment(c *gin.Context) {
	var editable EnrollmentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	balance, err := ledger.Drop(editable.StudentID, editable.CourseID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, DropResponse{Data: DropResult{
		StudentID:   editable.StudentID,
		CourseID:    editable.CourseID,
		DuesBalance: balance,
	}})
}
