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

// CourseEditable represents all user configurable parameters
type CourseEditable struct {
	CourseCode  string           `json:"courseCode" example:"CIS-101"`
	Name        string           `json:"name" example:"Introduction to Programming"`
	Description string           `json:"description" example:"Variables, control flow and functions" default:""`
	CreditHours uint             `json:"creditHours" example:"3"`
	TotalFee    *decimal.Decimal `json:"totalFee" example:"1500"` // Derived from the active fee structures when omitted
	FacultyID   uuid.UUID        `json:"facultyId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`
}

func (editable CourseEditable) model() models.Course {
	course := models.Course{
		CourseCode:  editable.CourseCode,
		Name:        editable.Name,
		Description: editable.Description,
		CreditHours: editable.CreditHours,
		FacultyID:   editable.FacultyID,
	}

	if editable.TotalFee != nil {
		course.TotalFee = *editable.TotalFee
	}

	return course
}

type CourseResponse struct {
	Data models.Course `json:"data"`
}

type CourseListResponse struct {
	Data []models.Course `json:"data"`
}

// RegisterCourseRoutes registers the routes for courses with
// the RouterGroup that is passed.
func RegisterCourseRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsCourseList)
		r.GET("", GetCourses)
		r.POST("", CreateCourse)
	}

	{
		r.OPTIONS("/:id", OptionsCourseDetail)
		r.GET("/:id", GetCourse)
		r.PATCH("/:id", UpdateCourse)
		r.DELETE("/:id", DeleteCourse)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Courses
// @Success		204
// @Router			/v1/courses [options]
func OptionsCourseList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Courses
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/courses/{id} [options]
func OptionsCourseDetail(c *gin.Context) {
	_, err := getCourse(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create course
// @Description	Creates a new course. When no total fee is given, it is derived from the active fee structures and the credit hours.
// @Tags			Courses
// @Produce		json
// @Success		201		{object}	CourseResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			course	body		CourseEditable	true	"Course"
// @Router			/v1/courses [post]
func CreateCourse(c *gin.Context) {
	var editable CourseEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	course := editable.model()
	if editable.TotalFee == nil {
		course.TotalFee, err = models.CourseFee(models.DB, editable.CreditHours)
		if err != nil {
			c.JSON(status(err), httpError{Error: err.Error()})
			return
		}
	}

	err = models.DB.Create(&course).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, CourseResponse{Data: course})
}

// @Summary		List courses
// @Description	Returns a list of all courses
// @Tags			Courses
// @Produce		json
// @Success		200	{object}	CourseListResponse
// @Failure		400	{object}	httpError
// @Param			faculty	query	string	false	"Filter by faculty ID"
// @Router			/v1/courses [get]
func GetCourses(c *gin.Context) {
	query := models.DB.Order("course_code ASC")

	if faculty := c.Query("faculty"); faculty != "" {
		facultyID, err := uuid.Parse(faculty)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: httputil.ErrInvalidUUID.Error()})
			return
		}
		query = query.Where("faculty_id = ?", facultyID)
	}

	var courses []models.Course
	err := query.Find(&courses).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CourseListResponse{Data: courses})
}

// @Summary		Get course
// @Description	Returns a specific course
// @Tags			Courses
// @Produce		json
// @Success		200	{object}	CourseResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/courses/{id} [get]
func GetCourse(c *gin.Context) {
	course, err := getCourse(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CourseResponse{Data: course})
}

// @Summary		Update course
// @Description	Updates an existing course. Only values to be updated need to be specified. Fee snapshots of existing enrollments are not touched.
// @Tags			Courses
// @Accept			json
// @Produce		json
// @Success		200		{object}	CourseResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			course	body		CourseEditable	true	"Course"
// @Router			/v1/courses/{id} [patch]
func UpdateCourse(c *gin.Context) {
	course, err := getCourse(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, CourseEditable{})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var data CourseEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Model(&course).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CourseResponse{Data: course})
}

// @Summary		Delete course
// @Description	Deletes a course. Enrollments in the course are removed and the fee snapshots are refunded from the students' dues balances.
// @Tags			Courses
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/courses/{id} [delete]
func DeleteCourse(c *gin.Context) {
	course, err := getCourse(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = ledger.RemoveCourse(course.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func getCourse(c *gin.Context) (models.Course, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.Course{}, httputil.ErrInvalidUUID
	}

	var course models.Course
	err := models.DB.First(&course, "id = ?", uri.ID.UUID).Error
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}
