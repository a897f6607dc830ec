package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unifin/backend/internal/httputil"
	"github.com/unifin/backend/internal/models"
	"github.com/unifin/backend/internal/reporting"
)

// GenerateEditable represents all user configurable parameters
type GenerateEditable struct {
	AdminID uuid.UUID                `json:"adminId" example:"a6be22b7-7a3a-4d0c-bb0b-6cbbbc5fd1ae"`
	Type    string                   `json:"type" example:"DUES" enums:"DUES,UNPAID_STATUS,PASS_FAIL,FACULTY_SUMMARY,UNIVERSITY_SUMMARY"`
	Params  reporting.GenerateParams `json:"params"`
}

type GeneratedReportResponse struct {
	Data models.GeneratedReport `json:"data"`
}

type FacultySummaryResponse struct {
	Data []reporting.FacultyCollection `json:"data"`
}

type UniversitySummaryResponse struct {
	Data reporting.UniversitySummary `json:"data"`
}

type FinanceSummaryResponse struct {
	Data reporting.FinanceSummary `json:"data"`
}

// RegisterReportRoutes registers the routes for reports with
// the RouterGroup that is passed.
func RegisterReportRoutes(r *gin.RouterGroup) {
	r.GET("/faculty-summary", GetFacultySummary)
	r.GET("/university-summary", GetUniversitySummary)
	r.GET("/summary", GetFinanceSummary)

	r.OPTIONS("/generate", OptionsReportGenerate)
	r.POST("/generate", GenerateReport)
	r.GET("/download/:reportId", DownloadReport)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Reports
// @Success		204
// @Router			/v1/reports/generate [options]
func OptionsReportGenerate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Faculty summary
// @Description	Aggregates enrolled students, expected fees and estimated collections per faculty. Collections are a proportional allocation estimate, payments are not tracked per course.
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	FacultySummaryResponse
// @Failure		400	{object}	httpError
// @Param			from	query	string	false	"Start of the date range, RFC 3339"
// @Param			until	query	string	false	"End of the date range, RFC 3339"
// @Router			/v1/reports/faculty-summary [get]
func GetFacultySummary(c *gin.Context) {
	from, until, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	summaries, err := reporting.FacultySummary(from, until)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FacultySummaryResponse{Data: summaries})
}

// @Summary		University summary
// @Description	Aggregates collections at institution scope, with a trailing six month series and breakdowns by payment method and faculty
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	UniversitySummaryResponse
// @Failure		400	{object}	httpError
// @Param			from	query	string	false	"Start of the date range, RFC 3339"
// @Param			until	query	string	false	"End of the date range, RFC 3339"
// @Router			/v1/reports/university-summary [get]
func GetUniversitySummary(c *gin.Context) {
	from, until, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	summary, err := reporting.University(from, until)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, UniversitySummaryResponse{Data: summary})
}

// @Summary		Finance summary
// @Description	Returns student counts by payment standing and the settled total
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	FinanceSummaryResponse
// @Failure		400	{object}	httpError
// @Router			/v1/reports/summary [get]
func GetFinanceSummary(c *gin.Context) {
	summary, err := reporting.Summary()
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, FinanceSummaryResponse{Data: summary})
}

// @Summary		Generate report
// @Description	Runs a report and stores the result for later download. Report ids are issued per year, e.g. RPT-2026-003, and reports expire 30 days after generation.
// @Tags			Reports
// @Produce		json
// @Success		201		{object}	GeneratedReportResponse
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Param			request	body		GenerateEditable	true	"Report request"
// @Router			/v1/reports/generate [post]
func GenerateReport(c *gin.Context) {
	var editable GenerateEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	report, err := reporting.Generate(editable.AdminID, editable.Type, editable.Params)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, GeneratedReportResponse{Data: report})
}

// @Summary		Download report
// @Description	Returns a previously generated report by its id. Expired reports yield HTTP 410.
// @Tags			Reports
// @Produce		json
// @Success		200	{object}	GeneratedReportResponse
// @Failure		404	{object}	httpError
// @Failure		410	{object}	httpError
// @Param			reportId	path	string	true	"Report ID, e.g. RPT-2026-003"
// @Router			/v1/reports/download/{reportId} [get]
func DownloadReport(c *gin.Context) {
	report, err := reporting.Download(c.Param("reportId"))
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, GeneratedReportResponse{Data: report})
}

// dateRangeQuery parses the optional from/until query parameters.
func dateRangeQuery(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, until *time.Time

	if f := c.Query("from"); f != "" {
		parsed, err := parseTime(f)
		if err != nil {
			return nil, nil, err
		}
		from = &parsed
	}

	if u := c.Query("until"); u != "" {
		parsed, err := parseTime(u)
		if err != nil {
			return nil, nil, err
		}
		until = &parsed
	}

	return from, until, nil
}
