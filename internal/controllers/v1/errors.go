package v1

import (
	"errors"
	"net/http"

	"github.com/unifin/backend/internal/models"
	"gorm.io/gorm"
)

// httpError is the response body for all error responses.
type httpError struct {
	Error string `json:"error" example:"there is no student matching your query"`
}

// conflicts are errors caused by writes that violate a uniqueness or state
// constraint of an existing resource.
var conflicts = []error{
	models.ErrFacultyNameNotUnique,
	models.ErrFacultyCodeNotUnique,
	models.ErrUsernameNotUnique,
	models.ErrEmailNotUnique,
	models.ErrCourseCodeNotUnique,
	models.ErrAlreadyEnrolled,
	models.ErrDropAfterPayment,
	models.ErrBankRefNotUnique,
	models.ErrAlreadyMatched,
	models.ErrPaymentClaimed,
	models.ErrReportSequenceTaken,
}

// status translates an error into the HTTP status for its response.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrResourceNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrNoAdmin):
		return http.StatusForbidden

	case errors.Is(err, models.ErrReportExpired):
		return http.StatusGone

	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	}

	for _, conflict := range conflicts {
		if errors.Is(err, conflict) {
			return http.StatusConflict
		}
	}

	// Everything else is a bad request: validation sentinels from the
	// models package, httputil bind errors and input errors from the
	// reconciliation and reporting packages
	return http.StatusBadRequest
}
