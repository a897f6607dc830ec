package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/models"
	"gorm.io/gorm"
)

// Report types that Generate accepts.
const (
	ReportDues              = "DUES"
	ReportUnpaidStatus      = "UNPAID_STATUS"
	ReportPassFail          = "PASS_FAIL"
	ReportFacultySummary    = "FACULTY_SUMMARY"
	ReportUniversitySummary = "UNIVERSITY_SUMMARY"
)

var ErrUnknownReportType = errors.New("the report type is not known")

// GenerateParams are the optional inputs for report generation. Fields that
// do not apply to the requested report type are ignored.
type GenerateParams struct {
	MinAmount     *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount     *decimal.Decimal `json:"maxAmount,omitempty"`
	SortBy        string           `json:"sortBy,omitempty"`
	PassThreshold *decimal.Decimal `json:"passThreshold,omitempty"`
	From          *time.Time       `json:"from,omitempty"`
	Until         *time.Time       `json:"until,omitempty"`
}

// run executes the report matching the type and returns its payload.
func run(reportType string, params GenerateParams) (any, error) {
	switch reportType {
	case ReportDues:
		return Dues(DuesFilter{
			MinAmount: params.MinAmount,
			MaxAmount: params.MaxAmount,
			SortBy:    params.SortBy,
		})

	case ReportUnpaidStatus:
		return UnpaidStatus()

	case ReportPassFail:
		threshold := decimal.Zero
		if params.PassThreshold != nil {
			threshold = *params.PassThreshold
		}
		return PassFail(threshold)

	case ReportFacultySummary:
		return FacultySummary(params.From, params.Until)

	case ReportUniversitySummary:
		return University(params.From, params.Until)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, reportType)
	}
}

// Generate runs the report of the given type and persists the result so it
// can be downloaded later. The report id is issued per year, the sequence
// number and the insert commit in one transaction so two concurrent
// generations can never share an id.
func Generate(adminID uuid.UUID, reportType string, params GenerateParams) (models.GeneratedReport, error) {
	admin, err := models.Admin(models.DB, adminID)
	if err != nil {
		return models.GeneratedReport{}, err
	}

	payload, err := run(reportType, params)
	if err != nil {
		return models.GeneratedReport{}, err
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return models.GeneratedReport{}, err
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return models.GeneratedReport{}, err
	}

	now := time.Now().In(time.UTC)

	var report models.GeneratedReport
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		sequence, err := models.NextReportSequence(tx, now.Year())
		if err != nil {
			return err
		}

		report = models.GeneratedReport{
			Year:          now.Year(),
			Sequence:      sequence,
			ReportID:      models.FormatReportID(now.Year(), sequence),
			Type:          reportType,
			Parameters:    rawParams,
			Payload:       rawPayload,
			GeneratedByID: admin.ID,
			ExpiresAt:     now.Add(models.ReportRetention),
		}

		return tx.Create(&report).Error
	})
	if err != nil {
		return models.GeneratedReport{}, err
	}

	return report, nil
}

// Download returns a previously generated report by its human readable id.
// Reports past their retention window are rejected, not deleted.
func Download(reportID string) (models.GeneratedReport, error) {
	var report models.GeneratedReport
	err := models.DB.First(&report, "report_id = ?", reportID).Error
	if err != nil {
		return models.GeneratedReport{}, err
	}

	if report.Expired(time.Now().In(time.UTC)) {
		return models.GeneratedReport{}, models.ErrReportExpired
	}

	return report, nil
}
