package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportRetention is how long a generated report can be downloaded.
const ReportRetention = 30 * 24 * time.Hour

// GeneratedReport is the cached output of a report generation. The payload
// is stored in full so downloads never recompute.
type GeneratedReport struct {
	DefaultModel
	Year          int    `gorm:"uniqueIndex:report_year_sequence"`
	Sequence      uint   `gorm:"uniqueIndex:report_year_sequence"`
	ReportID      string `gorm:"uniqueIndex"` // Human readable id, e.g. RPT-2025-003
	Type          string
	Parameters    json.RawMessage
	Payload       json.RawMessage
	GeneratedBy   User `json:"-"`
	GeneratedByID uuid.UUID
	ExpiresAt     time.Time
}

var (
	ErrReportExpired       = errors.New("the report has expired and can no longer be downloaded")
	ErrReportSequenceTaken = errors.New("the report sequence number for this year is already taken")
)

func (r *GeneratedReport) AfterFind(tx *gorm.DB) error {
	_ = r.DefaultModel.AfterFind(tx)

	r.ExpiresAt = r.ExpiresAt.In(time.UTC)
	return nil
}

// Expired reports that the retention window has passed.
func (r GeneratedReport) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// NextReportSequence issues the next sequence number for the given year.
//
// It must be called inside the transaction that also inserts the report. The
// unique index on (year, sequence) ensures that two concurrent generations
// cannot commit the same number.
func NextReportSequence(tx *gorm.DB, year int) (uint, error) {
	var max *uint

	err := tx.Model(&GeneratedReport{}).
		Where(&GeneratedReport{Year: year}).
		Select("MAX(sequence)").
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}

	if max == nil {
		return 1, nil
	}

	return *max + 1, nil
}

// FormatReportID renders the human readable report id.
func FormatReportID(year int, sequence uint) string {
	return fmt.Sprintf("RPT-%d-%03d", year, sequence)
}
