package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchRule maps bank statement references to a student during import.
//
// The Match field is a glob pattern that is checked against the reference
// and the description of incoming bank transactions. Rules are evaluated in
// ascending priority order before the amount/date heuristic runs.
type MatchRule struct {
	DefaultModel
	Priority  uint
	Match     string
	Student   User `json:"-"`
	StudentID uuid.UUID
}

func (r *MatchRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)

	return nil
}

func (r *MatchRule) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*MatchRule)
	return tx.First(&User{}, "id = ?", toSave.StudentID).Error
}
