package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Faculty represents an organizational unit of the university. It owns
// courses and students.
type Faculty struct {
	DefaultModel
	Name string `gorm:"uniqueIndex"`
	Code string `gorm:"uniqueIndex"` // Short code, e.g. "CIS"
}

var (
	ErrFacultyNameNotUnique = errors.New("the faculty name must be unique")
	ErrFacultyCodeNotUnique = errors.New("the faculty code must be unique")
)

// BeforeSave trims whitespace from all strings.
func (f *Faculty) BeforeSave(_ *gorm.DB) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Code = strings.TrimSpace(f.Code)

	return nil
}
