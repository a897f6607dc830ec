package v1

import (
	"time"

	uf_uuid "github.com/unifin/backend/internal/uuid"
)

// URIID binds the resource id from the URI.
type URIID struct {
	ID uf_uuid.UUID `uri:"id" binding:"required"`
}

// parseTime parses an RFC 3339 timestamp and normalizes it to UTC.
func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}

	return parsed.In(time.UTC), nil
}
