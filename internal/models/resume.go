package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnalysisBlob is an opaque JSON payload produced by the AI collaborator.
// It is stored and returned verbatim, never inspected.
type AnalysisBlob json.RawMessage

// Value implements driver.Valuer for database serialization.
func (b AnalysisBlob) Value() (driver.Value, error) {
	if len(b) == 0 {
		return "{}", nil
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database deserialization.
func (b *AnalysisBlob) Scan(value any) error {
	if value == nil {
		*b = AnalysisBlob("{}")
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*b = AnalysisBlob(append([]byte(nil), v...))
	case string:
		*b = AnalysisBlob(v)
	default:
		return fmt.Errorf("cannot scan %T into AnalysisBlob", value)
	}
	return nil
}

// MarshalJSON passes the raw payload through untouched.
func (b AnalysisBlob) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("{}"), nil
	}
	return b, nil
}

// UnmarshalJSON stores the raw payload untouched.
func (b *AnalysisBlob) UnmarshalJSON(data []byte) error {
	*b = AnalysisBlob(append([]byte(nil), data...))
	return nil
}

// Resume represents one stored document: the extracted plain text plus a
// pointer to the original binary in object storage. Deleting a resume does
// not cascade to applications that reference it; their decorated reads
// simply come back without a resume.
type Resume struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	FileURL string `gorm:"not null" json:"file_url"`
	// AnalysisResults holds whatever the AI service last returned for this
	// resume; the server never interprets it.
	AnalysisResults AnalysisBlob `gorm:"type:jsonb" json:"analysis_results"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Resume) TableName() string {
	return "resumes"
}
