package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the pipeline stage of a job application. Any status may move to
// any other status; real-world processes revive, withdraw and ghost in every
// order imaginable.
type Status string

const (
	StatusApplied      Status = "Applied"
	StatusScreening    Status = "Screening"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusAccepted     Status = "Accepted"
	StatusRejected     Status = "Rejected"
	StatusWithdrawn    Status = "Withdrawn"
	StatusGhosted      Status = "Ghosted"
)

// AllStatuses lists every valid status in board-column order.
var AllStatuses = []Status{
	StatusApplied,
	StatusScreening,
	StatusInterviewing,
	StatusOffer,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
	StatusGhosted,
}

// Valid reports whether s is one of the eight enumerated statuses.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// JobType is the employment category of a posting.
type JobType string

const (
	JobTypeInternship JobType = "Internship"
	JobTypeFullTime   JobType = "Full Time"
	JobTypePartTime   JobType = "Part Time"
	JobTypeContract   JobType = "Contract"
)

// AllJobTypes lists every valid job type.
var AllJobTypes = []JobType{JobTypeInternship, JobTypeFullTime, JobTypePartTime, JobTypeContract}

// Valid reports whether t is one of the enumerated job types.
func (t JobType) Valid() bool {
	for _, known := range AllJobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// StatusChange is one entry in an application's audit ledger.
type StatusChange struct {
	Status Status    `json:"status"`
	Date   time.Time `json:"date"`
}

// StatusHistory is the append-only ledger of status changes, persisted as a
// JSON column. Entries are never removed, reordered or mutated once appended.
type StatusHistory []StatusChange

// Value implements driver.Valuer for database serialization.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database deserialization.
func (h *StatusHistory) Scan(value any) error {
	if value == nil {
		*h = StatusHistory{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StatusHistory", value)
	}
	return json.Unmarshal(data, h)
}

// ResumeTitle is a narrow projection of a resume used to decorate
// applications for display without dragging the full extracted text along.
type ResumeTitle struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// TableName maps the projection onto the resumes table.
func (ResumeTitle) TableName() string {
	return "resumes"
}

// Application represents one tracked job application. It belongs to exactly
// one user; the owner reference is immutable after creation.
type Application struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	UserID   uint         `gorm:"not null;index" json:"user_id"`
	ResumeID uint         `gorm:"not null;index" json:"resume_id"`
	Resume   *ResumeTitle `gorm:"foreignKey:ResumeID" json:"resume,omitempty"`
	Company  string       `gorm:"size:200;not null" json:"company"`
	JobTitle string       `gorm:"size:200;not null" json:"job_title"`
	Location string       `gorm:"size:200" json:"location"`
	JobType  JobType      `gorm:"type:varchar(20);not null;default:'Full Time'" json:"job_type"`
	Status   Status       `gorm:"type:varchar(20);not null;default:'Applied';index" json:"status"`
	// ApplicationDate is when the user applied, defaulting to creation time.
	// It is user-facing data, distinct from the CreatedAt/UpdatedAt audit
	// columns.
	ApplicationDate time.Time     `json:"application_date"`
	JobDescription  string        `gorm:"type:text" json:"job_description"`
	Notes           string        `gorm:"type:text" json:"notes"`
	IsLiked         bool          `gorm:"not null;default:false" json:"is_liked"`
	StatusHistory   StatusHistory `gorm:"type:jsonb" json:"status_history"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Application) TableName() string {
	return "applications"
}

// AppliedAt returns the date used for range filtering and sorting:
// the application date when set, otherwise the record creation time.
func (a *Application) AppliedAt() time.Time {
	if !a.ApplicationDate.IsZero() {
		return a.ApplicationDate
	}
	return a.CreatedAt
}
