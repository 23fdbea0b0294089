package sar

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/compliedu/backend/core/institution"
)

const instituteInfoDepartment = institution.InstituteInfoDepartment

// Application statuses. The first three are derived from completion by the
// aggregation logic; the rest are only ever set by the explicit submission
// workflow and are never overwritten by a recompute.
const (
	StatusDraft       = "draft"
	StatusInProgress  = "in-progress"
	StatusCompleted   = "completed"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under-review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
)

// Section is the smallest gradable unit of a SAR: free-form rich text
// content plus attachment references.
type Section struct {
	ID            string    `json:"id"`
	SectionNumber string    `json:"sectionNumber"` // display ordinal, eg. "1.1"
	Title         string    `json:"title"`
	MaxMarks      int       `json:"maxMarks"`
	Content       string    `json:"content"`     // rich text markup; empty = untouched
	Attachments   []string  `json:"attachments"` // file paths/URLs, insertion order
	ObtainedMarks int       `json:"obtainedMarks,omitempty"`
	IsCompleted   bool      `json:"isCompleted"`
	LastModified  time.Time `json:"lastModified"`
}

// refreshCompletion re-derives IsCompleted from the content: a section
// counts as completed iff its content is non-blank.
func (s *Section) refreshCompletion() {
	s.IsCompleted = strings.TrimSpace(s.Content) != ""
}

// Criteria groups Sections under a numbered rubric item.
type Criteria struct {
	ID             string `json:"id"`
	CriteriaNumber int    `json:"criteriaNumber"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	MaxMarks       int    `json:"maxMarks"`

	Sections          []Section `json:"sections"`
	CompletedSections int       `json:"completedSections"` // derived
	TotalMarks        int       `json:"totalMarks"`
	ObtainedMarks     int       `json:"obtainedMarks"` // derived
}

// Recompute re-derives the aggregates from the Sections.
func (c *Criteria) Recompute() {
	var completed, obtained int
	for i := range c.Sections {
		if c.Sections[i].IsCompleted {
			completed++
		}
		obtained += c.Sections[i].ObtainedMarks
	}
	c.CompletedSections = completed
	c.ObtainedMarks = obtained
}

// Progress returns this criteria's completion percentage.
func (c Criteria) Progress() int {
	if len(c.Sections) == 0 {
		return 0
	}
	return int(math.Round(float64(c.CompletedSections) / float64(len(c.Sections)) * 100))
}

// Application is one SAR application, bound to an institution and a
// department (or the department-less "Institute Information" type).
type Application struct {
	ID             string `json:"id"`
	ApplicationID  string `json:"applicationId"` // {institutionCode}-{departmentCode}-{YYYYMMDD}
	InstitutionID  string `json:"institutionId"`
	DepartmentID   string `json:"departmentId"` // catalog code, or "institute-info"
	DepartmentName string `json:"departmentName"`

	ApplicationStartDate time.Time `json:"applicationStartDate"`
	ApplicationEndDate   time.Time `json:"applicationEndDate"`

	Status               string     `json:"status"`
	CompletionPercentage int        `json:"completionPercentage"`
	Criteria             []Criteria `json:"criteria"`
	OverallMarks         int        `json:"overallMarks"`
	MaxOverallMarks      int        `json:"maxOverallMarks"`

	CreatedBy    string     `json:"createdBy"`
	LastModified time.Time  `json:"lastModified"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
}

// IsInstituteInfo reports whether this is the special criteria-less
// "Institute Information" application.
func (a *Application) IsInstituteInfo() bool {
	return a.DepartmentID == instituteInfoDepartment
}

// statusDerivable reports whether the aggregation logic owns the status.
// Workflow statuses (submitted and beyond) are out of its hands.
func (a *Application) statusDerivable() bool {
	switch a.Status {
	case "", StatusDraft, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (a *Application) refreshStatus() {
	if !a.statusDerivable() {
		return
	}
	switch {
	case a.CompletionPercentage == 0:
		a.Status = StatusDraft
	case a.CompletionPercentage >= 100:
		a.Status = StatusCompleted
	default:
		a.Status = StatusInProgress
	}
}

// Recompute cascades the aggregation from the Sections up: per-criteria
// completed counts and marks, then the application-wide completion
// percentage (across all criteria, not just a touched one) and status.
// Criteria-less applications keep their externally reported percentage.
func (a *Application) Recompute() {
	var total, completed, obtained int
	for i := range a.Criteria {
		c := &a.Criteria[i]
		c.Recompute()
		total += len(c.Sections)
		completed += c.CompletedSections
		obtained += c.ObtainedMarks
	}
	if total > 0 {
		a.CompletionPercentage = int(math.Round(float64(completed) / float64(total) * 100))
		a.OverallMarks = obtained
	}
	a.refreshStatus()
}

// Normalize fills defaults and re-derives all derived fields. Called once
// at the store-read boundary so the rest of the code can rely on a fully
// populated record.
func (a *Application) Normalize() {
	if a.Criteria == nil {
		a.Criteria = []Criteria{}
	}
	for i := range a.Criteria {
		c := &a.Criteria[i]
		if c.Sections == nil {
			c.Sections = []Section{}
		}
		for j := range c.Sections {
			s := &c.Sections[j]
			if s.Attachments == nil {
				s.Attachments = []string{}
			}
			s.refreshCompletion()
		}
	}
	if a.CompletionPercentage < 0 {
		a.CompletionPercentage = 0
	} else if a.CompletionPercentage > 100 {
		a.CompletionPercentage = 100
	}
	a.Recompute()
}

// SectionUpdate is a partial update to a Section; nil fields are left
// unchanged.
type SectionUpdate struct {
	Content       *string   `json:"content"`
	Attachments   *[]string `json:"attachments"`
	ObtainedMarks *int      `json:"obtainedMarks" validate:"omitempty,min=0"`
}

func (su SectionUpdate) IsEmpty() bool {
	return su.Content == nil && su.Attachments == nil && su.ObtainedMarks == nil
}

func (su SectionUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(su)
}

// apply copies the supplied fields onto the section and re-derives its
// completion flag.
func (su SectionUpdate) apply(s *Section, now time.Time) {
	if su.Content != nil {
		s.Content = *su.Content
	}
	if su.Attachments != nil {
		s.Attachments = *su.Attachments
	}
	if su.ObtainedMarks != nil {
		s.ObtainedMarks = *su.ObtainedMarks
	}
	s.refreshCompletion()
	s.LastModified = now
}

// InstituteForm is the ad-hoc draft state of the long "Institute
// Information" form, persisted per application and read back when the form
// reopens. The payload is opaque to the core.
type InstituteForm struct {
	ApplicationID string          `json:"applicationId"`
	Payload       json.RawMessage `json:"payload"`
	Progress      int             `json:"progress"`
	SavedAt       time.Time       `json:"savedAt"`
}
