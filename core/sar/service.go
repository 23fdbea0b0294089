package sar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/institution"
)

var (
	// errors
	ErrNotFound         = errors.New("application not found")
	ErrCriteriaNotFound = errors.New("criteria not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrFormNotFound     = errors.New("institute information form not found")
	ErrInvalidStatus    = errors.New("operation not allowed in the application's current status")
)

// nowFunc is swapped in tests for deterministic timestamps.
var nowFunc = time.Now

type Repository interface {
	CreateApplications(apps ...Application) error
	QueryAllApplications() ([]Application, error)
	GetApplicationByID(id string) (Application, error)
	QueryApplicationsByInstitution(institutionID string) ([]Application, error)
	UpdateApplication(app Application) (Application, error)
	SaveInstituteForm(form InstituteForm) error
	GetInstituteForm(applicationID string) (InstituteForm, error)
}

type Service struct {
	repo     Repository
	instRepo institution.Repository
	mailSvc  core.EmailService
	conf     *core.Config
	onChange []func(Application)
}

func NewService(repo Repository, instRepo institution.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, instRepo: instRepo, mailSvc: mailSvc, conf: conf}
}

// OnChange registers an observer invoked after every successful write to an
// application. Observers must not mutate the passed copy's slices.
func (svc *Service) OnChange(fn func(Application)) {
	svc.onChange = append(svc.onChange, fn)
}

func (svc *Service) notify(app Application) {
	for _, fn := range svc.onChange {
		fn(app)
	}
}

// newApplication builds one application for inst+deptCode without persisting
// it. deptCode may be a catalog code or the institute-info sentinel.
func (svc *Service) newApplication(inst institution.Institution, deptCode, createdBy string, now time.Time) (Application, error) {
	var (
		deptID, deptName, code string
		criteria               []Criteria
	)
	if deptCode == instituteInfoDepartment {
		deptID = instituteInfoDepartment
		deptName = "Institute Information"
		code = institution.InstituteInfoCode
		criteria = []Criteria{}
	} else {
		dept, err := institution.GetDepartmentByCode(deptCode)
		if err != nil {
			return Application{}, err
		}
		deptID = dept.Code
		deptName = dept.Name
		code = dept.Code
		criteria = NewCriteria(now)
	}

	return Application{
		ID:             uuid.New().String(),
		ApplicationID:  fmt.Sprintf("%s-%s-%s", inst.InstitutionCode, code, now.Format("20060102")),
		InstitutionID:  inst.ID,
		DepartmentID:   deptID,
		DepartmentName: deptName,

		ApplicationStartDate: now,
		ApplicationEndDate:   now.Add(svc.conf.ApplicationWindow),

		Status:          StatusDraft,
		Criteria:        criteria,
		MaxOverallMarks: MaxOverallMarks(criteria),

		CreatedBy:    createdBy,
		LastModified: now,
	}, nil
}

// CreateApplications creates one application per department code for the
// institution, in a single store write. The whole batch fails if any code is
// unknown or already has an application for this institution.
func (svc *Service) CreateApplications(institutionID string, deptCodes []string, createdBy string) ([]Application, error) {
	inst, err := svc.instRepo.GetInstitutionByID(institutionID)
	if err != nil {
		return nil, err
	}
	existing, err := svc.repo.QueryApplicationsByInstitution(institutionID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, app := range existing {
		taken[app.DepartmentID] = true
	}

	now := nowFunc().UTC()
	apps := make([]Application, 0, len(deptCodes))
	for _, code := range deptCodes {
		if taken[code] {
			return nil, core.NewValidationError(
				fmt.Errorf("an application already exists for department %q", code),
				core.FieldError{Field: "departments", Error: "application already exists for department " + code},
			)
		}
		app, err := svc.newApplication(inst, code, createdBy, now)
		if err != nil {
			return nil, err
		}
		taken[code] = true
		apps = append(apps, app)
	}
	if err = svc.repo.CreateApplications(apps...); err != nil {
		return nil, err
	}
	for _, app := range apps {
		svc.notify(app)
	}
	return apps, nil
}

// CreateApplication creates a single application; see CreateApplications.
func (svc *Service) CreateApplication(institutionID, deptCode, createdBy string) (Application, error) {
	apps, err := svc.CreateApplications(institutionID, []string{deptCode}, createdBy)
	if err != nil {
		return Application{}, err
	}
	return apps[0], nil
}

func (svc *Service) QueryAll() ([]Application, error) {
	return svc.repo.QueryAllApplications()
}

func (svc *Service) GetByID(id string) (Application, error) {
	return svc.repo.GetApplicationByID(id)
}

func (svc *Service) QueryByInstitution(institutionID string) ([]Application, error) {
	return svc.repo.QueryApplicationsByInstitution(institutionID)
}

// UpdateSection applies a partial update to one section and cascades the
// aggregation up to the application. Nothing is persisted unless the
// application, criteria and section all resolve; a failed lookup leaves the
// stored record untouched.
func (svc *Service) UpdateSection(appID, criteriaID, sectionID string, up SectionUpdate) (Application, error) {
	app, err := svc.repo.GetApplicationByID(appID)
	if err != nil {
		return Application{}, err
	}

	ci := -1
	for i := range app.Criteria {
		if app.Criteria[i].ID == criteriaID {
			ci = i
			break
		}
	}
	if ci < 0 {
		return Application{}, ErrCriteriaNotFound
	}
	si := -1
	for i := range app.Criteria[ci].Sections {
		if app.Criteria[ci].Sections[i].ID == sectionID {
			si = i
			break
		}
	}
	if si < 0 {
		return Application{}, ErrSectionNotFound
	}

	now := nowFunc().UTC()
	up.apply(&app.Criteria[ci].Sections[si], now)
	app.Recompute()
	app.LastModified = now

	app, err = svc.repo.UpdateApplication(app)
	if err != nil {
		return Application{}, err
	}
	svc.notify(app)
	return app, nil
}

// transition moves an application from one of the allowed statuses to the
// target status, stamping ts if non-nil.
func (svc *Service) transition(appID, target string, allowed []string, stamp func(*Application, time.Time)) (Application, error) {
	app, err := svc.repo.GetApplicationByID(appID)
	if err != nil {
		return Application{}, err
	}
	ok := false
	for _, s := range allowed {
		if app.Status == s {
			ok = true
			break
		}
	}
	if !ok {
		return Application{}, ErrInvalidStatus
	}

	now := nowFunc().UTC()
	app.Status = target
	app.LastModified = now
	if stamp != nil {
		stamp(&app, now)
	}
	app, err = svc.repo.UpdateApplication(app)
	if err != nil {
		return Application{}, err
	}
	svc.notify(app)
	return app, nil
}

// Submit hands a working application over for review and notifies the
// institution's SAR coordinator.
func (svc *Service) Submit(appID string) (Application, error) {
	app, err := svc.transition(appID, StatusSubmitted,
		[]string{StatusDraft, StatusInProgress, StatusCompleted},
		func(a *Application, now time.Time) { a.SubmittedAt = &now })
	if err != nil {
		return Application{}, err
	}

	if inst, err := svc.instRepo.GetInstitutionByID(app.InstitutionID); err == nil {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: inst.CoordinatorName, Address: inst.CoordinatorEmail}},
			Subject:      fmt.Sprintf("SAR application %s submitted", app.ApplicationID),
			TemplateName: "sar-submitted",
			TemplateData: struct {
				CoordinatorName string
				ApplicationID   string
				DepartmentName  string
			}{inst.CoordinatorName, app.ApplicationID, app.DepartmentName},
		})
	}
	return app, nil
}

// StartReview marks a submitted application as under review.
func (svc *Service) StartReview(appID string) (Application, error) {
	return svc.transition(appID, StatusUnderReview,
		[]string{StatusSubmitted},
		func(a *Application, now time.Time) { a.ReviewedAt = &now })
}

// Approve accepts an application under review.
func (svc *Service) Approve(appID string) (Application, error) {
	return svc.transition(appID, StatusApproved,
		[]string{StatusUnderReview},
		func(a *Application, now time.Time) { a.ApprovedAt = &now })
}

// Reject declines an application under review.
func (svc *Service) Reject(appID string) (Application, error) {
	return svc.transition(appID, StatusRejected, []string{StatusUnderReview}, nil)
}

// SaveInstituteForm persists the draft state of an Institute Information
// form and mirrors its reported progress onto the owning application.
func (svc *Service) SaveInstituteForm(appID string, payload json.RawMessage, progress int) (Application, error) {
	if progress < 0 || progress > 100 {
		return Application{}, core.NewValidationError(errors.New("progress out of range"),
			core.FieldError{Field: "progress", Error: "must be between 0 and 100"})
	}
	app, err := svc.repo.GetApplicationByID(appID)
	if err != nil {
		return Application{}, err
	}
	if !app.IsInstituteInfo() {
		return Application{}, core.NewValidationError(errors.New("not an institute information application"),
			core.FieldError{Field: "applicationId", Error: "not an institute information application"})
	}

	now := nowFunc().UTC()
	if err = svc.repo.SaveInstituteForm(InstituteForm{
		ApplicationID: app.ID,
		Payload:       payload,
		Progress:      progress,
		SavedAt:       now,
	}); err != nil {
		return Application{}, err
	}

	app.CompletionPercentage = progress
	app.LastModified = now
	app.refreshStatus()
	app, err = svc.repo.UpdateApplication(app)
	if err != nil {
		return Application{}, err
	}
	svc.notify(app)
	return app, nil
}

// GetInstituteForm returns the saved draft for an Institute Information
// application, or ErrFormNotFound if none was saved yet.
func (svc *Service) GetInstituteForm(appID string) (InstituteForm, error) {
	if _, err := svc.repo.GetApplicationByID(appID); err != nil {
		return InstituteForm{}, err
	}
	return svc.repo.GetInstituteForm(appID)
}

// AvailableDepartments lists the catalog departments of the institution's
// category that do not have an application yet.
func (svc *Service) AvailableDepartments(institutionID string) ([]institution.Department, error) {
	inst, err := svc.instRepo.GetInstitutionByID(institutionID)
	if err != nil {
		return nil, err
	}
	apps, err := svc.repo.QueryApplicationsByInstitution(institutionID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(apps))
	for _, app := range apps {
		taken[app.DepartmentID] = true
	}

	var avail []institution.Department
	for _, dept := range institution.ListDepartmentsByCategory(inst.InstitutionCategory) {
		if !taken[dept.Code] {
			avail = append(avail, dept)
		}
	}
	return avail, nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalInstitutions      int            `json:"totalInstitutions"`
	PreQualifiersCompleted int            `json:"preQualifiersCompleted"`
	SAROngoing             int            `json:"sarOngoing"` // institutions with at least one application
	TotalApplications      int            `json:"totalApplications"`
	ApplicationsByStatus   map[string]int `json:"applicationsByStatus"`
	AverageCompletion      int            `json:"averageCompletion"` // mean percentage across all applications
}

// DashboardStats aggregates portal-wide counters for the admin dashboard.
func (svc *Service) DashboardStats() (Stats, error) {
	insts, err := svc.instRepo.QueryAllInstitutions()
	if err != nil {
		return Stats{}, err
	}
	apps, err := svc.repo.QueryAllApplications()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalInstitutions:    len(insts),
		TotalApplications:    len(apps),
		ApplicationsByStatus: make(map[string]int),
	}
	for _, inst := range insts {
		if inst.PreQualifiersCompleted {
			stats.PreQualifiersCompleted++
		}
	}
	ongoing := make(map[string]bool)
	var pctSum int
	for _, app := range apps {
		stats.ApplicationsByStatus[app.Status]++
		ongoing[app.InstitutionID] = true
		pctSum += app.CompletionPercentage
	}
	stats.SAROngoing = len(ongoing)
	if len(apps) > 0 {
		stats.AverageCompletion = int(math.Round(float64(pctSum) / float64(len(apps))))
	}
	return stats, nil
}

// OverallStatus summarizes a set of applications into a single label, as
// shown per institution on the admin dashboard.
func OverallStatus(apps []Application) string {
	if len(apps) == 0 {
		return "No Applications"
	}
	allCompleted, allDraft := true, true
	for _, app := range apps {
		if app.Status != StatusCompleted {
			allCompleted = false
		}
		if app.Status != StatusDraft {
			allDraft = false
		}
	}
	switch {
	case allCompleted:
		return "Completed"
	case allDraft:
		return "Draft"
	default:
		for _, app := range apps {
			if app.Status == StatusInProgress {
				return "In Progress"
			}
		}
		return "Mixed Status"
	}
}
