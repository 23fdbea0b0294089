package kvrepos

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/sar"
)

type SARRepository struct {
	db *DB
}

var _ sar.Repository = (*SARRepository)(nil)

func NewSARRepository(db *DB) *SARRepository {
	return &SARRepository{db: db}
}

// load reads the applications collection, serving the seed dataset when the
// collection is missing or unreadable. Every record is normalized here so
// the rest of the code only ever sees fully populated applications.
// Callers must hold db.mu.
func (r *SARRepository) load() []sar.Application {
	var apps []sar.Application
	err := r.db.readCollection(applicationsKey, &apps)
	switch {
	case err == nil:
	case err == core.ErrKeyNotFound:
		apps = seedApplications()
		if werr := r.db.writeCollection(applicationsKey, apps); werr != nil {
			r.db.fallback(applicationsKey, werr)
		}
	default:
		r.db.fallback(applicationsKey, err)
		apps = seedApplications()
	}
	for i := range apps {
		apps[i].Normalize()
	}
	return apps
}

func (r *SARRepository) CreateApplications(newApps ...sar.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	apps := append(r.load(), newApps...)
	return r.db.writeCollection(applicationsKey, apps)
}

func (r *SARRepository) QueryAllApplications() ([]sar.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.load(), nil
}

func (r *SARRepository) GetApplicationByID(id string) (sar.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, app := range r.load() {
		if app.ID == id {
			return app, nil
		}
	}
	return sar.Application{}, sar.ErrNotFound
}

func (r *SARRepository) QueryApplicationsByInstitution(institutionID string) ([]sar.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var apps []sar.Application
	for _, app := range r.load() {
		if app.InstitutionID == institutionID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (r *SARRepository) UpdateApplication(app sar.Application) (sar.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	apps := r.load()
	for i := range apps {
		if apps[i].ID == app.ID {
			apps[i] = app
			if err := r.db.writeCollection(applicationsKey, apps); err != nil {
				return sar.Application{}, err
			}
			return app, nil
		}
	}
	return sar.Application{}, sar.ErrNotFound
}

// Institute form drafts live under their own per-application keys, apart
// from the applications collection.

func (r *SARRepository) SaveInstituteForm(form sar.InstituteForm) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, err := json.Marshal(form)
	if err != nil {
		return errors.Wrap(err, "encoding institute form")
	}
	return r.db.store.Set(instituteFormKeyPrefix+form.ApplicationID, b)
}

func (r *SARRepository) GetInstituteForm(applicationID string) (sar.InstituteForm, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, err := r.db.store.Get(instituteFormKeyPrefix + applicationID)
	if err != nil {
		if err == core.ErrKeyNotFound {
			return sar.InstituteForm{}, sar.ErrFormNotFound
		}
		return sar.InstituteForm{}, errors.Wrap(err, "reading institute form")
	}
	var form sar.InstituteForm
	if err = json.Unmarshal(b, &form); err != nil {
		return sar.InstituteForm{}, errors.Wrap(err, "decoding institute form")
	}
	return form, nil
}
