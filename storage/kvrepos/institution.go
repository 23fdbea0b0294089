package kvrepos

import (
	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/institution"
)

type InstitutionRepository struct {
	db *DB
}

var _ institution.Repository = (*InstitutionRepository)(nil)

func NewInstitutionRepository(db *DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// load reads the institutions collection, serving (and on first run,
// persisting) the seed dataset when the collection is missing or unreadable.
// Callers must hold db.mu.
func (r *InstitutionRepository) load() []institution.Institution {
	var insts []institution.Institution
	err := r.db.readCollection(institutionsKey, &insts)
	switch {
	case err == nil:
	case err == core.ErrKeyNotFound:
		insts = seedInstitutions()
		if werr := r.db.writeCollection(institutionsKey, insts); werr != nil {
			r.db.fallback(institutionsKey, werr)
		}
	default:
		r.db.fallback(institutionsKey, err)
		insts = seedInstitutions()
	}
	for i := range insts {
		if insts[i].AccreditationStatus == "" {
			insts[i].AccreditationStatus = institution.StatusPending
		}
	}
	return insts
}

func (r *InstitutionRepository) CheckCodeUniqueness(code string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, inst := range r.load() {
		if inst.InstitutionCode == code {
			return institution.ErrCodeExists
		}
	}
	return nil
}

func (r *InstitutionRepository) CreateInstitution(inst institution.Institution) (institution.Institution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	insts := append(r.load(), inst)
	if err := r.db.writeCollection(institutionsKey, insts); err != nil {
		return institution.Institution{}, err
	}
	return inst, nil
}

func (r *InstitutionRepository) QueryAllInstitutions() ([]institution.Institution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.load(), nil
}

func (r *InstitutionRepository) GetInstitutionByID(id string) (institution.Institution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, inst := range r.load() {
		if inst.ID == id {
			return inst, nil
		}
	}
	return institution.Institution{}, institution.ErrNotFound
}

func (r *InstitutionRepository) GetInstitutionByCode(code string) (institution.Institution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, inst := range r.load() {
		if inst.InstitutionCode == code {
			return inst, nil
		}
	}
	return institution.Institution{}, institution.ErrNotFound
}

func (r *InstitutionRepository) UpdateInstitution(inst institution.Institution) (institution.Institution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	insts := r.load()
	for i := range insts {
		if insts[i].ID == inst.ID {
			insts[i] = inst
			if err := r.db.writeCollection(institutionsKey, insts); err != nil {
				return institution.Institution{}, err
			}
			return inst, nil
		}
	}
	return institution.Institution{}, institution.ErrNotFound
}
