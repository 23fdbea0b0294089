package kvrepos

import (
	"strings"

	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/user"
)

type UserRepository struct {
	db *DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// load reads the users collection, serving the seed dataset when the
// collection is missing or unreadable. Callers must hold db.mu.
func (r *UserRepository) load() []user.User {
	var users []user.User
	err := r.db.readCollection(usersKey, &users)
	switch {
	case err == nil:
	case err == core.ErrKeyNotFound:
		users = seedUsers()
		if werr := r.db.writeCollection(usersKey, users); werr != nil {
			r.db.fallback(usersKey, werr)
		}
	default:
		r.db.fallback(usersKey, err)
		users = seedUsers()
	}
	return users
}

func (r *UserRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

nextUser:
	for _, usr := range r.load() {
		for _, excl := range excludedUsers {
			if usr.ID == excl.ID {
				continue nextUser
			}
		}
		if strings.EqualFold(usr.Email, email) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (r *UserRepository) CreateUser(usr user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := append(r.load(), usr)
	if err := r.db.writeCollection(usersKey, users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (r *UserRepository) QueryAllUsers() ([]user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.load(), nil
}

func (r *UserRepository) GetUserByID(id string) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, usr := range r.load() {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepository) GetUserByEmail(email string) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, usr := range r.load() {
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// UpdateUser applies the non-zero fields of usr to the stored record.
func (r *UserRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := r.load()
	for i := range users {
		if users[i].ID != usr.ID {
			continue
		}
		if usr.Name != "" {
			users[i].Name = usr.Name
		}
		if usr.Email != "" {
			users[i].Email = usr.Email
		}
		if len(usr.PasswordHash) > 0 {
			users[i].PasswordHash = usr.PasswordHash
		}
		if isActive != nil {
			users[i].IsActive = *isActive
		}
		users[i].UpdatedAt = usr.UpdatedAt
		if err := r.db.writeCollection(usersKey, users); err != nil {
			return user.User{}, err
		}
		return users[i], nil
	}
	return user.User{}, user.ErrNotFound
}

// UpdateOrCreateUser replaces the stored record matching on Email, or
// appends usr if no record matches.
func (r *UserRepository) UpdateOrCreateUser(usr user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := r.load()
	for i := range users {
		if strings.EqualFold(users[i].Email, usr.Email) {
			usr.ID = users[i].ID
			users[i] = usr
			if err := r.db.writeCollection(usersKey, users); err != nil {
				return user.User{}, err
			}
			return usr, nil
		}
	}
	users = append(users, usr)
	if err := r.db.writeCollection(usersKey, users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}
