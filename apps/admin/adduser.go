package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool, institutionID string) error {
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Name = core.CleanString(name)
	usr.Role = user.RoleInstitute
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.InstitutionID = institutionID
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(usr); err != nil {
		return err
	}
	return nil
}
