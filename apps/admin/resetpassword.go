package main

import (
	"time"

	"github.com/compliedu/backend/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrRepo.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := cli.usrRepo.UpdateOrCreateUser(usr); err != nil {
		return err
	}
	return nil
}
