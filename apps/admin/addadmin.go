package main

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core/user"
)

// addAdmin creates the admin account with the prompted password. The account
// is a singleton; a second run is refused.
func (cli *commandLine) addAdmin(pwd string) error {
	if _, err := cli.usrRepo.GetAdminUser(); err == nil {
		return errors.New("an admin account already exists")
	} else if err != user.ErrNotFound {
		return err
	}

	usr := user.User{
		ID:        uuid.NewString(),
		Email:     user.AdminEmail,
		Name:      "Admin",
		Role:      user.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(usr)
	return err
}
