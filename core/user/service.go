package user

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/compliedu/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type Repository interface {
	CheckEmailUniqueness(email string, excludedUsers ...User) error
	CreateUser(usr User) (User, error)
	QueryAllUsers() ([]User, error)
	GetUserByID(id string) (User, error)
	GetUserByEmail(email string) (User, error)
	UpdateUser(usr User, isActive *bool) (User, error)
	// UpdateOrCreateUser matches on Email; used by the admin CLI.
	UpdateOrCreateUser(usr User) (User, error)
}

type Service struct {
	repo    Repository
	mailSvc core.EmailService
	conf    *core.Config
}

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:            uuid.New().String(),
		Name:          nu.Name,
		Email:         nu.Email,
		Role:          nu.Role,
		InstitutionID: nu.InstitutionID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(usr, uu.IsActive)
}

func (svc *Service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateOrCreateUser(usr)
}

// RequestPasswordReset emails a password reset link to the User with the
// given email, if any.
func (svc *Service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(svc.passwordResetMessage(usr))
	return nil
}

func (svc *Service) passwordResetMessage(usr User) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{
			Name:  usr.Name,
			UID:   EncodeUID(usr),
			Token: makeToken(usr),
		},
	}
}

// ConfirmPasswordReset verifies the reset token and sets the new password.
func (svc *Service) ConfirmPasswordReset(rp ResetUserPassword) (User, error) {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return User{}, core.NewValidationError(fmt.Errorf("invalid uid: %v", err))
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return User{}, core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateOrCreateUser(usr)
}
