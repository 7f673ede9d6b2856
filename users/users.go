package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/errors"
)

var (
	ErrUserExists  = fmt.Errorf("%w: user with this email already exists", errors.Conflict)
	ErrInvalidUser = fmt.Errorf("%w: invalid user", errors.BadRequest)
	ErrDirectory   = fmt.Errorf("identity directory %w", errors.UpstreamUnavailable)
)

//go:generate go tool mockgen -source=./users.go -destination=./test/mock_directory.go -package test

// Directory provisions accounts in the identity provider
type Directory interface {
	CreateUser(ctx context.Context, user NewUser, temporaryPassword string) (*DirectoryUser, error)
	AddUserToGroup(ctx context.Context, username string, group string) error
	ListGroupEmails(ctx context.Context, group string) ([]string, error)
}

type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=lab healthcare admin"`
	ClinicId string `json:"clinic_id,omitempty" validate:"required_if=Role lab"`
}

type DirectoryUser struct {
	Username string
	Sub      string
}

type CreatedUser struct {
	Message           string `json:"message"`
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporaryPassword"`
	UserSub           string `json:"userSub"`
	GroupAssigned     bool   `json:"groupAssigned"`
}

type Service struct {
	directory Directory
	validate  *validator.Validate
	passwords func() (string, error)
	logger    *zap.SugaredLogger
}

func NewService(directory Directory, logger *zap.SugaredLogger) *Service {
	return &Service{
		directory: directory,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		passwords: GenerateTemporaryPassword,
		logger:    logger,
	}
}

// Create provisions a new account with a temporary password which must be changed on first sign in.
// Group membership is best effort.
func (s *Service) Create(ctx context.Context, user NewUser) (*CreatedUser, error) {
	user.Email = strings.TrimSpace(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	user.ClinicId = strings.TrimSpace(user.ClinicId)
	if err := s.validate.StructCtx(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUser, describe(err))
	}
	if auth.Role(user.Role) != auth.RoleLab {
		user.ClinicId = ""
	}

	password, err := s.passwords()
	if err != nil {
		return nil, fmt.Errorf("unable to generate temporary password: %w", err)
	}

	created, err := s.directory.CreateUser(ctx, user, password)
	if err != nil {
		return nil, err
	}

	groupAssigned := true
	if err := s.directory.AddUserToGroup(ctx, created.Username, user.Role); err != nil {
		groupAssigned = false
		s.logger.Warnw("unable to add user to group", "username", created.Username, "group", user.Role, zap.Error(err))
	}

	s.logger.Infow("user created", "username", created.Username, "role", user.Role)

	sub := created.Sub
	if sub == "" {
		sub = created.Username
	}
	return &CreatedUser{
		Message:           "User created successfully",
		Username:          created.Username,
		TemporaryPassword: password,
		UserSub:           sub,
		GroupAssigned:     groupAssigned,
	}, nil
}

func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required", "required_if":
			messages = append(messages, fmt.Sprintf("missing required field: %s", jsonName(field)))
		case "oneof":
			messages = append(messages, fmt.Sprintf("invalid %s, must be one of: %s", jsonName(field), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("invalid %s", jsonName(field)))
		}
	}
	return strings.Join(messages, ", ")
}

func jsonName(field string) string {
	if field == "clinicid" {
		return "clinic_id"
	}
	return field
}
