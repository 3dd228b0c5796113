package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/audit"
	"go-profile-portal/pkg/metrics"
	"go-profile-portal/pkg/token"
	"go-profile-portal/pkg/validation"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "User with this Email already exists."
)

// Compared against when the email is unknown so both failure paths cost a bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   *token.Manager
	validate *validator.Validate
	audit    *audit.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens *token.Manager, validate *validator.Validate, auditLog *audit.Logger, m *metrics.Metrics) domain.AuthUsecase {
	if auditLog == nil {
		auditLog = audit.Default()
	}
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		validate: validate,
		audit:    auditLog,
		metrics:  m,
		now:      time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	fields := map[string]string{}
	if err := u.validate.Struct(input); err != nil {
		mergeFields(fields, validation.FieldErrors(err))
	}
	if _, bad := fields["password1"]; !bad && isAllDigits(input.Password1) {
		fields["password1"] = "This password is entirely numeric."
	}

	email := normalizeEmail(input.Email)
	if _, bad := fields["email"]; !bad {
		existing, err := u.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if existing != nil {
			fields["email"] = msgEmailTaken
		}
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		MobileNo:     input.MobileNo,
		WorkStatus:   domain.WorkStatus(input.WorkStatus),
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   u.now(),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email
		if isConflict(err) {
			return nil, apperror.Validation(map[string]string{"email": msgEmailTaken})
		}
		return nil, err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventUserRegistered,
		SubjectType:  "email",
		SubjectValue: audit.MaskEmail(user.Email),
	})
	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.Validation(validation.FieldErrors(err))
	}

	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	pwErr := bcrypt.CompareHashAndPassword(hash, []byte(input.Password))

	if user == nil || !user.IsActive || pwErr != nil {
		u.metrics.ObserveLogin(false)
		u.audit.Log(ctx, audit.Event{
			Event:        audit.EventLoginFailed,
			SubjectType:  "email",
			SubjectValue: audit.MaskEmail(input.Email),
		})
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	signed, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.metrics.ObserveLogin(true)
	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: audit.MaskEmail(user.Email),
	})
	return &domain.AuthResult{
		Token:     signed,
		ExpiresAt: u.now().Add(u.tokens.TTL()),
		User:      user,
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// normalizeEmail trims the address and lowercases its domain part.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isConflict(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusConflict
}

func mergeFields(dst, src map[string]string) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
