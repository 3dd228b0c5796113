package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/internal/usecase"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/token"
	"go-profile-portal/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	err := m.Called(ctx, user).Error(0)
	if err == nil && user.ID == 0 {
		user.ID = 1
	}
	return err
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) SetStaff(ctx context.Context, id int64, staff bool) error {
	return m.Called(ctx, id, staff).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) UpdateWithUser(ctx context.Context, profile *domain.Profile, user *domain.User) error {
	return m.Called(ctx, profile, user).Error(0)
}

func (m *MockProfileRepo) List(ctx context.Context, filter domain.ProfileFilter, loc *time.Location) ([]domain.ProfileWithUser, error) {
	args := m.Called(ctx, filter, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProfileWithUser), args.Error(1)
}

func (m *MockProfileRepo) DistinctSkills(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockStorage) URL(ref string) string {
	return "/media/" + ref
}

func requireFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, message, appErr.Fields[field], "fields: %v", appErr.Fields)
}

func requireStatus(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func validRegistration() domain.RegisterInput {
	return domain.RegisterInput{
		Name:       "Anne Smith",
		MobileNo:   "9876543210",
		Email:      "anne@Example.COM",
		WorkStatus: "fresher",
		Password1:  "correct-horse",
		Password2:  "correct-horse",
	}
}

func newAuth(repo *MockUserRepo) domain.AuthUsecase {
	return usecase.NewAuthUsecase(repo, token.NewManager("test-secret", time.Hour), validation.New(), nil, nil)
}

func TestRegister(t *testing.T) {
	t.Run("Should create an active user with a bcrypt hash", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "anne@example.com").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "anne@example.com" &&
				u.IsActive && !u.IsStaff &&
				u.WorkStatus == domain.WorkStatusFresher &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")) == nil
		})).Return(nil)

		user, err := newAuth(repo).Register(context.Background(), validRegistration())
		require.NoError(t, err)
		assert.Equal(t, "anne@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject a duplicate email as a field error", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "anne@example.com").Return(&domain.User{ID: 9}, nil)

		_, err := newAuth(repo).Register(context.Background(), validRegistration())
		requireFieldError(t, err, "email", "User with this Email already exists.")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should collect field errors without writing", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

		in := validRegistration()
		in.MobileNo = "12345"
		in.Password2 = "something-else"
		_, err := newAuth(repo).Register(context.Background(), in)

		requireFieldError(t, err, "mobile_no", "Enter a valid 10-digit mobile number.")
		requireFieldError(t, err, "password2", "The two password fields didn't match.")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject numeric passwords", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

		in := validRegistration()
		in.Password1, in.Password2 = "1234567890", "1234567890"
		_, err := newAuth(repo).Register(context.Background(), in)
		requireFieldError(t, err, "password1", "This password is entirely numeric.")
	})

	t.Run("Should map a unique violation on insert to the email field", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(apperror.Conflict("email already registered"))

		_, err := newAuth(repo).Register(context.Background(), validRegistration())
		requireFieldError(t, err, "email", "User with this Email already exists.")
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	active := &domain.User{ID: 42, Email: "anne@example.com", PasswordHash: string(hash), IsActive: true}
	inactive := &domain.User{ID: 43, Email: "gone@example.com", PasswordHash: string(hash)}

	failures := []struct {
		name     string
		email    string
		password string
		found    *domain.User
	}{
		{"unknown email", "nobody@example.com", "correct-horse", nil},
		{"wrong password", "anne@example.com", "wrong-horse", active},
		{"inactive account", "gone@example.com", "correct-horse", inactive},
	}

	for _, tt := range failures {
		t.Run("Should fail generically on "+tt.name, func(t *testing.T) {
			repo := new(MockUserRepo)
			if tt.found == nil {
				repo.On("GetByEmail", mock.Anything, tt.email).Return(nil, nil)
			} else {
				repo.On("GetByEmail", mock.Anything, tt.email).Return(tt.found, nil)
			}

			_, err := newAuth(repo).Login(context.Background(), domain.LoginInput{Email: tt.email, Password: tt.password})
			appErr := requireStatus(t, err, 401)
			assert.Equal(t, "Invalid email or password", appErr.Message)
		})
	}

	t.Run("Should issue a token for valid credentials", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "anne@example.com").Return(active, nil)

		res, err := newAuth(repo).Login(context.Background(), domain.LoginInput{Email: "anne@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, active, res.User)

		id, claims, err := token.NewManager("test-secret", time.Hour).Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, strconv.FormatInt(42, 10), claims.Subject)
	})

	t.Run("Should surface repository failures as internal errors", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := newAuth(repo).Login(context.Background(), domain.LoginInput{Email: "anne@example.com", Password: "x"})
		requireStatus(t, err, 500)
	})
}

func TestGetCurrentUser(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)

	_, err := newAuth(repo).GetCurrentUser(context.Background(), 7)
	requireStatus(t, err, 404)
}
