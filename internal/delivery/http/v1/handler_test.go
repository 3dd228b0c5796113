package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-profile-portal/config"
	"go-profile-portal/internal/delivery/http/middleware"
	v1 "go-profile-portal/internal/delivery/http/v1"
	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/metrics"
	"go-profile-portal/pkg/storage"
	"go-profile-portal/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- mocks ---

type MockAuthUC struct{ mock.Mock }

func (m *MockAuthUC) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockAuthUC) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	r, _ := args.Get(0).(*domain.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthUC) GetCurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type MockProfileUC struct{ mock.Mock }

func (m *MockProfileUC) GetOrCreate(ctx context.Context, userID int64) (*domain.ProfileWithUser, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*domain.ProfileWithUser)
	return p, args.Error(1)
}

func (m *MockProfileUC) Update(ctx context.Context, userID int64, input domain.ProfileUpdateInput) (*domain.ProfileWithUser, error) {
	args := m.Called(ctx, userID, input)
	p, _ := args.Get(0).(*domain.ProfileWithUser)
	return p, args.Error(1)
}

type MockExportUC struct{ mock.Mock }

func (m *MockExportUC) ListProfiles(ctx context.Context, actor *domain.User, filter domain.ProfileFilter) ([]domain.ProfileWithUser, error) {
	args := m.Called(ctx, actor, filter)
	p, _ := args.Get(0).([]domain.ProfileWithUser)
	return p, args.Error(1)
}

func (m *MockExportUC) ExportProfiles(ctx context.Context, actor *domain.User, filter domain.ProfileFilter) ([]byte, int, error) {
	args := m.Called(ctx, actor, filter)
	b, _ := args.Get(0).([]byte)
	return b, args.Int(1), args.Error(2)
}

func (m *MockExportUC) FilterOptions(ctx context.Context, actor *domain.User) (*domain.ProfileFilterOptions, error) {
	args := m.Called(ctx, actor)
	o, _ := args.Get(0).(*domain.ProfileFilterOptions)
	return o, args.Error(1)
}

// --- fixture ---

var (
	staffUser  = &domain.User{ID: 1, Email: "staff@example.com", Name: "Staff", IsActive: true, IsStaff: true}
	normalUser = &domain.User{ID: 2, Email: "asha@example.com", Name: "Asha Rao", MobileNo: "9876543210", IsActive: true}
)

type fixture struct {
	router    *gin.Engine
	files     *storage.Local
	tokens    *token.Manager
	authUC    *MockAuthUC
	profileUC *MockProfileUC
	exportUC  *MockExportUC
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir(), v1.MediaURLPrefix)
	require.NoError(t, err)

	f := &fixture{
		files:     files,
		tokens:    token.NewManager("test-secret", time.Hour),
		authUC:    new(MockAuthUC),
		profileUC: new(MockProfileUC),
		exportUC:  new(MockExportUC),
	}
	f.authUC.On("GetCurrentUser", mock.Anything, staffUser.ID).Return(staffUser, nil).Maybe()
	f.authUC.On("GetCurrentUser", mock.Anything, normalUser.ID).Return(normalUser, nil).Maybe()

	f.router = v1.NewRouter(v1.RouterDeps{
		AuthUC:    f.authUC,
		ProfileUC: f.profileUC,
		ExportUC:  f.exportUC,
		Files:     files,
		MediaRoot: files.Root(),
		Tokens:    f.tokens,
		Metrics:   metrics.New(),
		Config: &config.Config{
			JWTTTL:                  time.Hour,
			Location:                time.UTC,
			MaxUploadBytes:          1 << 20,
			RateLimitWindowSeconds:  60,
			RateLimitLoginThreshold: 1000,
		},
	})
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		tok, err := f.tokens.Issue(user.ID, user.Email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// --- accounts ---

func TestLoginSetsCookie(t *testing.T) {
	f := newFixture(t)
	f.authUC.On("Login", mock.Anything, domain.LoginInput{Email: "asha@example.com", Password: "s3cret-pass"}).
		Return(&domain.AuthResult{Token: "signed.jwt.value", User: normalUser}, nil)

	body := bytes.NewBufferString(`{"email":"asha@example.com","password":"s3cret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", body)
	req.Header.Set("Content-Type", "application/json")
	w := f.do(t, req, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var authCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			authCookie = c
		}
	}
	require.NotNil(t, authCookie)
	assert.Equal(t, "signed.jwt.value", authCookie.Value)
	assert.True(t, authCookie.HttpOnly)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	f := newFixture(t)
	f.authUC.On("Login", mock.Anything, mock.Anything).Return(nil, apperror.Unauthorized("Invalid email or password"))

	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", bytes.NewBufferString(`{"email":"x@example.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(t, req, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w).Message)
}

func TestRegisterValidationEnvelope(t *testing.T) {
	f := newFixture(t)
	f.authUC.On("Register", mock.Anything, mock.Anything).
		Return(nil, apperror.Validation(map[string]string{"password2": "The two password fields didn't match."}))

	req := httptest.NewRequest(http.MethodPost, "/accounts/register/", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(t, req, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.JSONEq(t, `{"password2":"The two password fields didn't match."}`, string(env.Error))
}

// --- profile ---

func TestGetProfileEditMode(t *testing.T) {
	f := newFixture(t)
	dob := time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC)
	f.profileUC.On("GetOrCreate", mock.Anything, normalUser.ID).Return(&domain.ProfileWithUser{
		Profile: domain.Profile{ID: 7, UserID: 2, Skills: []string{"Go", "SQL"}, DateOfBirth: &dob, Photo: "profile_photos/a.jpg"},
		User:    *normalUser,
	}, nil)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/profile/?edit=1", nil), normalUser)
	require.Equal(t, http.StatusOK, w.Code)

	var view v1.ProfileView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &view))
	assert.True(t, view.IsEditing)
	assert.Equal(t, "Go, SQL", view.SkillInput)
	assert.Equal(t, "1995-03-14", view.DOB)
	assert.Equal(t, "/media/profile_photos/a.jpg", view.PhotoURL)
	assert.Len(t, view.Choices.Genders, 2)
}

func TestGetProfileRequiresAuth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, httptest.NewRequest(http.MethodGet, "/profile/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.profileUC.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func multipartRequest(t *testing.T, fields map[string][]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for name, data := range files {
		part, err := mw.CreateFormFile(name, name+".pdf")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func baseFields() map[string][]string {
	return map[string][]string{
		"name":            {"Asha Rao"},
		"email":           {"asha@example.com"},
		"mobile_no":       {"9876543210"},
		"gender":          {"female"},
		"education":       {"masters"},
		"work_experience": {"3-5 years"},
		"skill_input":     {"Rust"},
	}
}

func TestUpdateProfileSkillsArrayWins(t *testing.T) {
	f := newFixture(t)
	fields := baseFields()
	fields["skills[]"] = []string{"Go", "SQL"}
	resume := []byte("%PDF-1.4 test")

	f.profileUC.On("Update", mock.Anything, normalUser.ID, mock.MatchedBy(func(in domain.ProfileUpdateInput) bool {
		return in.Name == "Asha Rao" &&
			in.Gender == "female" &&
			in.SkillInput == "Rust" &&
			assert.ObjectsAreEqual([]string{"Go", "SQL"}, in.Skills) &&
			in.Photo == nil &&
			in.Resume != nil && in.Resume.Filename == "resume.pdf" && bytes.Equal(in.Resume.Data, resume)
	})).Return(&domain.ProfileWithUser{
		Profile: domain.Profile{ID: 7, UserID: 2, Skills: []string{"Go", "SQL"}},
		User:    *normalUser,
	}, nil)

	w := f.do(t, multipartRequest(t, fields, map[string][]byte{"resume": resume}), normalUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f.profileUC.AssertExpectations(t)
}

func TestUpdateProfileWithoutSkillsArray(t *testing.T) {
	f := newFixture(t)
	f.profileUC.On("Update", mock.Anything, normalUser.ID, mock.MatchedBy(func(in domain.ProfileUpdateInput) bool {
		return in.Skills == nil && in.SkillInput == "Rust" && in.Resume == nil
	})).Return(&domain.ProfileWithUser{User: *normalUser}, nil)

	w := f.do(t, multipartRequest(t, baseFields(), nil), normalUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f.profileUC.AssertExpectations(t)
}

func TestUpdateProfileValidationError(t *testing.T) {
	f := newFixture(t)
	f.profileUC.On("Update", mock.Anything, normalUser.ID, mock.Anything).
		Return(nil, apperror.Validation(map[string]string{"mobile_no": "Enter a valid 10-digit mobile number."}))

	fields := baseFields()
	fields["mobile_no"] = []string{"12345"}
	w := f.do(t, multipartRequest(t, fields, nil), normalUser)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"mobile_no":"Enter a valid 10-digit mobile number."}`, string(decode(t, w).Error))
}

// --- export ---

func TestExportForbiddenForNonStaff(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, httptest.NewRequest(http.MethodGet, "/export-profiles/?download=1", nil), normalUser)

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.exportUC.AssertNotCalled(t, "ExportProfiles", mock.Anything, mock.Anything, mock.Anything)
	f.exportUC.AssertNotCalled(t, "ListProfiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportDownload(t *testing.T) {
	f := newFixture(t)
	workbook := []byte("PK\x03\x04 fake xlsx")
	f.exportUC.On("ExportProfiles", mock.Anything, mock.Anything, mock.MatchedBy(func(fl domain.ProfileFilter) bool {
		return fl.Gender == "female" && assert.ObjectsAreEqual([]string{"python", "sql"}, fl.RequiredSkills)
	})).Return(workbook, 3, nil)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/export-profiles/?gender=female&skills=Python,%20SQL&download=1", nil), staffUser)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="filtered_profiles.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, domain.ExportMIME, w.Header().Get("Content-Type"))
	assert.Equal(t, workbook, w.Body.Bytes())
}

func TestExportListEchoesFilters(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	f.exportUC.On("ListProfiles", mock.Anything, mock.Anything, mock.MatchedBy(func(fl domain.ProfileFilter) bool {
		// malformed date is dropped from the filter
		return fl.CreatedAfter == nil && fl.Education == "master"
	})).Return([]domain.ProfileWithUser{{
		Profile: domain.Profile{ID: 5, Gender: domain.GenderFemale, Education: domain.EducationMasters, Skills: []string{"Go"}, CreatedAt: created},
		User:    *normalUser,
	}}, nil)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/export-profiles/?education=master&created_date=02/01/2024", nil), staffUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view v1.ExportListView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &view))
	assert.Equal(t, 1, view.Count)
	assert.Equal(t, "Asha Rao", view.Profiles[0].Name)
	assert.Equal(t, "master", view.SelectedFilters.Education)
	assert.Equal(t, "02/01/2024", view.SelectedFilters.CreatedDate)
}

func TestExportOptions(t *testing.T) {
	f := newFixture(t)
	f.exportUC.On("FilterOptions", mock.Anything, mock.Anything).Return(&domain.ProfileFilterOptions{
		Genders: domain.GenderChoices,
		Skills:  []string{"go", "sql"},
	}, nil)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/export-profiles/options/", nil), staffUser)
	require.Equal(t, http.StatusOK, w.Code)

	var opts domain.ProfileFilterOptions
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &opts))
	assert.Equal(t, []string{"go", "sql"}, opts.Skills)
}

// --- infra ---

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "profile_portal_http_requests_total")
}

func TestMediaRequiresSession(t *testing.T) {
	f := newFixture(t)
	ref, err := f.files.Save(context.Background(), "resumes/cv.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	url := f.files.URL(ref)

	w := f.do(t, httptest.NewRequest(http.MethodGet, url, nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "%PDF")

	w = f.do(t, httptest.NewRequest(http.MethodGet, url, nil), normalUser)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, v1.MediaURLPrefix+"/resumes/missing.pdf", nil), normalUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
