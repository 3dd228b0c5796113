package v1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go-profile-portal/internal/delivery/http/response"
	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/skills"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
	files     domain.FileStorage
}

func NewProfileHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase, files domain.FileStorage, updateLimit gin.HandlerFunc) {
	handler := &ProfileHandler{
		profileUC: profileUC,
		files:     files,
	}

	protected.GET("/profile/", handler.GetProfile)
	protected.POST("/profile/", updateLimit, handler.UpdateProfile)
}

// ProfileView is the profile page payload.
type ProfileView struct {
	Profile    *domain.ProfileWithUser `json:"profile"`
	IsEditing  bool                    `json:"is_editing"`
	SkillInput string                  `json:"skill_input"`
	DOB        string                  `json:"dob"`
	PhotoURL   string                  `json:"photo_url,omitempty"`
	ResumeURL  string                  `json:"resume_url,omitempty"`
	Choices    ProfileChoices          `json:"choices"`
}

type ProfileChoices struct {
	Genders         []domain.Choice `json:"genders"`
	Educations      []domain.Choice `json:"educations"`
	WorkExperiences []domain.Choice `json:"work_experiences"`
}

// GetProfile godoc
// @Summary      Own profile
// @Description  Returns the caller's profile, creating an empty one on first access. edit=1 switches the page into edit mode.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        edit  query     string  false  "1 to edit"
// @Success      200   {object}  response.Response{data=ProfileView}
// @Failure      401   {object}  response.Response
// @Router       /profile/ [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	profile, err := h.profileUC.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", h.view(profile, c.Query("edit") == "1"))
}

// UpdateProfile godoc
// @Summary      Update own profile
// @Description  Validates and saves profile and account fields together. Any invalid field rejects the whole submission.
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name             formData  string  true   "Full name"
// @Param        email            formData  string  true   "Email"
// @Param        mobile_no        formData  string  true   "10-digit mobile number"
// @Param        gender           formData  string  true   "male or female"
// @Param        dob              formData  string  false  "YYYY-MM-DD"
// @Param        education        formData  string  false  "Education code"
// @Param        work_experience  formData  string  false  "Work experience code"
// @Param        skill_input      formData  string  false  "Comma separated skills"
// @Param        skills[]         formData  []string false "Skills, one per field"
// @Param        photo            formData  file    false  "jpg, jpeg, png or gif"
// @Param        resume           formData  file    false  "pdf, doc or docx"
// @Success      200  {object}  response.Response{data=ProfileView}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /profile/ [post]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	var input domain.ProfileUpdateInput
	if err := c.ShouldBind(&input); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "Upload is too large.", err))
			return
		}
		c.Error(apperror.BadRequest("Malformed form submission"))
		return
	}

	// A present skills[] list replaces skill_input, even when every entry is blank
	if values, ok := c.GetPostFormArray("skills[]"); ok {
		input.Skills = values
	} else {
		input.Skills = nil
	}

	var err error
	if input.Photo, err = readUpload(c, "photo"); err != nil {
		c.Error(err)
		return
	}
	if input.Resume, err = readUpload(c, "resume"); err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.Update(c.Request.Context(), userID, input)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", h.view(profile, false))
}

func (h *ProfileHandler) view(p *domain.ProfileWithUser, editing bool) ProfileView {
	v := ProfileView{
		Profile:    p,
		IsEditing:  editing,
		SkillInput: skills.Denormalize(p.Skills),
		Choices: ProfileChoices{
			Genders:         domain.GenderChoices,
			Educations:      domain.EducationChoices,
			WorkExperiences: domain.WorkExperienceChoices,
		},
	}
	if p.DateOfBirth != nil {
		v.DOB = p.DateOfBirth.Format("2006-01-02")
	}
	if p.Photo != "" {
		v.PhotoURL = h.files.URL(p.Photo)
	}
	if p.Resume != "" {
		v.ResumeURL = h.files.URL(p.Resume)
	}
	return v
}

// readUpload returns nil when the field was not submitted.
func readUpload(c *gin.Context, field string) (*domain.UploadedFile, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Could not read %s upload", field))
	}
	data, err := readPart(header)
	if err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Could not read %s upload", field))
	}
	return &domain.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
