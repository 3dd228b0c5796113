package domain

import (
	"context"
	"strings"
	"time"
)

// Choice is a selectable enum value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Gender is either male, female or unset. Unset is stored as NULL.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var GenderChoices = []Choice{
	{Value: string(GenderMale), Label: "Male"},
	{Value: string(GenderFemale), Label: "Female"},
}

// ParseGender maps submitted text onto a Gender. Any value outside the two
// choices becomes GenderUnset.
func ParseGender(s string) Gender {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g
	default:
		return GenderUnset
	}
}

func (g Gender) IsSet() bool { return g != GenderUnset }

type Education string

const (
	EducationNone       Education = ""
	EducationHighSchool Education = "highschool"
	EducationDiploma    Education = "diploma"
	EducationBachelors  Education = "bachelors"
	EducationMasters    Education = "masters"
	EducationPhD        Education = "phd"
)

var EducationChoices = []Choice{
	{Value: string(EducationHighSchool), Label: "High School"},
	{Value: string(EducationDiploma), Label: "Diploma"},
	{Value: string(EducationBachelors), Label: "Bachelor's"},
	{Value: string(EducationMasters), Label: "Master's"},
	{Value: string(EducationPhD), Label: "PhD"},
}

// ParseEducation accepts a known code or the empty string.
func ParseEducation(s string) (Education, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EducationNone, true
	}
	for _, c := range EducationChoices {
		if c.Value == s {
			return Education(s), true
		}
	}
	return EducationNone, false
}

type WorkExperience string

const (
	WorkExperienceFresher     WorkExperience = "fresher"
	WorkExperienceOneToTwo    WorkExperience = "1-2 years"
	WorkExperienceThreeToFive WorkExperience = "3-5 years"
	WorkExperienceFivePlus    WorkExperience = "5+ years"
)

var WorkExperienceChoices = []Choice{
	{Value: string(WorkExperienceFresher), Label: "Fresher"},
	{Value: string(WorkExperienceOneToTwo), Label: "1-2 Years"},
	{Value: string(WorkExperienceThreeToFive), Label: "3-5 Years"},
	{Value: string(WorkExperienceFivePlus), Label: "5+ Years"},
}

// ParseWorkExperience accepts a known code. Empty input means fresher.
func ParseWorkExperience(s string) (WorkExperience, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WorkExperienceFresher, true
	}
	for _, c := range WorkExperienceChoices {
		if c.Value == s {
			return WorkExperience(s), true
		}
	}
	return "", false
}

// Profile holds the professional details of exactly one user.
// Photo and Resume are storage references, not URLs.
type Profile struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	Gender         Gender         `json:"gender"`
	DateOfBirth    *time.Time     `json:"dob,omitempty"`
	Education      Education      `json:"education"`
	WorkExperience WorkExperience `json:"work_experience"`
	Skills         []string       `json:"skills"`
	Photo          string         `json:"photo,omitempty"`
	Resume         string         `json:"resume,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ProfileWithUser is a profile joined with its owner.
type ProfileWithUser struct {
	Profile
	User User `json:"user"`
}

// UploadedFile is a file part read fully into memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileUpdateInput is the profile edit form. DOB uses YYYY-MM-DD.
// Skills, when non-nil, replaces SkillInput as the source of the new skill list.
type ProfileUpdateInput struct {
	Name           string   `form:"name" validate:"required,max=100,valid_name,no_emoji"`
	Email          string   `form:"email" validate:"required,email,max=254"`
	MobileNo       string   `form:"mobile_no" validate:"required,valid_mobile"`
	Gender         string   `form:"gender" validate:"required"`
	DOB            string   `form:"dob" validate:"omitempty,datetime=2006-01-02,past_date"`
	Education      string   `form:"education"`
	WorkExperience string   `form:"work_experience"`
	SkillInput     string   `form:"skill_input"`
	Skills         []string `form:"skills[]"`

	Photo  *UploadedFile `form:"-"`
	Resume *UploadedFile `form:"-"`
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*Profile, error)
	// GetOrCreate returns the user's profile, inserting a default one first if needed.
	GetOrCreate(ctx context.Context, userID int64) (*Profile, error)
	// UpdateWithUser writes both records in one transaction.
	UpdateWithUser(ctx context.Context, profile *Profile, user *User) error
	// List returns profiles matching the scalar parts of filter, ordered by id.
	List(ctx context.Context, filter ProfileFilter, loc *time.Location) ([]ProfileWithUser, error)
	DistinctSkills(ctx context.Context) ([]string, error)
}

// FileStorage persists uploaded blobs and hands back a reference to them.
type FileStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

type ProfileUsecase interface {
	GetOrCreate(ctx context.Context, userID int64) (*ProfileWithUser, error)
	Update(ctx context.Context, userID int64, input ProfileUpdateInput) (*ProfileWithUser, error)
}
