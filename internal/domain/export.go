package domain

import (
	"context"
	"strings"
	"time"

	"go-profile-portal/pkg/skills"
)

// ExportColumns is the fixed header row of a profile export.
var ExportColumns = []string{
	"Name", "Email", "Mobile", "Gender", "Education", "Work Experience", "Skills", "Created At",
}

const (
	ExportSheetName = "Profiles"
	ExportFilename  = "filtered_profiles.xlsx"
	ExportMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ProfileFilter is a conjunction of optional predicates. Zero values impose
// no constraint.
type ProfileFilter struct {
	Gender         string
	Education      string
	WorkExperience string
	// CreatedAfter is a calendar date. Profiles created on that date or later pass.
	CreatedAfter *time.Time
	// RequiredSkills holds lowercase tokens that must all be present.
	RequiredSkills []string
}

// CreatedAfterInstant is the first instant of the CreatedAfter date in loc.
func (f ProfileFilter) CreatedAfterInstant(loc *time.Location) (time.Time, bool) {
	if f.CreatedAfter == nil {
		return time.Time{}, false
	}
	return CalendarDay(*f.CreatedAfter, loc), true
}

// CalendarDay truncates t to midnight of its date as seen in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ExportQuery is the raw query string of the export page. It is echoed back
// as the selected filters.
type ExportQuery struct {
	Gender         string `form:"gender" json:"gender"`
	Education      string `form:"education" json:"education"`
	WorkExperience string `form:"work_experience" json:"work_experience"`
	CreatedDate    string `form:"created_date" json:"created_date"`
	Skills         string `form:"skills" json:"skills"`
	Download       string `form:"download" json:"-"`
}

// Filter converts the query into a ProfileFilter. Choice values are used as
// given, without trimming. A created_date that is not YYYY-MM-DD is ignored.
func (q ExportQuery) Filter(loc *time.Location) ProfileFilter {
	f := ProfileFilter{
		Gender:         q.Gender,
		Education:      q.Education,
		WorkExperience: q.WorkExperience,
		RequiredSkills: skills.ParseRequired(q.Skills),
	}
	if d := strings.TrimSpace(q.CreatedDate); d != "" {
		if t, err := time.ParseInLocation("2006-01-02", d, loc); err == nil {
			f.CreatedAfter = &t
		}
	}
	return f
}

func (q ExportQuery) WantsDownload() bool { return q.Download == "1" }

// ProfileFilterOptions lists the choices offered by the export page.
type ProfileFilterOptions struct {
	Genders         []Choice `json:"genders"`
	Educations      []Choice `json:"educations"`
	WorkExperiences []Choice `json:"work_experiences"`
	Skills          []string `json:"skills"`
}

type ExportUsecase interface {
	ListProfiles(ctx context.Context, actor *User, filter ProfileFilter) ([]ProfileWithUser, error)
	// ExportProfiles returns the workbook bytes and the number of data rows.
	ExportProfiles(ctx context.Context, actor *User, filter ProfileFilter) ([]byte, int, error)
	FilterOptions(ctx context.Context, actor *User) (*ProfileFilterOptions, error)
}
