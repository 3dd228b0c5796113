package usecase_test

import (
	"testing"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/internal/usecase"
	"go-profile-portal/pkg/skills"

	"github.com/stretchr/testify/assert"
)

var utc = time.UTC

func profileOf(id int64, gender domain.Gender, edu domain.Education, exp domain.WorkExperience, created time.Time, skillList ...string) domain.ProfileWithUser {
	if skillList == nil {
		skillList = []string{}
	}
	return domain.ProfileWithUser{
		Profile: domain.Profile{
			ID:             id,
			UserID:         id,
			Gender:         gender,
			Education:      edu,
			WorkExperience: exp,
			Skills:         skillList,
			CreatedAt:      created,
		},
		User: domain.User{ID: id},
	}
}

func ids(profiles []domain.ProfileWithUser) []int64 {
	out := make([]int64, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, utc)
	return &t
}

func corpus() []domain.ProfileWithUser {
	jan := time.Date(2024, 1, 15, 10, 0, 0, 0, utc)
	return []domain.ProfileWithUser{
		profileOf(1, domain.GenderMale, domain.EducationBachelors, domain.WorkExperienceFresher, jan, "java", "sql"),
		profileOf(2, domain.GenderFemale, domain.EducationMasters, domain.WorkExperienceThreeToFive, jan.AddDate(0, 1, 0), "python"),
		profileOf(3, domain.GenderUnset, domain.EducationBachelors, domain.WorkExperienceOneToTwo, jan.AddDate(0, 2, 0), "Java", "Python", "SQL"),
		profileOf(4, domain.GenderFemale, domain.EducationNone, domain.WorkExperienceFivePlus, jan.AddDate(0, 3, 0)),
	}
}

func TestFilterProfiles(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.ProfileFilter
		want   []int64
	}{
		{"no criteria keeps all", domain.ProfileFilter{}, []int64{1, 2, 3, 4}},
		{"gender is case-insensitive exact", domain.ProfileFilter{Gender: "FEMALE"}, []int64{2, 4}},
		{"gender never matches unset", domain.ProfileFilter{Gender: "male"}, []int64{1}},
		{"education alone", domain.ProfileFilter{Education: "bachelors"}, []int64{1, 3}},
		{"education substring", domain.ProfileFilter{Education: "MAST"}, []int64{2}},
		{"experience substring", domain.ProfileFilter{WorkExperience: "years"}, []int64{2, 3, 4}},
		{"created on or after", domain.ProfileFilter{CreatedAfter: date(2024, 3, 15)}, []int64{3, 4}},
		{"required skill", domain.ProfileFilter{RequiredSkills: []string{"java"}}, []int64{1, 3}},
		{"all required skills", domain.ProfileFilter{RequiredSkills: []string{"python", "sql"}}, []int64{3}},
		{"conjunction", domain.ProfileFilter{Education: "bachelors", RequiredSkills: []string{"python"}}, []int64{3}},
		{"no skills fails a requirement", domain.ProfileFilter{Gender: "female", RequiredSkills: []string{"go"}}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.FilterProfiles(corpus(), tt.filter, utc)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterRequiredSkillScenario(t *testing.T) {
	now := time.Now()
	a := profileOf(1, domain.GenderMale, "", domain.WorkExperienceFresher, now, "java", "sql")
	b := profileOf(2, domain.GenderMale, "", domain.WorkExperienceFresher, now, "python")

	got := usecase.FilterProfiles([]domain.ProfileWithUser{a, b}, domain.ProfileFilter{RequiredSkills: skills.ParseRequired("java")}, utc)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilterEmptySkillTokensMeanNoConstraint(t *testing.T) {
	f := domain.ExportQuery{Skills: " , ,"}.Filter(utc)
	assert.Empty(t, f.RequiredSkills)
	assert.Len(t, usecase.FilterProfiles(corpus(), f, utc), 4)
}

func TestFilterCreatedAfterIsInclusive(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 2024-03-01 00:30 local is 2024-02-29 19:30 UTC
	p := profileOf(1, "", "", domain.WorkExperienceFresher, time.Date(2024, 2, 29, 19, 30, 0, 0, utc))
	boundary := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)

	got := usecase.FilterProfiles([]domain.ProfileWithUser{p}, domain.ProfileFilter{CreatedAfter: &boundary}, loc)
	assert.Equal(t, []int64{1}, ids(got))

	next := boundary.AddDate(0, 0, 1)
	got = usecase.FilterProfiles([]domain.ProfileWithUser{p}, domain.ProfileFilter{CreatedAfter: &next}, loc)
	assert.Empty(t, got)

	instant, ok := domain.ProfileFilter{CreatedAfter: &boundary}.CreatedAfterInstant(loc)
	assert.True(t, ok)
	assert.True(t, instant.Equal(time.Date(2024, 2, 29, 19, 0, 0, 0, utc)))
}

func TestFilterPropertiesSubsetOrderMonotonic(t *testing.T) {
	all := corpus()
	requirements := [][]string{{}, {"sql"}, {"sql", "java"}, {"sql", "java", "python"}, {"sql", "java", "python", "rust"}}

	prev := len(all) + 1
	for _, req := range requirements {
		got := usecase.FilterProfiles(all, domain.ProfileFilter{RequiredSkills: req}, utc)

		// Subset of input, in input order
		pos := -1
		for _, p := range got {
			idx := int(p.ID) - 1
			assert.Greater(t, idx, pos)
			assert.Equal(t, all[idx].ID, p.ID)
			pos = idx
		}

		assert.LessOrEqual(t, len(got), prev, "adding %v grew the result", req)
		prev = len(got)
	}
}

func TestExportQueryFilter(t *testing.T) {
	f := domain.ExportQuery{
		Gender:      "male",
		CreatedDate: "2024-05-01",
		Skills:      "Go, SQL",
	}.Filter(utc)

	assert.Equal(t, "male", f.Gender)
	assert.Equal(t, []string{"go", "sql"}, f.RequiredSkills)
	if assert.NotNil(t, f.CreatedAfter) {
		assert.Equal(t, "2024-05-01", f.CreatedAfter.Format("2006-01-02"))
	}

	bad := domain.ExportQuery{CreatedDate: "yesterday"}.Filter(utc)
	assert.Nil(t, bad.CreatedAfter)
}

func TestExportQueryKeepsPaddedValues(t *testing.T) {
	q := domain.ExportQuery{Gender: " male", Education: "bachelors ", WorkExperience: " fresher"}
	f := q.Filter(utc)

	assert.Equal(t, " male", f.Gender)
	assert.Equal(t, "bachelors ", f.Education)
	assert.Equal(t, " fresher", f.WorkExperience)

	// Padded values are compared as given, so nothing matches
	assert.Empty(t, usecase.FilterProfiles(corpus(), domain.ProfileFilter{Gender: f.Gender}, utc))
	assert.Empty(t, usecase.FilterProfiles(corpus(), domain.ProfileFilter{Education: f.Education}, utc))
	assert.Empty(t, usecase.FilterProfiles(corpus(), domain.ProfileFilter{WorkExperience: f.WorkExperience}, utc))
}

func TestFilterProfilesNonASCIISkills(t *testing.T) {
	jan := time.Date(2024, 1, 15, 10, 0, 0, 0, utc)
	profiles := []domain.ProfileWithUser{
		profileOf(1, domain.GenderMale, domain.EducationBachelors, domain.WorkExperienceFresher, jan, "ΣQL", "Go"),
		profileOf(2, domain.GenderMale, domain.EducationBachelors, domain.WorkExperienceFresher, jan, "SQL"),
	}

	got := usecase.FilterProfiles(profiles, domain.ProfileFilter{RequiredSkills: skills.ParseRequired("σql")}, utc)
	assert.Equal(t, []int64{1}, ids(got))
}
