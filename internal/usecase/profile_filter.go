package usecase

import (
	"strings"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/skills"
)

// FilterProfiles keeps the profiles matching every criterion of f. Input
// order is preserved and the result never aliases the input slice.
func FilterProfiles(profiles []domain.ProfileWithUser, f domain.ProfileFilter, loc *time.Location) []domain.ProfileWithUser {
	out := make([]domain.ProfileWithUser, 0, len(profiles))
	for _, p := range profiles {
		if MatchesFilter(&p.Profile, f, loc) {
			out = append(out, p)
		}
	}
	return out
}

// MatchesFilter reports whether p satisfies all present criteria.
func MatchesFilter(p *domain.Profile, f domain.ProfileFilter, loc *time.Location) bool {
	if f.Gender != "" && !strings.EqualFold(string(p.Gender), f.Gender) {
		return false
	}
	if f.Education != "" && !containsFold(string(p.Education), f.Education) {
		return false
	}
	if f.WorkExperience != "" && !containsFold(string(p.WorkExperience), f.WorkExperience) {
		return false
	}
	if f.CreatedAfter != nil && domain.CalendarDay(p.CreatedAt, loc).Before(domain.CalendarDay(*f.CreatedAfter, loc)) {
		return false
	}
	return skills.ContainsAll(p.Skills, f.RequiredSkills)
}

func containsFold(s, substr string) bool {
	return strings.Contains(skills.Fold(s), skills.Fold(substr))
}
