package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/skills"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const profileColumns = `p.id, p.user_id, COALESCE(p.gender, ''), p.dob, p.education, p.work_experience,
	p.skills, COALESCE(p.photo, ''), COALESCE(p.resume, ''), p.created_at`

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.user_id = $1`
	var p domain.Profile
	if err := r.db.QueryRow(ctx, query, userID).Scan(profileDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	normalizeSkills(&p)
	return &p, nil
}

func (r *profileRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.Profile, error) {
	// Concurrent first visits race on the unique user_id; the loser inserts nothing
	_, err := r.db.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	p, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return p, nil
}

func (r *profileRepo) UpdateWithUser(ctx context.Context, p *domain.Profile, u *domain.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	profileQuery := `
		UPDATE profiles SET
			gender = $2, dob = $3, education = $4, work_experience = $5,
			skills = $6, photo = $7, resume = $8
		WHERE id = $1`
	tag, err := tx.Exec(ctx, profileQuery,
		p.ID, nullIfEmpty(string(p.Gender)), p.DateOfBirth, p.Education, p.WorkExperience,
		pq.Array(p.Skills), nullIfEmpty(p.Photo), nullIfEmpty(p.Resume),
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}

	userQuery := `UPDATE users SET name = $2, email = $3, mobile_no = $4 WHERE id = $1`
	if _, err := tx.Exec(ctx, userQuery, u.ID, u.Name, u.Email, u.MobileNo); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *profileRepo) List(ctx context.Context, filter domain.ProfileFilter, loc *time.Location) ([]domain.ProfileWithUser, error) {
	query, args := buildListQuery(filter, loc)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.ProfileWithUser{}
	for rows.Next() {
		var pw domain.ProfileWithUser
		dest := append(profileDest(&pw.Profile),
			&pw.User.ID, &pw.User.Email, &pw.User.Name, &pw.User.MobileNo, &pw.User.WorkStatus,
			&pw.User.IsActive, &pw.User.IsStaff, &pw.User.DateJoined,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		normalizeSkills(&pw.Profile)
		profiles = append(profiles, pw)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) DistinctSkills(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT s FROM profiles, UNNEST(skills) AS s`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var raw []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		raw = append(raw, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return foldDistinct(raw), nil
}

// foldDistinct lowercases with the same folding the filter uses, then
// dedupes and sorts.
func foldDistinct(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := []string{}
	for _, s := range raw {
		f := skills.Fold(s)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// buildListQuery pushes the scalar criteria of filter into SQL. Required
// skills are left to the caller: LOWER only folds ASCII under the C collation.
// Rows come back in primary key order.
func buildListQuery(filter domain.ProfileFilter, loc *time.Location) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Gender != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(COALESCE(p.gender, '')) = LOWER($%d)", argIndex))
		args = append(args, filter.Gender)
		argIndex++
	}
	if filter.Education != "" {
		conditions = append(conditions, fmt.Sprintf(`p.education ILIKE $%d ESCAPE '\'`, argIndex))
		args = append(args, "%"+escapeLike(filter.Education)+"%")
		argIndex++
	}
	if filter.WorkExperience != "" {
		conditions = append(conditions, fmt.Sprintf(`p.work_experience ILIKE $%d ESCAPE '\'`, argIndex))
		args = append(args, "%"+escapeLike(filter.WorkExperience)+"%")
		argIndex++
	}
	if since, ok := filter.CreatedAfterInstant(loc); ok {
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", argIndex))
		args = append(args, since)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			u.id, u.email, u.name, u.mobile_no, u.work_status, u.is_active, u.is_staff, u.date_joined
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		%s
		ORDER BY p.id`, profileColumns, whereClause)
	return query, args
}

func profileDest(p *domain.Profile) []interface{} {
	return []interface{}{
		&p.ID, &p.UserID, &p.Gender, &p.DateOfBirth, &p.Education, &p.WorkExperience,
		pq.Array(&p.Skills), &p.Photo, &p.Resume, &p.CreatedAt,
	}
}

func normalizeSkills(p *domain.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
