package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/audit"
	"go-profile-portal/pkg/metrics"
	"go-profile-portal/pkg/skills"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type exportUsecase struct {
	repo    domain.ProfileRepository
	loc     *time.Location
	audit   *audit.Logger
	metrics *metrics.Metrics
}

// NewExportUsecase creates the staff-only listing and export usecase.
// Dates are evaluated in loc.
func NewExportUsecase(repo domain.ProfileRepository, loc *time.Location, auditLog *audit.Logger, m *metrics.Metrics) domain.ExportUsecase {
	if loc == nil {
		loc = time.Local
	}
	if auditLog == nil {
		auditLog = audit.Default()
	}
	return &exportUsecase{repo: repo, loc: loc, audit: auditLog, metrics: m}
}

func (u *exportUsecase) ListProfiles(ctx context.Context, actor *domain.User, filter domain.ProfileFilter) ([]domain.ProfileWithUser, error) {
	if err := u.requireStaff(ctx, actor); err != nil {
		return nil, err
	}

	// The repository narrows by the scalar criteria, skills are matched here
	candidates, err := u.repo.List(ctx, filter, u.loc)
	if err != nil {
		return nil, err
	}
	return FilterProfiles(candidates, filter, u.loc), nil
}

func (u *exportUsecase) ExportProfiles(ctx context.Context, actor *domain.User, filter domain.ProfileFilter) ([]byte, int, error) {
	profiles, err := u.ListProfiles(ctx, actor, filter)
	if err != nil {
		return nil, 0, err
	}

	data, err := WriteProfilesWorkbook(profiles, u.loc)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	u.metrics.ObserveExport(len(profiles))
	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventProfilesExported,
		SubjectType:  "user_id",
		SubjectValue: fmt.Sprint(actor.ID),
		Fields:       []zap.Field{zap.Int("rows", len(profiles))},
	})
	return data, len(profiles), nil
}

func (u *exportUsecase) FilterOptions(ctx context.Context, actor *domain.User) (*domain.ProfileFilterOptions, error) {
	if err := u.requireStaff(ctx, actor); err != nil {
		return nil, err
	}

	all, err := u.repo.DistinctSkills(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ProfileFilterOptions{
		Genders:         domain.GenderChoices,
		Educations:      domain.EducationChoices,
		WorkExperiences: domain.WorkExperienceChoices,
		Skills:          all,
	}, nil
}

func (u *exportUsecase) requireStaff(ctx context.Context, actor *domain.User) error {
	if actor == nil {
		return apperror.Unauthorized("Authentication required")
	}
	if !actor.IsStaff || !actor.IsActive {
		u.audit.Log(ctx, audit.Event{
			Event:        audit.EventAccessDenied,
			SubjectType:  "user_id",
			SubjectValue: fmt.Sprint(actor.ID),
		})
		return apperror.Forbidden("You do not have permission to access this page.")
	}
	return nil
}

// ProfileRow renders one export row in ExportColumns order.
func ProfileRow(p domain.ProfileWithUser, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	return []string{
		p.User.Name,
		p.User.Email,
		p.User.MobileNo,
		string(p.Gender),
		string(p.Education),
		string(p.WorkExperience),
		skills.Denormalize(p.Skills),
		p.CreatedAt.In(loc).Format("2006-01-02"),
	}
}

// WriteProfilesWorkbook renders profiles as an xlsx document with a single
// "Profiles" sheet: one header row, then one row per profile.
func WriteProfilesWorkbook(profiles []domain.ProfileWithUser, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := domain.ExportSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range domain.ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(domain.ExportColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	// Cells are written as strings so mobile numbers keep leading zeros
	for rowIdx, p := range profiles {
		for colIdx, value := range ProfileRow(p, loc) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+1, err)
			}
		}
	}

	for i := range domain.ExportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
