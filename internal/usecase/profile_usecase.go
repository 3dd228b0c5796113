package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/audit"
	"go-profile-portal/pkg/events"
	"go-profile-portal/pkg/logger"
	"go-profile-portal/pkg/metrics"
	"go-profile-portal/pkg/scan"
	"go-profile-portal/pkg/skills"
	"go-profile-portal/pkg/storage"
	"go-profile-portal/pkg/validation"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProfileConfig bounds uploads handled by the profile usecase.
type ProfileConfig struct {
	MaxUploadBytes    int64
	PhotoMaxDimension int
	PhotoQuality      int
	// Scanner screens uploads before they are stored. Nil disables scanning.
	Scanner scan.Scanner
	// Events receives a ProfileUpdated after each committed edit. Nil disables.
	Events events.Publisher
}

type profileUsecase struct {
	profiles domain.ProfileRepository
	users    domain.UserRepository
	files    domain.FileStorage
	validate *validator.Validate
	cfg      ProfileConfig
	audit    *audit.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewProfileUsecase(
	profiles domain.ProfileRepository,
	users domain.UserRepository,
	files domain.FileStorage,
	validate *validator.Validate,
	cfg ProfileConfig,
	auditLog *audit.Logger,
	m *metrics.Metrics,
) domain.ProfileUsecase {
	if cfg.PhotoQuality <= 0 {
		cfg.PhotoQuality = 85
	}
	if auditLog == nil {
		auditLog = audit.Default()
	}
	return &profileUsecase{
		profiles: profiles,
		users:    users,
		files:    files,
		validate: validate,
		cfg:      cfg,
		audit:    auditLog,
		metrics:  m,
		now:      time.Now,
	}
}

func (u *profileUsecase) GetOrCreate(ctx context.Context, userID int64) (*domain.ProfileWithUser, error) {
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.ProfileWithUser{Profile: *profile, User: *user}, nil
}

// pendingFile is an upload that passed validation and awaits storage.
type pendingFile struct {
	field       string
	key         string
	data        []byte
	contentType string
}

func (u *profileUsecase) Update(ctx context.Context, userID int64, input domain.ProfileUpdateInput) (*domain.ProfileWithUser, error) {
	result, err := u.update(ctx, userID, input)
	u.metrics.ObserveProfileUpdate(err == nil)
	return result, err
}

func (u *profileUsecase) update(ctx context.Context, userID int64, input domain.ProfileUpdateInput) (*domain.ProfileWithUser, error) {
	// 1. Everything that can be checked without the database
	fields := map[string]string{}
	if err := u.validate.Struct(input); err != nil {
		mergeFields(fields, validation.FieldErrors(err))
	}

	education, ok := domain.ParseEducation(input.Education)
	if !ok {
		fields["education"] = invalidChoice(input.Education)
	}
	workExperience, ok := domain.ParseWorkExperience(input.WorkExperience)
	if !ok {
		fields["work_experience"] = invalidChoice(input.WorkExperience)
	}

	photo, err := u.preparePhoto(input.Photo)
	if err != nil {
		fields["photo"] = err.Error()
	}
	resume, err := u.prepareResume(input.Resume)
	if err != nil {
		fields["resume"] = err.Error()
	}

	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	if err := u.scanUploads(ctx, userID, photo, resume); err != nil {
		return nil, err
	}

	// 2. Checks against stored state
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if !strings.EqualFold(email, user.Email) {
		other, err := u.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if other != nil && other.ID != user.ID {
			return nil, apperror.Validation(map[string]string{"email": msgEmailTaken})
		}
	}

	current, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. Build the new state
	next := *current
	next.Gender = domain.ParseGender(input.Gender)
	next.Education = education
	next.WorkExperience = workExperience
	next.DateOfBirth = nil
	if input.DOB != "" {
		dob, _ := time.Parse("2006-01-02", input.DOB)
		next.DateOfBirth = &dob
	}
	if input.Skills != nil {
		next.Skills = skills.Clean(input.Skills)
	} else {
		next.Skills = skills.Normalize(input.SkillInput)
	}

	nextUser := *user
	nextUser.Name = strings.TrimSpace(input.Name)
	nextUser.Email = email
	nextUser.MobileNo = input.MobileNo

	// 4. Blobs first, then one transaction for both rows
	var stored []string
	for _, pf := range []*pendingFile{photo, resume} {
		if pf == nil {
			continue
		}
		ref, err := u.files.Save(ctx, pf.key, pf.data, pf.contentType)
		if err != nil {
			u.discard(ctx, stored)
			return nil, apperror.Internal(fmt.Errorf("store upload: %w", err))
		}
		stored = append(stored, ref)
		if pf == photo {
			next.Photo = ref
		} else {
			next.Resume = ref
		}
	}

	if err := u.profiles.UpdateWithUser(ctx, &next, &nextUser); err != nil {
		u.discard(ctx, stored)
		if isConflict(err) {
			return nil, apperror.Validation(map[string]string{"email": msgEmailTaken})
		}
		return nil, err
	}

	// 5. Replaced blobs are only removed once the new references are committed
	var replaced []string
	if photo != nil && current.Photo != "" && current.Photo != next.Photo {
		replaced = append(replaced, current.Photo)
	}
	if resume != nil && current.Resume != "" && current.Resume != next.Resume {
		replaced = append(replaced, current.Resume)
	}
	u.discard(ctx, replaced)

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventProfileUpdated,
		SubjectType:  "user_id",
		SubjectValue: fmt.Sprint(userID),
	})
	u.publishUpdated(ctx, &next)
	return &domain.ProfileWithUser{Profile: next, User: nextUser}, nil
}

// publishUpdated is best effort; the edit is already committed.
func (u *profileUsecase) publishUpdated(ctx context.Context, p *domain.Profile) {
	if u.cfg.Events == nil {
		return
	}
	err := u.cfg.Events.Publish(ctx, fmt.Sprint(p.UserID), events.ProfileUpdated{
		UserID:         p.UserID,
		ProfileID:      p.ID,
		Gender:         string(p.Gender),
		Education:      string(p.Education),
		WorkExperience: string(p.WorkExperience),
		Skills:         p.Skills,
		HasPhoto:       p.Photo != "",
		HasResume:      p.Resume != "",
		OccurredAt:     u.now().UTC(),
	})
	if err != nil {
		logger.Log.Warn("failed to publish profile event", "user_id", p.UserID, "error", err)
	}
}

func (u *profileUsecase) loadUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (u *profileUsecase) preparePhoto(f *domain.UploadedFile) (*pendingFile, error) {
	if f == nil {
		return nil, nil
	}
	if err := storage.ValidateUpload(storage.KindPhoto, f.Filename, f.Data, u.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	// Photos are always re-encoded, which also rejects undecodable files
	data, err := storage.CompressImage(f.Data, u.cfg.PhotoMaxDimension, u.cfg.PhotoQuality)
	if err != nil {
		return nil, storage.ErrInvalidImage
	}
	return &pendingFile{
		field:       "photo",
		key:         storage.NewKey(storage.KindPhoto, ".jpg"),
		data:        data,
		contentType: "image/jpeg",
	}, nil
}

func (u *profileUsecase) prepareResume(f *domain.UploadedFile) (*pendingFile, error) {
	if f == nil {
		return nil, nil
	}
	if err := storage.ValidateUpload(storage.KindResume, f.Filename, f.Data, u.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	return &pendingFile{
		field:       "resume",
		key:         storage.NewKey(storage.KindResume, filepath.Ext(f.Filename)),
		data:        f.Data,
		contentType: storage.ContentType(f.Data),
	}, nil
}

// scanUploads rejects infected files. A scanner failure also rejects the
// upload since the content could not be checked.
func (u *profileUsecase) scanUploads(ctx context.Context, userID int64, files ...*pendingFile) error {
	if u.cfg.Scanner == nil {
		return nil
	}
	fields := map[string]string{}
	for _, pf := range files {
		if pf == nil {
			continue
		}
		verdict, err := u.cfg.Scanner.Scan(ctx, pf.key, pf.data)
		switch {
		case err != nil:
			logger.Log.Error("upload scan failed", "scanner", u.cfg.Scanner.Name(), "field", pf.field, "error", err)
			fields[pf.field] = "The file could not be checked right now. Please try again later."
		case verdict.Infected:
			u.audit.Log(ctx, audit.Event{
				Event:        audit.EventUploadRejected,
				SubjectType:  "user_id",
				SubjectValue: fmt.Sprint(userID),
				Fields:       []zap.Field{zap.String("field", pf.field), zap.String("threat", verdict.Threat)},
			})
			fields[pf.field] = "The uploaded file was rejected by the malware scanner."
		}
	}
	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

// discard removes blobs on a best-effort basis.
func (u *profileUsecase) discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := u.files.Delete(ctx, ref); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Warn("failed to delete stored file", "ref", ref, "error", err)
		}
	}
}

func invalidChoice(value string) string {
	return fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value)
}
