package service

import (
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/repository"
	"classtrack/attendance-app/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPresetNotFound       = errors.New("preset not found")
	ErrConfirmationRequired = errors.New("applying a preset replaces the current timetable and resets attendance; confirm with force")
	ErrArchiveNotFound      = errors.New("no archived snapshot exists for this user")
)

// PresetService seeds and replaces a user's timetable from reusable
// templates. Applying a preset is destructive: the previous attendance
// sheet is archived to object storage and then reset, so no ledger entry
// can outlive the subjects of a template it no longer belongs to.
type PresetService interface {
	ListPresets(ctx context.Context) ([]domain.Preset, error)
	ApplyPreset(ctx context.Context, userID, presetID primitive.ObjectID, force bool) (*domain.WeeklyTimetable, error)
	ArchiveDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error)
}

type presetService struct {
	presetRepo     repository.PresetRepository
	timetableRepo  repository.TimetableRepository
	attendanceRepo repository.AttendanceRepository
	tx             repository.TxRunner
	archiver       storage.LedgerArchiver
	now            func() time.Time
}

// NewPresetService creates a new instance of presetService.
func NewPresetService(
	presetRepo repository.PresetRepository,
	timetableRepo repository.TimetableRepository,
	attendanceRepo repository.AttendanceRepository,
	tx repository.TxRunner,
	archiver storage.LedgerArchiver,
) PresetService {
	return &presetService{
		presetRepo:     presetRepo,
		timetableRepo:  timetableRepo,
		attendanceRepo: attendanceRepo,
		tx:             tx,
		archiver:       archiver,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ListPresets returns the available templates.
func (s *presetService) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	return s.presetRepo.List(ctx)
}

// ApplyPreset replaces the user's timetable wholesale with the preset and
// resets the attendance sheet, seeding an empty ledger for every subject
// the new timetable names. A user who already has a timetable must pass
// force; without it the call fails so the caller can confirm.
func (s *presetService) ApplyPreset(ctx context.Context, userID, presetID primitive.ObjectID, force bool) (*domain.WeeklyTimetable, error) {
	preset, err := s.presetRepo.GetByID(ctx, presetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPresetNotFound
		}
		return nil, err
	}

	_, err = s.timetableRepo.GetByUserID(ctx, userID)
	hasTimetable := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if hasTimetable && !force {
		return nil, ErrConfirmationRequired
	}

	// Snapshot the outgoing ledger before it is destroyed. Best effort:
	// archive storage being down should not block a confirmed apply.
	archiveKey := s.archiveSheet(ctx, userID)

	now := s.now()
	timetable := preset.Instantiate(userID, now)
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.attendanceRepo.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.timetableRepo.Replace(ctx, timetable); err != nil {
			return err
		}
		fresh := &domain.AttendanceSheet{UserID: userID, LastArchiveKey: archiveKey}
		for _, name := range timetable.SubjectNames() {
			fresh.EnsureSubject(name)
		}
		return s.attendanceRepo.Save(ctx, fresh)
	})
	if err != nil {
		return nil, err
	}
	return timetable, nil
}

// archiveSheet snapshots the user's current sheet to object storage and
// returns the object key, or "" when there was nothing to archive or the
// archive write failed.
func (s *presetService) archiveSheet(ctx context.Context, userID primitive.ObjectID) string {
	sheet, err := s.attendanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("WARN: could not load sheet for archival (user %s): %v", userID.Hex(), err)
		}
		return ""
	}
	if len(sheet.Subjects) == 0 {
		return ""
	}

	data, err := json.Marshal(sheet)
	if err != nil {
		log.Printf("WARN: could not encode sheet for archival (user %s): %v", userID.Hex(), err)
		return ""
	}
	key := path.Join("archives", userID.Hex(),
		fmt.Sprintf("%s-%s.json", s.now().Format("20060102T150405"), uuid.NewString()))
	if err := s.archiver.PutSnapshot(ctx, key, data); err != nil {
		log.Printf("WARN: ledger archive failed (user %s): %v", userID.Hex(), err)
		return ""
	}
	log.Printf("INFO: archived attendance sheet for user %s to %s", userID.Hex(), key)
	return key
}

// ArchiveDownloadURL returns a presigned URL for the user's most recent
// ledger snapshot.
func (s *presetService) ArchiveDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	sheet, err := s.attendanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrArchiveNotFound
		}
		return "", err
	}
	if sheet.LastArchiveKey == "" {
		return "", ErrArchiveNotFound
	}
	return s.archiver.GeneratePresignedDownloadURL(ctx, sheet.LastArchiveKey, storage.DefaultPresignedURLExpiry)
}
