package service

import (
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TodayEntry pairs a scheduled period with its ledger occurrence for
// today, if one has been recorded. A nil Occurrence means the day has not
// been started for that slot yet.
type TodayEntry struct {
	Period     domain.Period      `json:"period"`
	Occurrence *domain.Occurrence `json:"occurrence,omitempty"`
}

// SubjectAttendance is one row of the attendance summary.
type SubjectAttendance struct {
	SubjectName string  `json:"subjectName"`
	Happened    int     `json:"happened"`
	Attended    int     `json:"attended"`
	Percentage  float64 `json:"percentage"`
}

// QueryService answers the read-side questions: what does today look
// like, and what is my attendance. It never mutates persisted state.
type QueryService interface {
	GetTodaySchedule(ctx context.Context, userID primitive.ObjectID) ([]TodayEntry, error)
	GetTimetable(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklyTimetable, error)
	GetAttendanceSummary(ctx context.Context, userID primitive.ObjectID, from, till *time.Time) ([]SubjectAttendance, error)
}

type queryService struct {
	timetableRepo  repository.TimetableRepository
	attendanceRepo repository.AttendanceRepository
	now            func() time.Time
}

// NewQueryService creates a new instance of queryService.
func NewQueryService(
	timetableRepo repository.TimetableRepository,
	attendanceRepo repository.AttendanceRepository,
) QueryService {
	return &queryService{
		timetableRepo:  timetableRepo,
		attendanceRepo: attendanceRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// GetTimetable returns the user's timetable with expired temporary
// exchanges reverted. The reverted form is not persisted here; the next
// mutation writes it back.
func (s *queryService) GetTimetable(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklyTimetable, error) {
	timetable, err := s.timetableRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}
	timetable.ExpireExchanges(s.now())
	return timetable, nil
}

// GetTodaySchedule left-outer-joins today's day plan against the ledger:
// every scheduled period is returned, with its occurrence attached when
// the day has been started or the slot otherwise recorded.
func (s *queryService) GetTodaySchedule(ctx context.Context, userID primitive.ObjectID) ([]TodayEntry, error) {
	now := s.now()
	timetable, err := s.GetTimetable(ctx, userID)
	if err != nil {
		return nil, err
	}

	sheet, err := s.attendanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		sheet = &domain.AttendanceSheet{UserID: userID}
	}

	entries := []TodayEntry{}
	plan := timetable.DayPlanFor(domain.WeekdayOf(now))
	if plan == nil {
		return entries, nil
	}
	for _, p := range plan.Periods {
		entry := TodayEntry{Period: p}
		if ledger := sheet.Ledger(p.Subject); ledger != nil {
			entry.Occurrence = ledger.Find(now, p.StartTime)
			if entry.Occurrence == nil {
				// Holiday entries sit under a blanked slot time.
				if occ := ledger.Find(now, ""); occ != nil && occ.IsHoliday {
					entry.Occurrence = occ
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetAttendanceSummary reports per-subject counts and percentage. With no
// range it reads the cached all-time counters; with a range it recounts
// on the fly from the occurrences inside [from, till].
func (s *queryService) GetAttendanceSummary(ctx context.Context, userID primitive.ObjectID, from, till *time.Time) ([]SubjectAttendance, error) {
	sheet, err := s.attendanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []SubjectAttendance{}, nil
		}
		return nil, err
	}

	summaries := make([]SubjectAttendance, 0, len(sheet.Subjects))
	for i := range sheet.Subjects {
		ledger := &sheet.Subjects[i]
		happened, attended := ledger.AllHappened, ledger.AllAttended
		if from != nil || till != nil {
			happened, attended = 0, 0
			for _, o := range ledger.InRange(from, till) {
				if o.Happened {
					happened++
				}
				if o.Attended {
					attended++
				}
			}
		}
		summaries = append(summaries, SubjectAttendance{
			SubjectName: ledger.SubjectName,
			Happened:    happened,
			Attended:    attended,
			Percentage:  percentage(attended, happened),
		})
	}
	return summaries, nil
}

// percentage is attended/happened*100, defined as 0 when nothing has
// happened to avoid a divide by zero.
func percentage(attended, happened int) float64 {
	if happened == 0 {
		return 0
	}
	return float64(attended) / float64(happened) * 100
}
