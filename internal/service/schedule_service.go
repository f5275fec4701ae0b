package service

import (
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTimetableNotFound      = errors.New("timetable not found; apply a preset first")
	ErrPeriodNotFound         = errors.New("no period occupies that slot")
	ErrOccurrenceNotFound     = errors.New("occurrence not found")
	ErrSameSlotExchange       = errors.New("cannot exchange a period with itself")
	ErrExchangeDatePast       = errors.New("exchange end date must not be in the past")
	ErrSlotOccupied           = errors.New("a period already occupies that slot today")
	ErrHolidayConfirmRequired = errors.New("enabling a holiday-marked class requires confirmation")
)

// SlotRef identifies a period by weekday and its exact (start, end) pair.
type SlotRef struct {
	Day       domain.Weekday
	StartTime string
	EndTime   string
}

// CounterSummary echoes a subject's recomputed counters after a mutation.
type CounterSummary struct {
	AllHappened int `json:"allHappened"`
	AllAttended int `json:"allAttended"`
}

// ToggleResult reports an occurrence's flags after a happened toggle.
type ToggleResult struct {
	Happened bool `json:"happened"`
	Attended bool `json:"attended"`
}

// ScheduleService is the mutation engine: every write that touches the
// timetable, the occurrence ledgers or the counters goes through here.
type ScheduleService interface {
	StartDay(ctx context.Context, userID primitive.ObjectID) ([]domain.Warning, error)
	MarkHoliday(ctx context.Context, userID primitive.ObjectID) ([]domain.Warning, error)
	ToggleAttended(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, attended bool) (*CounterSummary, []domain.Warning, error)
	ToggleHappened(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, happened bool) (*ToggleResult, []domain.Warning, error)
	UpdateTopics(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, topics string) ([]string, []domain.Warning, error)
	SetClassDisabled(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, disabled bool, confirmHoliday bool) ([]domain.Warning, error)
	AddAdHocClass(ctx context.Context, userID primitive.ObjectID, subject, startTime, endTime string, validUntil time.Time) error
	ExchangePeriods(ctx context.Context, userID primitive.ObjectID, first, second SlotRef, endDate *time.Time) error
}

type scheduleService struct {
	timetableRepo  repository.TimetableRepository
	attendanceRepo repository.AttendanceRepository
	tx             repository.TxRunner
	now            func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	timetableRepo repository.TimetableRepository,
	attendanceRepo repository.AttendanceRepository,
	tx repository.TxRunner,
) ScheduleService {
	return &scheduleService{
		timetableRepo:  timetableRepo,
		attendanceRepo: attendanceRepo,
		tx:             tx,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// loadTimetable fetches the user's timetable and lazily reverts expired
// temporary exchanges, persisting the reverted form so readers and later
// mutations agree on the effective schedule.
func (s *scheduleService) loadTimetable(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.WeeklyTimetable, error) {
	timetable, err := s.timetableRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}
	if timetable.ExpireExchanges(now) {
		if err := s.timetableRepo.Replace(ctx, timetable); err != nil {
			return nil, err
		}
	}
	return timetable, nil
}

// loadOrCreateSheet fetches the attendance sheet, starting an empty one
// for users whose sheet has not been seeded yet.
func (s *scheduleService) loadOrCreateSheet(ctx context.Context, userID primitive.ObjectID) (*domain.AttendanceSheet, error) {
	sheet, err := s.attendanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.AttendanceSheet{UserID: userID}, nil
		}
		return nil, err
	}
	return sheet, nil
}

// StartDay bulk-inserts today's occurrences from the timetable, marked as
// happened. Re-invocation is a no-op for slots already recorded.
func (s *scheduleService) StartDay(ctx context.Context, userID primitive.ObjectID) ([]domain.Warning, error) {
	return s.seedToday(ctx, userID, false)
}

// MarkHoliday flags today as a holiday across every subject scheduled
// today, inserting holiday occurrences where none exist and converting
// those that do. Idempotent.
func (s *scheduleService) MarkHoliday(ctx context.Context, userID primitive.ObjectID) ([]domain.Warning, error) {
	return s.seedToday(ctx, userID, true)
}

func (s *scheduleService) seedToday(ctx context.Context, userID primitive.ObjectID, holiday bool) ([]domain.Warning, error) {
	now := s.now()
	var warnings []domain.Warning
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		timetable, err := s.loadTimetable(ctx, userID, now)
		if err != nil {
			return err
		}
		sheet, err := s.loadOrCreateSheet(ctx, userID)
		if err != nil {
			return err
		}

		touched := make(map[string]bool)
		plan := timetable.DayPlanFor(domain.WeekdayOf(now))
		if plan != nil {
			for _, p := range plan.Periods {
				ledger := sheet.EnsureSubject(p.Subject)
				if holiday {
					_, w, _ := ledger.Upsert(now, p.StartTime, p.EndTime, func(o *domain.Occurrence) {
						o.IsHoliday = true
					})
					warnings = append(warnings, w...)
				} else if ledger.Find(now, p.StartTime) == nil && !ledger.HolidayOn(now) {
					// A holiday-marked day must not gain happened
					// occurrences from a later day start.
					_, w, _ := ledger.Upsert(now, p.StartTime, p.EndTime, func(o *domain.Occurrence) {
						o.Happened = true
					})
					warnings = append(warnings, w...)
				}
				touched[p.Subject] = true
			}
		}

		for name := range touched {
			sheet.Ledger(name).Recount()
		}
		return s.attendanceRepo.Save(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}
	logWarnings(userID, warnings)
	return warnings, nil
}

// ToggleAttended flips the attended flag on an existing occurrence. Any
// attendance toggle marks the class as having happened: attendance is
// only meaningful for a class that took place.
func (s *scheduleService) ToggleAttended(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, attended bool) (*CounterSummary, []domain.Warning, error) {
	var (
		summary  CounterSummary
		warnings []domain.Warning
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sheet, ledger, occ, err := s.findOccurrence(ctx, userID, subject, date, startTime)
		if err != nil {
			return err
		}
		_, w, _ := ledger.Upsert(date, startTime, occ.EndTime, func(o *domain.Occurrence) {
			o.Attended = attended
			o.Happened = true
		})
		warnings = w
		happened, att := ledger.Recount()
		summary = CounterSummary{AllHappened: happened, AllAttended: att}
		return s.attendanceRepo.Save(ctx, sheet)
	})
	if err != nil {
		return nil, nil, err
	}
	logWarnings(userID, warnings)
	return &summary, warnings, nil
}

// ToggleHappened flips the happened flag. Clearing it cascades
// attended=false, since a class that never took place cannot have been
// attended.
func (s *scheduleService) ToggleHappened(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, happened bool) (*ToggleResult, []domain.Warning, error) {
	var (
		result   ToggleResult
		warnings []domain.Warning
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sheet, ledger, occ, err := s.findOccurrence(ctx, userID, subject, date, startTime)
		if err != nil {
			return err
		}
		updated, w, _ := ledger.Upsert(date, startTime, occ.EndTime, func(o *domain.Occurrence) {
			o.Happened = happened
			if !happened {
				o.Attended = false
			}
		})
		warnings = w
		result = ToggleResult{Happened: updated.Happened, Attended: updated.Attended}
		ledger.Recount()
		return s.attendanceRepo.Save(ctx, sheet)
	})
	if err != nil {
		return nil, nil, err
	}
	logWarnings(userID, warnings)
	return &result, warnings, nil
}

// UpdateTopics writes the topics covered by an occurrence. The comma-joined
// input is split and trimmed; the validation pass clears the list again if
// the class is not both happened and attended.
func (s *scheduleService) UpdateTopics(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, topics string) ([]string, []domain.Warning, error) {
	var (
		saved    []string
		warnings []domain.Warning
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sheet, ledger, occ, err := s.findOccurrence(ctx, userID, subject, date, startTime)
		if err != nil {
			return err
		}
		updated, w, _ := ledger.Upsert(date, startTime, occ.EndTime, func(o *domain.Occurrence) {
			o.TopicsCovered = domain.SplitTopics(topics)
		})
		warnings = w
		saved = updated.TopicsCovered
		ledger.Recount()
		return s.attendanceRepo.Save(ctx, sheet)
	})
	if err != nil {
		return nil, nil, err
	}
	logWarnings(userID, warnings)
	return saved, warnings, nil
}

// SetClassDisabled disables or re-enables a recorded class. Disabling
// forces happened=false and attended=false. Re-enabling a holiday-marked
// occurrence is confirm-gated: without confirmHoliday the call fails so
// the UI can run its two-step confirmation.
func (s *scheduleService) SetClassDisabled(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string, disabled bool, confirmHoliday bool) ([]domain.Warning, error) {
	var warnings []domain.Warning
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sheet, ledger, occ, err := s.findOccurrence(ctx, userID, subject, date, startTime)
		if err != nil {
			return err
		}
		if !disabled && occ.IsHoliday && !confirmHoliday {
			return ErrHolidayConfirmRequired
		}
		_, w, _ := ledger.Upsert(date, startTime, occ.EndTime, func(o *domain.Occurrence) {
			if disabled {
				o.Happened = false
				o.Attended = false
			} else {
				o.IsHoliday = false
				o.Happened = true
			}
		})
		warnings = w
		ledger.Recount()
		return s.attendanceRepo.Save(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}
	logWarnings(userID, warnings)
	return warnings, nil
}

// AddAdHocClass inserts a one-off period into today's day plan and seeds
// its ledger occurrences weekly from today through validUntil inclusive.
// The period carries the ad-hoc sentinel so expiry removes it instead of
// reverting it.
func (s *scheduleService) AddAdHocClass(ctx context.Context, userID primitive.ObjectID, subject, startTime, endTime string, validUntil time.Time) error {
	now := s.now()
	if domain.DateOnly(validUntil).Before(domain.DateOnly(now)) {
		return ErrExchangeDatePast
	}
	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		timetable, err := s.loadTimetable(ctx, userID, now)
		if err != nil {
			return err
		}
		today := domain.WeekdayOf(now)
		plan := timetable.DayPlanFor(today)
		if plan == nil {
			timetable.Days = append(timetable.Days, domain.DayPlan{Day: today})
			plan = &timetable.Days[len(timetable.Days)-1]
		}
		for _, p := range plan.Periods {
			if p.Matches(startTime, endTime) {
				return ErrSlotOccupied
			}
		}
		plan.Periods = append(plan.Periods, domain.Period{
			Subject:   subject,
			StartTime: startTime,
			EndTime:   endTime,
			Exchange: &domain.TemporaryExchange{
				OriginalSubject: domain.AdHocSentinel,
				ExchangeEndDate: domain.DateOnly(validUntil),
			},
		})
		if err := s.timetableRepo.Replace(ctx, timetable); err != nil {
			return err
		}

		sheet, err := s.loadOrCreateSheet(ctx, userID)
		if err != nil {
			return err
		}
		ledger := sheet.EnsureSubject(subject)
		end := domain.DateOnly(validUntil)
		for d := domain.DateOnly(now); !d.After(end); d = d.AddDate(0, 0, 7) {
			ledger.Upsert(d, startTime, endTime, nil)
		}
		ledger.Recount()
		return s.attendanceRepo.Save(ctx, sheet)
	})
}

// ExchangePeriods swaps the subjects of two timetable slots, permanently
// when endDate is nil or until endDate otherwise. Future ledger
// occurrences generated under the pre-exchange schedule are pruned, and
// when today matches either slot's day the class is recorded under the
// newly effective subject.
func (s *scheduleService) ExchangePeriods(ctx context.Context, userID primitive.ObjectID, first, second SlotRef, endDate *time.Time) error {
	now := s.now()
	if first.Day == second.Day && first.StartTime == second.StartTime && first.EndTime == second.EndTime {
		return ErrSameSlotExchange
	}
	if !first.Day.Valid() || !second.Day.Valid() {
		return ErrPeriodNotFound
	}
	if endDate != nil && domain.DateOnly(*endDate).Before(domain.DateOnly(now)) {
		return ErrExchangeDatePast
	}

	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		timetable, err := s.loadTimetable(ctx, userID, now)
		if err != nil {
			return err
		}
		periodA := timetable.FindPeriod(first.Day, first.StartTime, first.EndTime)
		periodB := timetable.FindPeriod(second.Day, second.StartTime, second.EndTime)
		if periodA == nil || periodB == nil {
			return ErrPeriodNotFound
		}

		oldA, oldB := periodA.Subject, periodB.Subject
		periodA.Subject, periodB.Subject = oldB, oldA
		if endDate != nil {
			until := domain.DateOnly(*endDate)
			periodA.Exchange = &domain.TemporaryExchange{OriginalSubject: oldA, ExchangeEndDate: until}
			periodB.Exchange = &domain.TemporaryExchange{OriginalSubject: oldB, ExchangeEndDate: until}
		} else {
			periodA.Exchange = nil
			periodB.Exchange = nil
		}
		if err := s.timetableRepo.Replace(ctx, timetable); err != nil {
			return err
		}

		sheet, err := s.loadOrCreateSheet(ctx, userID)
		if err != nil {
			return err
		}

		// Retract future occurrences recorded under the old slot/day
		// pairing: they belong to the superseded schedule.
		pruneSlot := func(subject string, slot SlotRef) {
			ledger := sheet.Ledger(subject)
			if ledger == nil {
				return
			}
			ledger.PruneFuture(now, func(o domain.Occurrence) bool {
				return domain.WeekdayOf(o.Date) == slot.Day && o.StartTime == slot.StartTime
			})
		}
		pruneSlot(oldA, first)
		pruneSlot(oldB, second)

		// Attribution for today's class follows the post-exchange timetable.
		today := domain.WeekdayOf(now)
		recordToday := func(slot SlotRef, newSubject, oldSubject string) {
			if today != slot.Day {
				return
			}
			ledger := sheet.EnsureSubject(newSubject)
			ledger.Upsert(now, slot.StartTime, slot.EndTime, func(o *domain.Occurrence) {
				o.Happened = true
				if endDate != nil {
					o.TempSubject = oldSubject
					until := domain.DateOnly(*endDate)
					o.ExchangeEndDate = &until
				}
			})
		}
		recordToday(first, periodA.Subject, oldA)
		recordToday(second, periodB.Subject, oldB)

		for _, name := range []string{oldA, oldB} {
			if ledger := sheet.Ledger(name); ledger != nil {
				ledger.Recount()
			}
		}
		return s.attendanceRepo.Save(ctx, sheet)
	})
}

// findOccurrence resolves the target of a per-occurrence mutation,
// failing fast when the sheet, subject or occurrence is missing.
func (s *scheduleService) findOccurrence(ctx context.Context, userID primitive.ObjectID, subject string, date time.Time, startTime string) (*domain.AttendanceSheet, *domain.SubjectLedger, *domain.Occurrence, error) {
	sheet, err := s.attendanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, ErrOccurrenceNotFound
		}
		return nil, nil, nil, err
	}
	ledger := sheet.Ledger(subject)
	if ledger == nil {
		return nil, nil, nil, ErrOccurrenceNotFound
	}
	occ := ledger.Find(date, startTime)
	if occ == nil {
		return nil, nil, nil, ErrOccurrenceNotFound
	}
	return sheet, ledger, occ, nil
}

func logWarnings(userID primitive.ObjectID, warnings []domain.Warning) {
	for _, w := range warnings {
		log.Printf("WARN: consistency correction for user %s: %s", userID.Hex(), w)
	}
}
