package service

import (
	"classtrack/attendance-app/internal/domain"
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestQueryService(ttRepo *fakeTimetableRepo, attRepo *fakeAttendanceRepo) *queryService {
	svc := NewQueryService(ttRepo, attRepo).(*queryService)
	svc.now = fixedClock(monday)
	return svc
}

func TestGetTodayScheduleMergesLedger(t *testing.T) {
	ttRepo := newFakeTimetableRepo()
	attRepo := newFakeAttendanceRepo()
	userID := primitive.NewObjectID()
	seedTimetable(ttRepo, userID)

	sheet := &domain.AttendanceSheet{UserID: userID}
	math := sheet.EnsureSubject("Math")
	math.Upsert(monday, "09:00", "10:00", func(o *domain.Occurrence) { o.Happened = true })
	attRepo.sheets[userID] = sheet

	svc := newTestQueryService(ttRepo, attRepo)
	entries, err := svc.GetTodaySchedule(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetTodaySchedule: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected both Monday periods, got %d entries", len(entries))
	}
	if entries[0].Occurrence == nil || !entries[0].Occurrence.Happened {
		t.Errorf("Math slot should carry its recorded occurrence, got %+v", entries[0])
	}
	if entries[1].Occurrence != nil {
		t.Errorf("Physics slot has no occurrence yet, got %+v", entries[1].Occurrence)
	}
}

func TestGetTodayScheduleShowsHolidayState(t *testing.T) {
	ttRepo := newFakeTimetableRepo()
	attRepo := newFakeAttendanceRepo()
	userID := primitive.NewObjectID()
	seedTimetable(ttRepo, userID)

	// Holiday entries sit under a blanked slot time; the join must still
	// attach them to every scheduled period of the subject.
	sheet := &domain.AttendanceSheet{UserID: userID}
	math := sheet.EnsureSubject("Math")
	math.Upsert(monday, "09:00", "10:00", func(o *domain.Occurrence) { o.IsHoliday = true })
	attRepo.sheets[userID] = sheet

	svc := newTestQueryService(ttRepo, attRepo)
	entries, err := svc.GetTodaySchedule(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetTodaySchedule: %v", err)
	}

	if entries[0].Occurrence == nil || !entries[0].Occurrence.IsHoliday {
		t.Errorf("Math slot must show its holiday entry, got %+v", entries[0].Occurrence)
	}
	if entries[1].Occurrence != nil {
		t.Errorf("Physics has no entry today, got %+v", entries[1].Occurrence)
	}
}

func TestGetTodayScheduleWithoutSheet(t *testing.T) {
	ttRepo := newFakeTimetableRepo()
	attRepo := newFakeAttendanceRepo()
	userID := primitive.NewObjectID()
	seedTimetable(ttRepo, userID)

	svc := newTestQueryService(ttRepo, attRepo)
	entries, err := svc.GetTodaySchedule(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetTodaySchedule: %v", err)
	}
	for _, e := range entries {
		if e.Occurrence != nil {
			t.Errorf("no sheet exists, occurrence must be nil: %+v", e)
		}
	}
}

func TestGetAttendanceSummaryAllTimeUsesCachedCounters(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	userID := primitive.NewObjectID()
	sheet := &domain.AttendanceSheet{UserID: userID}
	math := sheet.EnsureSubject("Math")
	math.Upsert(day(2024, 2, 5), "09:00", "10:00", func(o *domain.Occurrence) { o.Happened = true; o.Attended = true })
	math.Upsert(day(2024, 2, 12), "09:00", "10:00", func(o *domain.Occurrence) { o.Happened = true })
	math.Recount()
	attRepo.sheets[userID] = sheet

	svc := newTestQueryService(newFakeTimetableRepo(), attRepo)
	summaries, err := svc.GetAttendanceSummary(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("GetAttendanceSummary: %v", err)
	}

	if len(summaries) != 1 {
		t.Fatalf("expected 1 subject, got %d", len(summaries))
	}
	got := summaries[0]
	if got.Happened != 2 || got.Attended != 1 || got.Percentage != 50 {
		t.Errorf("got %+v, want happened=2 attended=1 percentage=50", got)
	}
}

func TestGetAttendanceSummaryRangedRecomputes(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	userID := primitive.NewObjectID()
	sheet := &domain.AttendanceSheet{UserID: userID}
	math := sheet.EnsureSubject("Math")
	math.Upsert(day(2024, 2, 5), "09:00", "10:00", func(o *domain.Occurrence) { o.Happened = true; o.Attended = true })
	math.Upsert(day(2024, 3, 4), "09:00", "10:00", func(o *domain.Occurrence) { o.Happened = true })
	math.Recount()
	attRepo.sheets[userID] = sheet

	svc := newTestQueryService(newFakeTimetableRepo(), attRepo)
	from := day(2024, 3, 1)
	till := day(2024, 3, 31)
	summaries, err := svc.GetAttendanceSummary(context.Background(), userID, &from, &till)
	if err != nil {
		t.Fatalf("GetAttendanceSummary: %v", err)
	}

	got := summaries[0]
	if got.Happened != 1 || got.Attended != 0 || got.Percentage != 0 {
		t.Errorf("ranged summary got %+v, want happened=1 attended=0 percentage=0", got)
	}
}

func TestGetAttendanceSummaryZeroHappenedIsZeroPercent(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	userID := primitive.NewObjectID()
	sheet := &domain.AttendanceSheet{UserID: userID}
	sheet.EnsureSubject("Math")
	attRepo.sheets[userID] = sheet

	svc := newTestQueryService(newFakeTimetableRepo(), attRepo)
	summaries, err := svc.GetAttendanceSummary(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("GetAttendanceSummary: %v", err)
	}
	if summaries[0].Percentage != 0 {
		t.Errorf("zero happened must report percentage 0, got %v", summaries[0].Percentage)
	}
}
