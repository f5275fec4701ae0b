package service

import (
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repositories. They clone on read and write so a
// service that forgets to save its mutations fails the tests instead of
// leaking them through shared pointers. Cloning goes through bson so the
// fakes round-trip fields exactly like the real store.

func clone[T any](src *T) *T {
	data, err := bson.Marshal(src)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := bson.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

type fakeTimetableRepo struct {
	timetables map[primitive.ObjectID]*domain.WeeklyTimetable
}

func newFakeTimetableRepo() *fakeTimetableRepo {
	return &fakeTimetableRepo{timetables: make(map[primitive.ObjectID]*domain.WeeklyTimetable)}
}

func (r *fakeTimetableRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.WeeklyTimetable, error) {
	tt, ok := r.timetables[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(tt), nil
}

func (r *fakeTimetableRepo) Replace(_ context.Context, timetable *domain.WeeklyTimetable) error {
	r.timetables[timetable.UserID] = clone(timetable)
	return nil
}

type fakeAttendanceRepo struct {
	sheets map[primitive.ObjectID]*domain.AttendanceSheet
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{sheets: make(map[primitive.ObjectID]*domain.AttendanceSheet)}
}

func (r *fakeAttendanceRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.AttendanceSheet, error) {
	sheet, ok := r.sheets[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(sheet), nil
}

func (r *fakeAttendanceRepo) Save(_ context.Context, sheet *domain.AttendanceSheet) error {
	r.sheets[sheet.UserID] = clone(sheet)
	return nil
}

func (r *fakeAttendanceRepo) DeleteByUserID(_ context.Context, userID primitive.ObjectID) error {
	delete(r.sheets, userID)
	return nil
}

type fakePresetRepo struct {
	presets map[primitive.ObjectID]*domain.Preset
}

func newFakePresetRepo() *fakePresetRepo {
	return &fakePresetRepo{presets: make(map[primitive.ObjectID]*domain.Preset)}
}

func (r *fakePresetRepo) add(p domain.Preset) primitive.ObjectID {
	p.ID = primitive.NewObjectID()
	r.presets[p.ID] = &p
	return p.ID
}

func (r *fakePresetRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Preset, error) {
	p, ok := r.presets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *fakePresetRepo) List(_ context.Context) ([]domain.Preset, error) {
	var out []domain.Preset
	for _, p := range r.presets {
		out = append(out, *clone(p))
	}
	return out, nil
}

func (r *fakePresetRepo) EnsureDefaults(_ context.Context, presets []domain.Preset) error {
	if len(r.presets) > 0 {
		return nil
	}
	for _, p := range presets {
		r.add(p)
	}
	return nil
}

type nopTxRunner struct{}

func (nopTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeArchiver struct {
	snapshots map[string][]byte
}

func newFakeArchiver() *fakeArchiver {
	return &fakeArchiver{snapshots: make(map[string][]byte)}
}

func (a *fakeArchiver) PutSnapshot(_ context.Context, objectKey string, data []byte) error {
	a.snapshots[objectKey] = data
	return nil
}

func (a *fakeArchiver) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://archive.example/" + objectKey, nil
}

func (a *fakeArchiver) DeleteObject(_ context.Context, objectKey string) error {
	delete(a.snapshots, objectKey)
	return nil
}

// day builds a UTC midnight date.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monday is a fixed reference Monday used as "today" in tests.
var monday = day(2024, 3, 4)

// fixedClock pins a service's notion of now.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedTimetable installs a two-day timetable: Monday Math 09:00 and
// Physics 10:00, Tuesday Physics 09:00.
func seedTimetable(repo *fakeTimetableRepo, userID primitive.ObjectID) {
	repo.timetables[userID] = &domain.WeeklyTimetable{
		UserID: userID,
		Days: []domain.DayPlan{
			{Day: domain.Monday, Periods: []domain.Period{
				{Subject: "Math", StartTime: "09:00", EndTime: "10:00"},
				{Subject: "Physics", StartTime: "10:00", EndTime: "11:00"},
			}},
			{Day: domain.Tuesday, Periods: []domain.Period{
				{Subject: "Physics", StartTime: "09:00", EndTime: "10:00"},
			}},
			{Day: domain.Wednesday}, {Day: domain.Thursday}, {Day: domain.Friday},
			{Day: domain.Saturday}, {Day: domain.Sunday},
		},
	}
}

func newTestScheduleService(ttRepo *fakeTimetableRepo, attRepo *fakeAttendanceRepo, now time.Time) *scheduleService {
	svc := NewScheduleService(ttRepo, attRepo, nopTxRunner{}).(*scheduleService)
	svc.now = fixedClock(now)
	return svc
}
