package domain

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testTimetable() *WeeklyTimetable {
	return &WeeklyTimetable{
		UserID: primitive.NewObjectID(),
		Days: []DayPlan{
			{Day: Monday, Periods: []Period{
				{Subject: "Math", StartTime: "09:00", EndTime: "10:00"},
				{Subject: "Physics", StartTime: "10:00", EndTime: "11:00"},
			}},
			{Day: Tuesday, Periods: []Period{
				{Subject: "Physics", StartTime: "09:00", EndTime: "10:00"},
			}},
		},
	}
}

func TestFindPeriodRequiresExactSlot(t *testing.T) {
	tt := testTimetable()
	if tt.FindPeriod(Monday, "09:00", "10:00") == nil {
		t.Error("expected to find Monday 09:00-10:00")
	}
	if tt.FindPeriod(Monday, "09:00", "10:30") != nil {
		t.Error("slot with mismatched end time must not match")
	}
	if tt.FindPeriod(Wednesday, "09:00", "10:00") != nil {
		t.Error("missing day plan must not match")
	}
}

func TestExpireExchangesRevertsToOriginalSubject(t *testing.T) {
	tt := testTimetable()
	p := tt.FindPeriod(Monday, "09:00", "10:00")
	p.Subject = "Physics"
	p.Exchange = &TemporaryExchange{OriginalSubject: "Math", ExchangeEndDate: date(2024, 3, 10)}

	// Still inside the window: no change on the end date itself.
	if tt.ExpireExchanges(date(2024, 3, 10)) {
		t.Error("exchange must stay active through its end date")
	}

	if !tt.ExpireExchanges(date(2024, 3, 11)) {
		t.Fatal("expected expiry to modify the timetable")
	}
	p = tt.FindPeriod(Monday, "09:00", "10:00")
	if p == nil || p.Subject != "Math" || p.Exchange != nil {
		t.Errorf("expected reversion to Math with annotation cleared, got %+v", p)
	}
}

func TestExpireExchangesRemovesLapsedAdHocPeriods(t *testing.T) {
	tt := testTimetable()
	plan := tt.DayPlanFor(Monday)
	plan.Periods = append(plan.Periods, Period{
		Subject:   "Robotics",
		StartTime: "15:00",
		EndTime:   "16:00",
		Exchange:  &TemporaryExchange{OriginalSubject: AdHocSentinel, ExchangeEndDate: date(2024, 3, 10)},
	})

	if !tt.ExpireExchanges(date(2024, 3, 11)) {
		t.Fatal("expected expiry to modify the timetable")
	}
	if tt.FindPeriod(Monday, "15:00", "16:00") != nil {
		t.Error("lapsed ad-hoc period must be removed, not reverted")
	}
	if len(tt.DayPlanFor(Monday).Periods) != 2 {
		t.Errorf("regular periods must survive, got %+v", tt.DayPlanFor(Monday).Periods)
	}
}

func TestSubjectNamesDeduplicates(t *testing.T) {
	tt := testTimetable()
	names := tt.SubjectNames()
	want := []string{"Math", "Physics"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got %v, want %v", names, want)
		}
	}
}

func TestPresetInstantiateCoversAllWeekdays(t *testing.T) {
	preset := DefaultPresets()[0]
	userID := primitive.NewObjectID()
	tt := preset.Instantiate(userID, date(2024, 3, 4))

	if len(tt.Days) != 7 {
		t.Fatalf("expected 7 day plans, got %d", len(tt.Days))
	}
	if tt.UserID != userID {
		t.Error("instantiated timetable must belong to the user")
	}
	if tt.DayPlanFor(Sunday) == nil {
		t.Error("empty weekdays must still be present")
	}
	if len(tt.DayPlanFor(Monday).Periods) == 0 {
		t.Error("preset periods missing from instantiated timetable")
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2024-03-04 is a Monday.
	if got := WeekdayOf(date(2024, 3, 4)); got != Monday {
		t.Errorf("got %s, want Monday", got)
	}
	if got := WeekdayOf(date(2024, 3, 10)); got != Sunday {
		t.Errorf("got %s, want Sunday", got)
	}
}
