package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekday names the seven days a WeeklyTimetable is keyed by.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in timetable order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid returns true when the weekday is one of the seven supported names.
func (w Weekday) Valid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// WeekdayOf converts a calendar date to its timetable weekday name. All
// calendar math is done in UTC, matching how dates are persisted.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.UTC().Weekday().String())
}

// AdHocSentinel marks a period that was inserted ad hoc and has no
// original subject to revert to once its exchange window closes.
const AdHocSentinel = "temporary"

// TemporaryExchange annotates a period whose subject has been swapped
// until an end date, recording what to revert to and when.
type TemporaryExchange struct {
	OriginalSubject string    `bson:"originalSubject" json:"originalSubject"`
	ExchangeEndDate time.Time `bson:"exchangeEndDate" json:"exchangeEndDate"`
}

// Expired reports whether the exchange window has closed. The end date is
// inclusive: the swap still applies on the end date itself.
func (t TemporaryExchange) Expired(now time.Time) bool {
	return DateOnly(t.ExchangeEndDate).Before(DateOnly(now))
}

// Period is a single class slot within a DayPlan. The (StartTime, EndTime)
// pair identifies the slot; Subject carries the currently effective
// subject, which a TemporaryExchange may have overridden.
type Period struct {
	Subject   string             `bson:"subject" json:"subject"`
	StartTime string             `bson:"startTime" json:"startTime"`
	EndTime   string             `bson:"endTime" json:"endTime"`
	Teacher   string             `bson:"teacher,omitempty" json:"teacher,omitempty"`
	Exchange  *TemporaryExchange `bson:"exchange,omitempty" json:"exchange,omitempty"`
}

// Matches reports whether the period occupies the given slot.
func (p Period) Matches(startTime, endTime string) bool {
	return p.StartTime == startTime && p.EndTime == endTime
}

// DayPlan holds the ordered class slots for one weekday.
type DayPlan struct {
	Day     Weekday  `bson:"day" json:"day"`
	Periods []Period `bson:"periods" json:"periods"`
}

// WeeklyTimetable is the canonical recurring schedule for one user, one
// DayPlan per weekday. Replaced wholesale when a preset is applied,
// mutated in place by exchanges and ad-hoc insertions.
type WeeklyTimetable struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Days      []DayPlan          `bson:"days" json:"days"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DayPlanFor returns the plan for the given weekday, or nil if the
// timetable has no entry for it.
func (t *WeeklyTimetable) DayPlanFor(day Weekday) *DayPlan {
	for i := range t.Days {
		if t.Days[i].Day == day {
			return &t.Days[i]
		}
	}
	return nil
}

// FindPeriod locates the period at (day, startTime, endTime). Returns nil
// when no period occupies that exact slot.
func (t *WeeklyTimetable) FindPeriod(day Weekday, startTime, endTime string) *Period {
	plan := t.DayPlanFor(day)
	if plan == nil {
		return nil
	}
	for i := range plan.Periods {
		if plan.Periods[i].Matches(startTime, endTime) {
			return &plan.Periods[i]
		}
	}
	return nil
}

// ExpireExchanges reverts every period whose temporary-exchange window has
// closed. Periods revert to their original subject; ad-hoc periods (the
// sentinel original subject) are removed outright. Returns true when the
// timetable was modified and needs to be persisted.
func (t *WeeklyTimetable) ExpireExchanges(now time.Time) bool {
	changed := false
	for d := range t.Days {
		plan := &t.Days[d]
		kept := plan.Periods[:0]
		for _, p := range plan.Periods {
			if p.Exchange == nil || !p.Exchange.Expired(now) {
				kept = append(kept, p)
				continue
			}
			changed = true
			if p.Exchange.OriginalSubject == AdHocSentinel {
				continue // ad-hoc period lapses with its window
			}
			p.Subject = p.Exchange.OriginalSubject
			p.Exchange = nil
			kept = append(kept, p)
		}
		plan.Periods = kept
	}
	return changed
}

// SubjectNames returns the distinct effective subject names in the
// timetable, in first-appearance order.
func (t *WeeklyTimetable) SubjectNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, plan := range t.Days {
		for _, p := range plan.Periods {
			if !seen[p.Subject] {
				seen[p.Subject] = true
				names = append(names, p.Subject)
			}
		}
	}
	return names
}

// DateOnly normalizes a timestamp to midnight UTC so dates compare by
// calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
