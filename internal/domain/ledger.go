package domain

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Occurrence is one dated instance of a subject's class slot. The
// (Date, StartTime) pair is the de-duplication key within a ledger.
type Occurrence struct {
	Date            time.Time  `bson:"date" json:"date"`
	StartTime       string     `bson:"startTime" json:"startTime"`
	EndTime         string     `bson:"endTime" json:"endTime"`
	IsHoliday       bool       `bson:"isHoliday" json:"isHoliday"`
	Happened        bool       `bson:"happened" json:"happened"`
	Attended        bool       `bson:"attended" json:"attended"`
	TopicsCovered   []string   `bson:"topicsCovered,omitempty" json:"topicsCovered,omitempty"`
	TempSubject     string     `bson:"tempSubject,omitempty" json:"tempSubject,omitempty"`
	ExchangeEndDate *time.Time `bson:"exchangeEndDate,omitempty" json:"exchangeEndDate,omitempty"`
}

// SubjectLedger collects every recorded occurrence for one subject plus
// the cached all-time counters. Counters are a cache over the occurrence
// list and are recounted after every write, never trusted incrementally.
type SubjectLedger struct {
	SubjectName string       `bson:"subjectName" json:"subjectName"`
	Occurrences []Occurrence `bson:"occurrences" json:"occurrences"`
	AllHappened int          `bson:"allHappened" json:"allHappened"`
	AllAttended int          `bson:"allAttended" json:"allAttended"`
}

// AttendanceSheet is the single per-user consistency unit holding every
// subject's ledger. Loaded whole, transformed in memory, saved whole.
type AttendanceSheet struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Subjects       []SubjectLedger    `bson:"subjects" json:"subjects"`
	LastArchiveKey string             `bson:"lastArchiveKey,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Ledger returns the ledger for the named subject, or nil if absent.
func (s *AttendanceSheet) Ledger(subjectName string) *SubjectLedger {
	for i := range s.Subjects {
		if s.Subjects[i].SubjectName == subjectName {
			return &s.Subjects[i]
		}
	}
	return nil
}

// EnsureSubject returns the subject's ledger, creating an empty one if the
// sheet does not have it yet. Idempotent.
func (s *AttendanceSheet) EnsureSubject(subjectName string) *SubjectLedger {
	if l := s.Ledger(subjectName); l != nil {
		return l
	}
	s.Subjects = append(s.Subjects, SubjectLedger{SubjectName: subjectName})
	return &s.Subjects[len(s.Subjects)-1]
}

// Find returns the occurrence at (date, startTime), or nil.
func (l *SubjectLedger) Find(date time.Time, startTime string) *Occurrence {
	date = DateOnly(date)
	for i := range l.Occurrences {
		if l.Occurrences[i].Date.Equal(date) && l.Occurrences[i].StartTime == startTime {
			return &l.Occurrences[i]
		}
	}
	return nil
}

// Upsert is the single choke point for ledger writes. If an occurrence at
// (date, startTime) exists, apply mutates it in place; otherwise a new
// occurrence is inserted and apply runs on the zero-valued entry. The
// occurrence is normalized afterwards and any consistency corrections are
// returned as warnings. Returns the occurrence, the warnings, and whether
// a new entry was created.
func (l *SubjectLedger) Upsert(date time.Time, startTime, endTime string, apply func(*Occurrence)) (*Occurrence, []Warning, bool) {
	date = DateOnly(date)
	occ := l.Find(date, startTime)
	created := false
	if occ == nil {
		l.Occurrences = append(l.Occurrences, Occurrence{
			Date:      date,
			StartTime: startTime,
			EndTime:   endTime,
		})
		occ = &l.Occurrences[len(l.Occurrences)-1]
		created = true
	}
	if apply != nil {
		apply(occ)
	}
	warnings := occ.Normalize()
	// Normalization can rewrite the key (holidays blank the slot times),
	// so the uniqueness invariant is re-enforced before the write lands.
	finalStart := occ.StartTime
	warnings = append(warnings, l.dedupe()...)
	l.sortOccurrences()
	return l.Find(date, finalStart), warnings, created
}

// dedupe collapses occurrences sharing a (date, startTime) key into the
// first entry, OR-ing the boolean flags and re-normalizing the survivor.
// Corrections made while merging are returned so callers can surface them.
func (l *SubjectLedger) dedupe() []Warning {
	type key struct {
		date  time.Time
		start string
	}
	var warnings []Warning
	first := make(map[key]*Occurrence)
	kept := l.Occurrences[:0]
	for i := range l.Occurrences {
		o := l.Occurrences[i]
		k := key{o.Date, o.StartTime}
		if prev, ok := first[k]; ok {
			prev.IsHoliday = prev.IsHoliday || o.IsHoliday
			prev.Happened = prev.Happened || o.Happened
			prev.Attended = prev.Attended || o.Attended
			if len(prev.TopicsCovered) == 0 {
				prev.TopicsCovered = o.TopicsCovered
			}
			warnings = append(warnings, prev.Normalize()...)
			continue
		}
		kept = append(kept, o)
		first[k] = &kept[len(kept)-1]
	}
	l.Occurrences = kept
	return warnings
}

func (l *SubjectLedger) sortOccurrences() {
	sort.SliceStable(l.Occurrences, func(i, j int) bool {
		if !l.Occurrences[i].Date.Equal(l.Occurrences[j].Date) {
			return l.Occurrences[i].Date.Before(l.Occurrences[j].Date)
		}
		return l.Occurrences[i].StartTime < l.Occurrences[j].StartTime
	})
}

// HolidayOn reports whether the ledger holds a holiday entry for the
// given day. Holiday entries live under a blanked slot time.
func (l *SubjectLedger) HolidayOn(date time.Time) bool {
	occ := l.Find(date, "")
	return occ != nil && occ.IsHoliday
}

// InRange returns the occurrences within [from, till] inclusive, ordered
// by date then start time. Nil bounds are open.
func (l *SubjectLedger) InRange(from, till *time.Time) []Occurrence {
	var out []Occurrence
	for _, o := range l.Occurrences {
		if from != nil && o.Date.Before(DateOnly(*from)) {
			continue
		}
		if till != nil && o.Date.After(DateOnly(*till)) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// PruneFuture removes occurrences strictly after the given day that match
// the predicate. Past and present-day occurrences are never touched:
// recorded history is immutable through this path. Returns the number of
// entries removed.
func (l *SubjectLedger) PruneFuture(now time.Time, match func(Occurrence) bool) int {
	today := DateOnly(now)
	kept := l.Occurrences[:0]
	removed := 0
	for _, o := range l.Occurrences {
		if o.Date.After(today) && match(o) {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	l.Occurrences = kept
	return removed
}

// Recount rebuilds the cached counters from the occurrence list.
func (l *SubjectLedger) Recount() (allHappened, allAttended int) {
	allHappened, allAttended = 0, 0
	for _, o := range l.Occurrences {
		if o.Happened {
			allHappened++
		}
		if o.Attended {
			allAttended++
		}
	}
	l.AllHappened = allHappened
	l.AllAttended = allAttended
	return allHappened, allAttended
}
