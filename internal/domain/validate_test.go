package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeHolidayPurity(t *testing.T) {
	occ := &Occurrence{
		Date:          date(2024, 3, 4),
		StartTime:     "09:00",
		EndTime:       "10:00",
		IsHoliday:     true,
		Happened:      true,
		Attended:      true,
		TopicsCovered: []string{"integrals"},
	}

	warnings := occ.Normalize()

	if occ.Happened || occ.Attended {
		t.Errorf("holiday must clear happened/attended, got %+v", occ)
	}
	if len(occ.TopicsCovered) != 0 {
		t.Errorf("holiday must clear topics, got %v", occ.TopicsCovered)
	}
	if occ.StartTime != "" || occ.EndTime != "" {
		t.Errorf("holiday must blank slot times, got %q-%q", occ.StartTime, occ.EndTime)
	}
	if len(warnings) == 0 {
		t.Error("expected corrections to be reported as warnings")
	}
}

func TestNormalizeAttendedImpliesHappened(t *testing.T) {
	occ := &Occurrence{Attended: true}
	warnings := occ.Normalize()
	if !occ.Happened {
		t.Error("attended occurrence must be marked happened")
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warnings))
	}
}

func TestNormalizeTopicsRequireHappenedAndAttended(t *testing.T) {
	tests := []struct {
		name      string
		occ       Occurrence
		wantClear bool
	}{
		{"happened only", Occurrence{Happened: true, TopicsCovered: []string{"x"}}, true},
		{"neither", Occurrence{TopicsCovered: []string{"x"}}, true},
		{"both", Occurrence{Happened: true, Attended: true, TopicsCovered: []string{"x"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.occ.Normalize()
			cleared := len(tt.occ.TopicsCovered) == 0
			if cleared != tt.wantClear {
				t.Errorf("topics cleared=%v, want %v", cleared, tt.wantClear)
			}
		})
	}
}

func TestNormalizeConsistentOccurrenceUntouched(t *testing.T) {
	occ := &Occurrence{
		Happened:      true,
		Attended:      true,
		StartTime:     "09:00",
		EndTime:       "10:00",
		TopicsCovered: []string{"limits"},
	}
	warnings := occ.Normalize()
	if len(warnings) != 0 {
		t.Errorf("consistent occurrence produced warnings: %v", warnings)
	}
}

func TestSplitTopics(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"limits, derivatives,integrals", []string{"limits", "derivatives", "integrals"}},
		{"  one  ", []string{"one"}},
		{",,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitTopics(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitTopics(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
