package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preset is a reusable weekly timetable definition a user can adopt
// wholesale. Applying one replaces the user's timetable and resets the
// attendance sheet.
type Preset struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Days        []DayPlan          `bson:"days" json:"days"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Instantiate builds a fresh timetable for the user from the preset.
// Every weekday is present in the result even when the preset leaves it
// empty, so downstream day lookups never miss.
func (p *Preset) Instantiate(userID primitive.ObjectID, now time.Time) *WeeklyTimetable {
	days := make([]DayPlan, 0, len(Weekdays))
	for _, day := range Weekdays {
		plan := DayPlan{Day: day}
		for _, src := range p.Days {
			if src.Day == day {
				plan.Periods = append(plan.Periods, src.Periods...)
			}
		}
		days = append(days, plan)
	}
	return &WeeklyTimetable{
		UserID:    userID,
		Days:      days,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultPresets returns the built-in templates seeded into an empty
// preset collection on startup.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:        "Weekday Mornings",
			Description: "Five subjects, Monday through Friday, morning block",
			Days: []DayPlan{
				{Day: Monday, Periods: []Period{
					{Subject: "Mathematics", StartTime: "09:00", EndTime: "10:00"},
					{Subject: "Physics", StartTime: "10:00", EndTime: "11:00"},
					{Subject: "Chemistry", StartTime: "11:00", EndTime: "12:00"},
				}},
				{Day: Tuesday, Periods: []Period{
					{Subject: "Physics", StartTime: "09:00", EndTime: "10:00"},
					{Subject: "English", StartTime: "10:00", EndTime: "11:00"},
					{Subject: "Mathematics", StartTime: "11:00", EndTime: "12:00"},
				}},
				{Day: Wednesday, Periods: []Period{
					{Subject: "Chemistry", StartTime: "09:00", EndTime: "10:00"},
					{Subject: "Computer Science", StartTime: "10:00", EndTime: "11:00"},
					{Subject: "English", StartTime: "11:00", EndTime: "12:00"},
				}},
				{Day: Thursday, Periods: []Period{
					{Subject: "Mathematics", StartTime: "09:00", EndTime: "10:00"},
					{Subject: "Chemistry", StartTime: "10:00", EndTime: "11:00"},
					{Subject: "Computer Science", StartTime: "11:00", EndTime: "12:00"},
				}},
				{Day: Friday, Periods: []Period{
					{Subject: "English", StartTime: "09:00", EndTime: "10:00"},
					{Subject: "Physics", StartTime: "10:00", EndTime: "11:00"},
					{Subject: "Computer Science", StartTime: "11:00", EndTime: "12:00"},
				}},
			},
		},
	}
}
