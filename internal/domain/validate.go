package domain

import "strings"

// Warning describes a consistency correction applied by the validation
// pass. Warnings are surfaced to the caller and logged, but the operation
// that triggered them still succeeds: these are derived-state repairs,
// not user input errors.
type Warning string

// Normalize forces the occurrence into its nearest consistent state and
// reports every correction made. The rules, applied in order:
//
//  1. a holiday never happened, was never attended, covers no topics,
//     and carries no slot times;
//  2. an attended class must have happened;
//  3. topics can only be recorded for a class that happened and was
//     attended.
func (o *Occurrence) Normalize() []Warning {
	var warnings []Warning
	if o.IsHoliday {
		if o.Happened || o.Attended {
			warnings = append(warnings, "holiday occurrence cannot be happened or attended; flags cleared")
			o.Happened = false
			o.Attended = false
		}
		if len(o.TopicsCovered) > 0 {
			warnings = append(warnings, "holiday occurrence cannot cover topics; topics cleared")
			o.TopicsCovered = nil
		}
		if o.StartTime != "" || o.EndTime != "" {
			o.StartTime = ""
			o.EndTime = ""
		}
		return warnings
	}
	if o.Attended && !o.Happened {
		// Attending implies the class took place.
		warnings = append(warnings, "attended occurrence marked as happened")
		o.Happened = true
	}
	if len(o.TopicsCovered) > 0 && !(o.Happened && o.Attended) {
		warnings = append(warnings, "topics require a happened and attended occurrence; topics cleared")
		o.TopicsCovered = nil
	}
	return warnings
}

// SplitTopics converts the comma-joined topics string the API accepts
// into a trimmed list, dropping empty entries.
func SplitTopics(topics string) []string {
	var out []string
	for _, part := range strings.Split(topics, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
