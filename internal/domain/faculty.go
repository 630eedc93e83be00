package domain

// AvailabilityWindow is one open range on a given day, "HH:MM" lex-comparable.
type AvailabilityWindow struct {
	Day   Day    `db:"day" json:"day"`
	Start string `db:"start_time" json:"start"`
	End   string `db:"end_time" json:"end"`
}

// WorkloadBounds caps weekly teaching hours.
type WorkloadBounds struct {
	MinHours int `db:"min_hours" json:"minHours"`
	MaxHours int `db:"max_hours" json:"maxHours"`
}

// Preferences captures soft scheduling preferences for a faculty member.
type Preferences struct {
	PreferredSlots    []string `db:"-" json:"preferredSlots,omitempty"` // time-slot IDs
	AvoidSlots        []string `db:"-" json:"avoidSlots,omitempty"`
	MaxConsecutiveHrs int      `db:"max_consecutive_hours" json:"maxConsecutiveHours"`
}

// Faculty is an instructor available to teach qualified courses.
type Faculty struct {
	ID            string              `db:"id" json:"id"`
	Department    string              `db:"department" json:"department"`
	Qualified     []string            `db:"-" json:"qualified"` // course codes this faculty may teach
	Availability  []AvailabilityWindow `db:"-" json:"availability"`
	Workload      WorkloadBounds      `db:"-" json:"workload"`
	Preferences   Preferences         `db:"-" json:"preferences"`
	Active        bool                `db:"active" json:"active"`
}

// IsQualifiedFor reports whether the faculty may teach the given course.
func (f Faculty) IsQualifiedFor(courseCode string) bool {
	for _, code := range f.Qualified {
		if code == courseCode {
			return true
		}
	}
	return false
}

// AvailableOn reports whether some availability window on day fully contains [start,end].
func (f Faculty) AvailableOn(day Day, start, end string) bool {
	for _, w := range f.Availability {
		if w.Day == day && ContainsWindow(w.Start, w.End, start, end) {
			return true
		}
	}
	return false
}
