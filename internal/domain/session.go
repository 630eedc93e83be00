package domain

// SessionType distinguishes a theory meeting from a lab meeting.
type SessionType string

const (
	SessionTheory SessionType = "theory"
	SessionLab    SessionType = "lab"
)

// SessionRequirement is one derived meeting that a (course, section) must be
// assigned a gene for. It is never stored; it is computed from the course's
// SessionSpec.
type SessionRequirement struct {
	CourseCode       string
	SectionName      string
	Type             SessionType
	Index            int // 0-based ordinal among sessions of this type for this section
	DurationHours    int
	ConsecutiveSlots int // >1 for multi-slot sessions (e.g. a 2-hour lab occupying 2 one-hour slots)
	RequiresContinuity bool
}

// DeriveSessionRequirements expands a course's theory/lab specs for one
// section into the multiset of sessions that must each receive a gene.
func DeriveSessionRequirements(c Course, s Section) []SessionRequirement {
	var reqs []SessionRequirement

	if c.HasTheory() {
		count := c.Theory.SessionCount()
		for i := 0; i < count; i++ {
			reqs = append(reqs, SessionRequirement{
				CourseCode:    c.Code,
				SectionName:   s.Name,
				Type:          SessionTheory,
				Index:         i,
				DurationHours: c.Theory.SessionDuration,
				ConsecutiveSlots: consecutiveSlotsFor(c.Theory),
			})
		}
	}

	if c.HasLab() {
		count := c.Lab.SessionCount()
		for i := 0; i < count; i++ {
			reqs = append(reqs, SessionRequirement{
				CourseCode:        c.Code,
				SectionName:       s.Name,
				Type:              SessionLab,
				Index:             i,
				DurationHours:     c.Lab.SessionDuration,
				ConsecutiveSlots:  consecutiveSlotsFor(c.Lab),
				RequiresContinuity: c.Lab.ContinuityRequired,
			})
		}
	}

	return reqs
}

func consecutiveSlotsFor(spec SessionSpec) int {
	if spec.SessionDuration <= 1 {
		return 1
	}
	return spec.SessionDuration
}
