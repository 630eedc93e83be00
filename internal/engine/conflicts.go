package engine

import (
	"fmt"

	"github.com/campusforge/timetable-engine/internal/domain"
)

// Conflict is one double-booking found by the fast detect-conflicts pass.
type Conflict struct {
	Kind     string           `json:"kind"` // "faculty", "room", or "section"
	Severity domain.ConstraintKind `json:"severity"`
	Entity   string           `json:"entity"`
	Day      domain.Day       `json:"day"`
	Slot     int              `json:"slot"`
	Message  string           `json:"message"`
	Genes    []domain.GeneKey `json:"genes"`
}

// DetectConflicts scans a chromosome for faculty/room/section double-bookings
// only. It is intentionally a strict subset of Validate's hard violations —
// cheap enough to run on every candidate chromosome without walking the full
// constraint catalog.
func DetectConflicts(snapshot domain.Snapshot, chromosome domain.Chromosome) []Conflict {
	genes := enrich(snapshot, chromosome.Genes)

	faculty := map[bookingKey][]domain.GeneKey{}
	room := map[bookingKey][]domain.GeneKey{}
	section := map[bookingKey][]domain.GeneKey{}

	for _, g := range genes {
		if !g.slotOK {
			continue
		}
		day, slot := g.slot.Day, g.slot.SlotNumber
		if g.facultyOK {
			k := bookingKey{g.gene.FacultyID, day, slot}
			faculty[k] = append(faculty[k], g.gene.Key())
		}
		if g.roomOK {
			k := bookingKey{g.gene.RoomID, day, slot}
			room[k] = append(room[k], g.gene.Key())
		}
		k := bookingKey{g.gene.CourseCode + "|" + g.gene.SectionName, day, slot}
		section[k] = append(section[k], g.gene.Key())
	}

	var out []Conflict
	out = append(out, conflictsFrom("faculty", faculty)...)
	out = append(out, conflictsFrom("room", room)...)
	out = append(out, conflictsFrom("section", section)...)
	return out
}

func conflictsFrom(kind string, occupied map[bookingKey][]domain.GeneKey) []Conflict {
	var out []Conflict
	for key, keys := range occupied {
		if len(keys) <= 1 {
			continue
		}
		out = append(out, Conflict{
			Kind:     kind,
			Severity: domain.KindHard,
			Entity:   key.Entity,
			Day:      key.Day,
			Slot:     key.Slot,
			Message:  fmt.Sprintf("%s %s double-booked on day %d slot %d", kind, key.Entity, key.Day, key.Slot),
			Genes:    keys,
		})
	}
	return out
}
