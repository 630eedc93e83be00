package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/campusforge/timetable-engine/internal/domain"
)

// Violation is one constraint audit failure, naming the constraint that
// produced it and the genes responsible.
type Violation struct {
	Constraint string                    `json:"constraint"`
	Category   domain.ConstraintCategory `json:"category"`
	Kind       domain.ConstraintKind     `json:"kind"`
	Description string                   `json:"description"`
	Message    string                    `json:"message"`
	Genes      []domain.GeneKey          `json:"genes,omitempty"`
}

// ValidationReport is the Constraint Validator's post-hoc audit of a
// chromosome against a named catalog, independent of (but consistent with)
// the faster in-loop Fitness Evaluator.
type ValidationReport struct {
	Hard       []Violation `json:"hard"`
	Soft       []Violation `json:"soft"`
	TotalHard  int         `json:"totalHard"`
	TotalSoft  int         `json:"totalSoft"`
	ByCategory map[domain.ConstraintCategory]int `json:"byCategory"`
}

// Validate audits a chromosome against every active constraint in the
// snapshot's catalog, dispatching by category. Within faculty-workload,
// room-allocation and student-section the specific check is picked by
// matching a keyword in the constraint's own name, matching the teacher
// catalog's convention of naming constraints after the rule they enforce
// (e.g. "Faculty Max Hours", "Room Double Booking").
func Validate(snapshot domain.Snapshot, chromosome domain.Chromosome) ValidationReport {
	genes := enrich(snapshot, chromosome.Genes)
	report := ValidationReport{ByCategory: map[domain.ConstraintCategory]int{}}

	for _, c := range snapshot.Constraints {
		if !c.Active {
			continue
		}
		var found []Violation
		switch c.Category {
		case domain.CategoryFacultyWorkload:
			found = validateFacultyWorkload(c, genes)
		case domain.CategoryRoomAllocation:
			found = validateRoomAllocation(c, genes)
		case domain.CategoryStudentSection:
			found = validateStudentSection(c, genes)
		case domain.CategoryLabContinuity:
			found = validateLabContinuity(c, genes)
		case domain.CategoryElectiveGrouping:
			found = validateElectiveGrouping(c, snapshot, genes)
		case domain.CategoryTimeSlot, domain.CategoryPreference, domain.CategoryInstitutionalPolicy:
			// Reserved: no violations unless a specific rule is implemented.
			continue
		default:
			continue
		}
		for _, v := range found {
			v.Description = c.Description
			if v.Kind == domain.KindHard {
				report.Hard = append(report.Hard, v)
				report.TotalHard++
			} else {
				report.Soft = append(report.Soft, v)
				report.TotalSoft++
			}
			report.ByCategory[v.Category]++
		}
	}

	return report
}

func nameMentions(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// validateFacultyWorkload flags over-max hours when the constraint's name
// mentions "Max", under-min hours when it mentions "Min", and same-slot
// double-bookings when it mentions "Double Booking" — the latter keeps this
// category's hard violations a superset of DetectConflicts' faculty findings.
func validateFacultyWorkload(c domain.Constraint, genes []enrichedGene) []Violation {
	checkMax := nameMentions(c.Name, "max")
	checkMin := nameMentions(c.Name, "min")
	checkDoubleBooking := nameMentions(c.Name, "double booking")
	if !checkMax && !checkMin && !checkDoubleBooking {
		return nil
	}

	var out []Violation

	if checkDoubleBooking {
		occupied := map[bookingKey][]domain.GeneKey{}
		for _, g := range genes {
			if !g.slotOK || !g.facultyOK {
				continue
			}
			key := bookingKey{g.gene.FacultyID, g.slot.Day, g.slot.SlotNumber}
			occupied[key] = append(occupied[key], g.gene.Key())
		}
		for key, keys := range occupied {
			if len(keys) > 1 {
				out = append(out, Violation{
					Constraint: c.Name, Category: c.Category, Kind: c.Kind,
					Message: fmt.Sprintf("faculty %s double-booked on day %d slot %d", key.Entity, key.Day, key.Slot),
					Genes:   keys,
				})
			}
		}
	}

	if !checkMax && !checkMin {
		return out
	}

	hours := map[string]int{}
	faculties := map[string]domain.Faculty{}
	for _, g := range genes {
		if !g.facultyOK {
			continue
		}
		hours[g.gene.FacultyID] += g.gene.DurationHours
		faculties[g.gene.FacultyID] = g.faculty
	}

	for id, h := range hours {
		f := faculties[id]
		if checkMax && f.Workload.MaxHours > 0 && h > f.Workload.MaxHours {
			out = append(out, Violation{
				Constraint: c.Name, Category: c.Category, Kind: c.Kind,
				Message: fmt.Sprintf("faculty %s assigned %d hours, exceeds max %d", id, h, f.Workload.MaxHours),
			})
		}
		if checkMin && f.Workload.MinHours > 0 && h < f.Workload.MinHours {
			out = append(out, Violation{
				Constraint: c.Name, Category: c.Category, Kind: c.Kind,
				Message: fmt.Sprintf("faculty %s assigned %d hours, below min %d", id, h, f.Workload.MinHours),
			})
		}
	}
	return out
}

// validateRoomAllocation detects (room, day, slot) duplicates when the
// constraint's name mentions "Double Booking", and capacity shortfalls when
// it mentions "Capacity".
func validateRoomAllocation(c domain.Constraint, genes []enrichedGene) []Violation {
	var out []Violation

	if nameMentions(c.Name, "double booking") {
		occupied := map[bookingKey][]domain.GeneKey{}
		for _, g := range genes {
			if !g.slotOK || !g.roomOK {
				continue
			}
			key := bookingKey{g.gene.RoomID, g.slot.Day, g.slot.SlotNumber}
			occupied[key] = append(occupied[key], g.gene.Key())
		}
		for key, keys := range occupied {
			if len(keys) > 1 {
				out = append(out, Violation{
					Constraint: c.Name, Category: c.Category, Kind: c.Kind,
					Message: fmt.Sprintf("room %s double-booked on day %d slot %d", key.Entity, key.Day, key.Slot),
					Genes:   keys,
				})
			}
		}
	}

	if nameMentions(c.Name, "capacity") {
		for _, g := range genes {
			if !g.roomOK || !g.sectionOK {
				continue
			}
			if g.room.Capacity < g.section.Strength {
				out = append(out, Violation{
					Constraint: c.Name, Category: c.Category, Kind: c.Kind,
					Message: fmt.Sprintf("room %s capacity %d below section %s strength %d", g.gene.RoomID, g.room.Capacity, g.gene.SectionName, g.section.Strength),
					Genes:   []domain.GeneKey{g.gene.Key()},
				})
			}
		}
	}
	return out
}

// validateStudentSection detects (section, day, slot) duplicates when the
// constraint's name mentions "Conflict", and gaps greater than 2 between
// consecutive same-day slots when it mentions "Gap".
func validateStudentSection(c domain.Constraint, genes []enrichedGene) []Violation {
	var out []Violation

	if nameMentions(c.Name, "conflict") {
		occupied := map[bookingKey][]domain.GeneKey{}
		for _, g := range genes {
			if !g.slotOK {
				continue
			}
			key := bookingKey{g.gene.CourseCode + "|" + g.gene.SectionName, g.slot.Day, g.slot.SlotNumber}
			occupied[key] = append(occupied[key], g.gene.Key())
		}
		for key, keys := range occupied {
			if len(keys) > 1 {
				out = append(out, Violation{
					Constraint: c.Name, Category: c.Category, Kind: c.Kind,
					Message: fmt.Sprintf("section %s double-booked on day %d slot %d", key.Entity, key.Day, key.Slot),
					Genes:   keys,
				})
			}
		}
	}

	if nameMentions(c.Name, "gap") {
		groups := map[sectionKey]map[domain.Day][]int{}
		for _, g := range genes {
			if !g.slotOK {
				continue
			}
			k := sectionKey{g.gene.CourseCode, g.gene.SectionName}
			if groups[k] == nil {
				groups[k] = map[domain.Day][]int{}
			}
			groups[k][g.slot.Day] = append(groups[k][g.slot.Day], g.slot.SlotNumber)
		}
		for k, byDay := range groups {
			for day, slots := range byDay {
				if gapsOver(slots, 2) {
					out = append(out, Violation{
						Constraint: c.Name, Category: c.Category, Kind: c.Kind,
						Message: fmt.Sprintf("section %s/%s has a gap greater than 2 slots on day %d", k.Course, k.Section, day),
					})
				}
			}
		}
	}
	return out
}

func gapsOver(slots []int, threshold int) bool {
	if gapSum(slots) == 0 {
		return false
	}
	sorted := append([]int(nil), slots...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1]-1 > threshold {
			return true
		}
	}
	return false
}

func validateLabContinuity(c domain.Constraint, genes []enrichedGene) []Violation {
	index := make(map[string]enrichedGene, len(genes))
	for _, g := range genes {
		if !g.slotOK {
			continue
		}
		index[continuityIndexKey(g.gene.CourseCode, g.gene.SectionName, g.gene.FacultyID, g.gene.RoomID, g.slot.Day, g.slot.SlotNumber)] = g
	}

	var out []Violation
	for _, g := range genes {
		if g.gene.SessionType != domain.SessionLab || g.gene.ConsecutiveSlots <= 1 || !g.slotOK {
			continue
		}
		for offset := 1; offset < g.gene.ConsecutiveSlots; offset++ {
			key := continuityIndexKey(g.gene.CourseCode, g.gene.SectionName, g.gene.FacultyID, g.gene.RoomID, g.slot.Day, g.slot.SlotNumber+offset)
			if _, ok := index[key]; !ok {
				out = append(out, Violation{
					Constraint: c.Name, Category: c.Category, Kind: c.Kind,
					Message: fmt.Sprintf("lab session %s/%s breaks continuity after slot %d", g.gene.CourseCode, g.gene.SectionName, g.slot.SlotNumber+offset-1),
					Genes:   []domain.GeneKey{g.gene.Key()},
				})
			}
		}
	}
	return out
}

// validateElectiveGrouping groups genes by (elective-group, day, slot) using
// the course's elective-group key; any bucket of size >= 2 is a violation
// naming the overlapping course codes.
func validateElectiveGrouping(c domain.Constraint, snapshot domain.Snapshot, genes []enrichedGene) []Violation {
	groupOf := make(map[string]string, len(snapshot.Courses))
	for _, course := range snapshot.Courses {
		if course.ElectiveGroup != "" {
			groupOf[course.Code] = course.ElectiveGroup
		}
	}
	if len(groupOf) == 0 {
		return nil
	}

	type slotKey struct {
		Group string
		Day   domain.Day
		Slot  int
	}
	occupied := map[slotKey]map[string]bool{}
	keys := map[slotKey][]domain.GeneKey{}
	for _, g := range genes {
		if !g.slotOK {
			continue
		}
		group, ok := groupOf[g.gene.CourseCode]
		if !ok {
			continue
		}
		key := slotKey{group, g.slot.Day, g.slot.SlotNumber}
		if occupied[key] == nil {
			occupied[key] = map[string]bool{}
		}
		occupied[key][g.gene.CourseCode] = true
		keys[key] = append(keys[key], g.gene.Key())
	}

	var out []Violation
	for key, courses := range occupied {
		if len(courses) < 2 {
			continue
		}
		codes := make([]string, 0, len(courses))
		for code := range courses {
			codes = append(codes, code)
		}
		out = append(out, Violation{
			Constraint: c.Name, Category: c.Category, Kind: c.Kind,
			Message: fmt.Sprintf("elective group %s overlaps on day %d slot %d between %s", key.Group, key.Day, key.Slot, strings.Join(codes, ", ")),
			Genes:   keys[key],
		})
	}
	return out
}
