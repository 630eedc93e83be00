package engine

import "github.com/campusforge/timetable-engine/internal/domain"

// RoomSuitable implements the Feasibility Oracle's room-suitability predicate:
// active, big enough, and the right type/subtype/facilities for the session
// being scheduled.
func RoomSuitable(room domain.Room, course domain.Course, sessionType domain.SessionType, section domain.Section) bool {
	if !room.Active {
		return false
	}
	if room.Capacity < section.Strength {
		return false
	}

	switch sessionType {
	case domain.SessionLab:
		if room.Type != domain.RoomLab {
			return false
		}
		req := course.LabRoom.LabSubtype
		if req != "" && req != "general" && room.LabSubtype != req {
			return false
		}
		return hasAllFacilities(room, course.LabRoom.Facilities) &&
			(!course.LabRoom.NeedsProjector || room.HasFacility(domain.FacilityProjector)) &&
			(!course.LabRoom.NeedsComputers || room.HasFacility(domain.FacilityComputers))
	default: // theory
		if room.Type != domain.RoomClassroom && room.Type != domain.RoomSeminarHall {
			return false
		}
		return hasAllFacilities(room, course.TheoryRoom.Facilities) &&
			(!course.TheoryRoom.NeedsProjector || room.HasFacility(domain.FacilityProjector)) &&
			(!course.TheoryRoom.NeedsComputers || room.HasFacility(domain.FacilityComputers))
	}
}

func hasAllFacilities(room domain.Room, required []domain.Facility) bool {
	for _, f := range required {
		if !room.HasFacility(f) {
			return false
		}
	}
	return true
}

// FacultyQualified implements the Feasibility Oracle's qualification
// predicate.
func FacultyQualified(faculty domain.Faculty, course domain.Course) bool {
	return faculty.Active && faculty.IsQualifiedFor(course.Code)
}

// FacultyAvailable implements the Feasibility Oracle's availability
// predicate: at least one window on day fully contains [start,end] as
// "HH:MM" lex-comparable strings.
func FacultyAvailable(faculty domain.Faculty, day domain.Day, start, end string) bool {
	return faculty.Active && faculty.AvailableOn(day, start, end)
}

// QualifiedFaculty returns every faculty member who satisfies FacultyQualified
// for the given course.
func QualifiedFaculty(snapshot domain.Snapshot, course domain.Course) []domain.Faculty {
	var out []domain.Faculty
	for _, f := range snapshot.Faculty {
		if FacultyQualified(f, course) {
			out = append(out, f)
		}
	}
	return out
}

// SuitableRooms returns every room that satisfies RoomSuitable for the given
// course/session/section.
func SuitableRooms(snapshot domain.Snapshot, course domain.Course, sessionType domain.SessionType, section domain.Section) []domain.Room {
	var out []domain.Room
	for _, r := range snapshot.Rooms {
		if RoomSuitable(r, course, sessionType, section) {
			out = append(out, r)
		}
	}
	return out
}
