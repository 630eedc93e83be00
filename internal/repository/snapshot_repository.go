package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusforge/timetable-engine/internal/domain"
	"github.com/campusforge/timetable-engine/internal/models"
)

// SnapshotRepository loads the five input collections an engine run needs
// out of Postgres, assembling a domain.Snapshot the way the teacher's
// TeacherRepository/ScheduleRepository assemble their own row sets.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs a SnapshotRepository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load fetches the courses matching filter plus every active faculty member,
// room, time slot and constraint, and assembles them into a Snapshot.
func (r *SnapshotRepository) Load(ctx context.Context, filter models.SnapshotFilter) (domain.Snapshot, error) {
	courses, err := r.loadCourses(ctx, filter)
	if err != nil {
		return domain.Snapshot{}, err
	}
	faculty, err := r.loadFaculty(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	rooms, err := r.loadRooms(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	slots, err := r.loadTimeSlots(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	constraints, err := r.loadConstraints(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	return domain.Snapshot{
		Courses:     courses,
		Faculty:     faculty,
		Rooms:       rooms,
		TimeSlots:   slots,
		Constraints: constraints,
	}, nil
}

func (r *SnapshotRepository) loadCourses(ctx context.Context, filter models.SnapshotFilter) ([]domain.Course, error) {
	query := `SELECT code, department, semester, course_type, theory, lab, sections, elective_group, theory_room, lab_room, created_at, updated_at FROM courses WHERE 1=1`
	var args []interface{}
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if filter.Semester != 0 {
		args = append(args, filter.Semester)
		query += fmt.Sprintf(" AND semester = $%d", len(args))
	}

	var rows []models.CourseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}

	courses := make([]domain.Course, 0, len(rows))
	for _, row := range rows {
		c, err := courseFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode course %s: %w", row.Code, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (r *SnapshotRepository) loadFaculty(ctx context.Context) ([]domain.Faculty, error) {
	const query = `SELECT id, department, qualified, availability, workload, preferences, active, created_at, updated_at FROM faculty WHERE active = TRUE`
	var rows []models.FacultyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load faculty: %w", err)
	}

	faculty := make([]domain.Faculty, 0, len(rows))
	for _, row := range rows {
		f, err := facultyFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode faculty %s: %w", row.ID, err)
		}
		faculty = append(faculty, f)
	}
	return faculty, nil
}

func (r *SnapshotRepository) loadRooms(ctx context.Context) ([]domain.Room, error) {
	const query = `SELECT id, room_type, lab_subtype, capacity, facilities, active, created_at, updated_at FROM rooms WHERE active = TRUE`
	var rows []models.RoomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	rooms := make([]domain.Room, 0, len(rows))
	for _, row := range rows {
		rm, err := roomFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode room %s: %w", row.ID, err)
		}
		rooms = append(rooms, rm)
	}
	return rooms, nil
}

func (r *SnapshotRepository) loadTimeSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	const query = `SELECT id, day, slot_number, start_time, end_time, slot_type, active, created_at FROM time_slots WHERE active = TRUE ORDER BY day, slot_number`
	var rows []models.TimeSlotRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}

	slots := make([]domain.TimeSlot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, timeSlotFromRow(row))
	}
	return slots, nil
}

func (r *SnapshotRepository) loadConstraints(ctx context.Context) ([]domain.Constraint, error) {
	const query = `SELECT name, kind, category, priority, weight, active, params, description, created_at FROM constraints WHERE active = TRUE`
	var rows []models.ConstraintRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}

	constraints := make([]domain.Constraint, 0, len(rows))
	for _, row := range rows {
		c, err := constraintFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode constraint %s: %w", row.Name, err)
		}
		constraints = append(constraints, c)
	}
	return constraints, nil
}

func courseFromRow(row models.CourseRow) (domain.Course, error) {
	c := domain.Course{
		Code:          row.Code,
		Department:    row.Department,
		Semester:      row.Semester,
		Type:          domain.CourseType(row.Type),
		ElectiveGroup: row.ElectiveGroup,
	}
	if len(row.Theory) > 0 {
		if err := json.Unmarshal(row.Theory, &c.Theory); err != nil {
			return domain.Course{}, err
		}
	}
	if len(row.Lab) > 0 {
		if err := json.Unmarshal(row.Lab, &c.Lab); err != nil {
			return domain.Course{}, err
		}
	}
	if len(row.Sections) > 0 {
		if err := json.Unmarshal(row.Sections, &c.Sections); err != nil {
			return domain.Course{}, err
		}
	}
	if len(row.TheoryRoom) > 0 {
		if err := json.Unmarshal(row.TheoryRoom, &c.TheoryRoom); err != nil {
			return domain.Course{}, err
		}
	}
	if len(row.LabRoom) > 0 {
		if err := json.Unmarshal(row.LabRoom, &c.LabRoom); err != nil {
			return domain.Course{}, err
		}
	}
	return c, nil
}

func facultyFromRow(row models.FacultyRow) (domain.Faculty, error) {
	f := domain.Faculty{
		ID:         row.ID,
		Department: row.Department,
		Active:     row.Active,
	}
	if len(row.Qualified) > 0 {
		if err := json.Unmarshal(row.Qualified, &f.Qualified); err != nil {
			return domain.Faculty{}, err
		}
	}
	if len(row.Availability) > 0 {
		if err := json.Unmarshal(row.Availability, &f.Availability); err != nil {
			return domain.Faculty{}, err
		}
	}
	if len(row.Workload) > 0 {
		if err := json.Unmarshal(row.Workload, &f.Workload); err != nil {
			return domain.Faculty{}, err
		}
	}
	if len(row.Preferences) > 0 {
		if err := json.Unmarshal(row.Preferences, &f.Preferences); err != nil {
			return domain.Faculty{}, err
		}
	}
	return f, nil
}

func roomFromRow(row models.RoomRow) (domain.Room, error) {
	rm := domain.Room{
		ID:         row.ID,
		Type:       domain.RoomType(row.Type),
		LabSubtype: row.LabSubtype,
		Capacity:   row.Capacity,
		Active:     row.Active,
	}
	if len(row.Facilities) > 0 {
		if err := json.Unmarshal(row.Facilities, &rm.Facilities); err != nil {
			return domain.Room{}, err
		}
	}
	return rm, nil
}

func timeSlotFromRow(row models.TimeSlotRow) domain.TimeSlot {
	return domain.TimeSlot{
		ID:         row.ID,
		Day:        domain.Day(row.Day),
		SlotNumber: row.SlotNumber,
		Start:      row.Start,
		End:        row.End,
		Type:       domain.SlotType(row.Type),
		Active:     row.Active,
	}
}

func constraintFromRow(row models.ConstraintRow) (domain.Constraint, error) {
	c := domain.Constraint{
		Name:        row.Name,
		Kind:        domain.ConstraintKind(row.Kind),
		Category:    domain.ConstraintCategory(row.Category),
		Priority:    row.Priority,
		Weight:      row.Weight,
		Active:      row.Active,
		Description: row.Description,
	}
	if len(row.Params) > 0 {
		if err := json.Unmarshal(row.Params, &c.Params); err != nil {
			return domain.Constraint{}, err
		}
	}
	return c, nil
}
