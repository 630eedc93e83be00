package engine

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/domain"
)

// candidatePools precomputes, once per run, the qualified-faculty and
// suitable-room sets for every (course, session type) pair so that
// construction and mutation never re-scan the snapshot per gene.
type candidatePools struct {
	snapshot  domain.Snapshot
	slots     []domain.TimeSlot
	faculty   map[string][]domain.Faculty // keyed by course code + session type
	rooms     map[string]map[string][]domain.Room // keyed by course code + session type, then section name (capacity varies by section)
}

func poolKey(courseCode string, sessionType domain.SessionType) string {
	return courseCode + "|" + string(sessionType)
}

func buildCandidatePools(snapshot domain.Snapshot) *candidatePools {
	pools := &candidatePools{
		snapshot: snapshot,
		slots:    snapshot.ActiveTimeSlots(),
		faculty:  make(map[string][]domain.Faculty),
		rooms:    make(map[string]map[string][]domain.Room),
	}
	for _, course := range snapshot.Courses {
		if course.HasTheory() {
			key := poolKey(course.Code, domain.SessionTheory)
			pools.faculty[key] = QualifiedFaculty(snapshot, course)
			pools.rooms[key] = make(map[string][]domain.Room)
			for _, sec := range course.Sections {
				pools.rooms[key][sec.Name] = SuitableRooms(snapshot, course, domain.SessionTheory, sec)
			}
		}
		if course.HasLab() {
			key := poolKey(course.Code, domain.SessionLab)
			pools.faculty[key] = QualifiedFaculty(snapshot, course)
			pools.rooms[key] = make(map[string][]domain.Room)
			for _, sec := range course.Sections {
				pools.rooms[key][sec.Name] = SuitableRooms(snapshot, course, domain.SessionLab, sec)
			}
		}
	}
	return pools
}

func (p *candidatePools) facultyFor(courseCode string, sessionType domain.SessionType) []domain.Faculty {
	return p.faculty[poolKey(courseCode, sessionType)]
}

func (p *candidatePools) roomsFor(courseCode string, sessionType domain.SessionType, section string) []domain.Room {
	bySection := p.rooms[poolKey(courseCode, sessionType)]
	if bySection == nil {
		return nil
	}
	return bySection[section]
}

// RandomConstruct builds one randomized, type-correct chromosome from the
// snapshot. Requirements with no qualified faculty or no suitable room are
// logged and skipped, not repaired; the chromosome simply ends up short of
// a gene for that session rather than carrying a sentinel violation for it.
func RandomConstruct(snapshot domain.Snapshot, pools *candidatePools, rng *rand.Rand, logger *zap.Logger) domain.Chromosome {
	if logger == nil {
		logger = zap.NewNop()
	}
	var genes []domain.Gene

	for _, course := range snapshot.Courses {
		for _, section := range course.Sections {
			for _, req := range domain.DeriveSessionRequirements(course, section) {
				gene, ok := constructGene(pools, course, section, req, rng)
				if !ok {
					logger.Debug("skipping session requirement with no candidate assignment",
						zap.String("course", course.Code),
						zap.String("section", section.Name),
						zap.String("sessionType", string(req.Type)),
						zap.Int("sessionIndex", req.Index),
					)
					continue
				}
				genes = append(genes, gene)
			}
		}
	}

	return domain.Chromosome{Genes: genes}
}

func constructGene(pools *candidatePools, course domain.Course, section domain.Section, req domain.SessionRequirement, rng *rand.Rand) (domain.Gene, bool) {
	if len(pools.slots) == 0 {
		return domain.Gene{}, false
	}
	facultyPool := pools.facultyFor(course.Code, req.Type)
	if len(facultyPool) == 0 {
		return domain.Gene{}, false
	}
	roomPool := pools.roomsFor(course.Code, req.Type, section.Name)
	if len(roomPool) == 0 {
		return domain.Gene{}, false
	}

	slot := pools.slots[rng.Intn(len(pools.slots))]
	faculty := facultyPool[rng.Intn(len(facultyPool))]
	room := roomPool[rng.Intn(len(roomPool))]

	return domain.Gene{
		CourseCode:       course.Code,
		SectionName:      section.Name,
		SessionType:      req.Type,
		SessionIndex:     req.Index,
		TimeSlotID:       slot.ID,
		FacultyID:        faculty.ID,
		RoomID:           room.ID,
		DurationHours:    req.DurationHours,
		ConsecutiveSlots: req.ConsecutiveSlots,
	}, true
}
