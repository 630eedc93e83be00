package engine

import (
	"math"
	"sort"
	"strconv"

	"github.com/campusforge/timetable-engine/internal/domain"
)

// sectionKey identifies a (course, section) pair for grouping.
type sectionKey struct {
	Course  string
	Section string
}

// enrichedGene resolves a gene's references against the snapshot once, so
// every detector can reuse the lookup instead of re-scanning.
type enrichedGene struct {
	gene       domain.Gene
	slot       domain.TimeSlot
	slotOK     bool
	faculty    domain.Faculty
	facultyOK  bool
	room       domain.Room
	roomOK     bool
	course     domain.Course
	courseOK   bool
	section    domain.Section
	sectionOK  bool
}

func enrich(snapshot domain.Snapshot, genes []domain.Gene) []enrichedGene {
	out := make([]enrichedGene, len(genes))
	for i, g := range genes {
		e := enrichedGene{gene: g}
		e.slot, e.slotOK = snapshot.FindTimeSlot(g.TimeSlotID)
		e.faculty, e.facultyOK = snapshot.FindFaculty(g.FacultyID)
		e.room, e.roomOK = snapshot.FindRoom(g.RoomID)
		e.course, e.courseOK = snapshot.FindCourse(g.CourseCode)
		if e.courseOK {
			e.section, e.sectionOK = snapshot.FindSection(g.CourseCode, g.SectionName)
		}
		out[i] = e
	}
	return out
}

// violationTally accumulates per-category occurrence counts for one evaluation.
type violationTally map[string]int

func (t violationTally) add(name string, n int) {
	if n <= 0 {
		return
	}
	t[name] += n
}

// Evaluate scores a chromosome against the snapshot: a scalar fitness,
// hard/soft violation counts, and a per-category breakdown.
func Evaluate(snapshot domain.Snapshot, chromosome domain.Chromosome, weights Weights) domain.EvaluationResult {
	if weights == nil {
		weights = DefaultWeights()
	}
	genes := enrich(snapshot, chromosome.Genes)
	tally := violationTally{}

	detectUnknownReferences(genes, tally)
	detectDoubleBookings(genes, tally)
	detectAvailability(genes, tally)
	detectLabContinuity(genes, tally)
	detectRoomCapacity(genes, tally)
	detectWorkloadBounds(genes, tally)
	detectStudentGaps(genes, tally)
	detectFacultyGaps(genes, tally)
	detectWorkloadImbalance(genes, tally)
	detectConsecutiveHours(genes, tally)
	detectPreferenceMismatch(genes, tally)
	detectUnbalancedDaily(genes, tally)

	return scoreFromTally(tally, weights)
}

func scoreFromTally(tally violationTally, weights Weights) domain.EvaluationResult {
	penalty := 0.0
	hard, soft := 0, 0
	categoryCounts := make(map[string]int, len(tally))
	categoryPenalty := make(map[string]float64, len(tally))

	for name, count := range tally {
		w := weights.weightFor(name)
		categoryCounts[name] = count
		categoryPenalty[name] = float64(count) * w
		penalty += float64(count) * w
		if hardViolationNames[name] {
			hard += count
		} else {
			soft += count
		}
	}

	fitness := 1000 - penalty
	if fitness < 0 {
		fitness = 0
	}

	return domain.EvaluationResult{
		Fitness:         fitness,
		HardViolations:  hard,
		SoftViolations:  soft,
		CategoryCounts:  categoryCounts,
		CategoryPenalty: categoryPenalty,
	}
}

func detectUnknownReferences(genes []enrichedGene, tally violationTally) {
	for _, g := range genes {
		missing := 0
		if !g.slotOK {
			missing++
		}
		if !g.facultyOK {
			missing++
		}
		if !g.roomOK {
			missing++
		}
		if !g.courseOK || !g.sectionOK {
			missing++
		}
		tally.add(ViolationUnknownReference, missing)
	}
}

type bookingKey struct {
	Entity string
	Day    domain.Day
	Slot   int
}

func detectDoubleBookings(genes []enrichedGene, tally violationTally) {
	facultyKeys := map[bookingKey]int{}
	roomKeys := map[bookingKey]int{}
	sectionKeys := map[bookingKey]int{}

	for _, g := range genes {
		if !g.slotOK {
			continue
		}
		day, slot := g.slot.Day, g.slot.SlotNumber
		if g.facultyOK {
			facultyKeys[bookingKey{g.gene.FacultyID, day, slot}]++
		}
		if g.roomOK {
			roomKeys[bookingKey{g.gene.RoomID, day, slot}]++
		}
		sectionKeys[bookingKey{g.gene.CourseCode + "|" + g.gene.SectionName, day, slot}]++
	}

	tally.add(ViolationFacultyDoubleBooking, countExtras(facultyKeys))
	tally.add(ViolationRoomDoubleBooking, countExtras(roomKeys))
	tally.add(ViolationSectionDoubleBooking, countExtras(sectionKeys))
}

func countExtras(m map[bookingKey]int) int {
	total := 0
	for _, n := range m {
		if n > 1 {
			total += n - 1
		}
	}
	return total
}

func detectAvailability(genes []enrichedGene, tally violationTally) {
	count := 0
	for _, g := range genes {
		if !g.slotOK || !g.facultyOK {
			continue
		}
		if !FacultyAvailable(g.faculty, g.slot.Day, g.slot.Start, g.slot.End) {
			count++
		}
	}
	tally.add(ViolationFacultyUnavailable, count)
}

func detectLabContinuity(genes []enrichedGene, tally violationTally) {
	index := make(map[string]enrichedGene, len(genes))
	for _, g := range genes {
		if !g.slotOK {
			continue
		}
		key := continuityIndexKey(g.gene.CourseCode, g.gene.SectionName, g.gene.FacultyID, g.gene.RoomID, g.slot.Day, g.slot.SlotNumber)
		index[key] = g
	}

	missing := 0
	for _, g := range genes {
		if g.gene.SessionType != domain.SessionLab || g.gene.ConsecutiveSlots <= 1 || !g.slotOK {
			continue
		}
		for offset := 1; offset < g.gene.ConsecutiveSlots; offset++ {
			key := continuityIndexKey(g.gene.CourseCode, g.gene.SectionName, g.gene.FacultyID, g.gene.RoomID, g.slot.Day, g.slot.SlotNumber+offset)
			if _, ok := index[key]; !ok {
				missing++
			}
		}
	}
	tally.add(ViolationLabContinuityBroken, missing)
}

func continuityIndexKey(course, section, faculty, room string, day domain.Day, slot int) string {
	return course + "|" + section + "|" + faculty + "|" + room + "|" + dayKey(day, slot)
}

func dayKey(day domain.Day, slot int) string {
	return strconv.Itoa(int(day)) + ":" + strconv.Itoa(slot)
}

func detectRoomCapacity(genes []enrichedGene, tally violationTally) {
	count := 0
	for _, g := range genes {
		if !g.roomOK || !g.sectionOK {
			continue
		}
		if g.room.Capacity < g.section.Strength {
			count++
		}
	}
	tally.add(ViolationRoomCapacity, count)
}

func detectWorkloadBounds(genes []enrichedGene, tally violationTally) {
	hours := map[string]int{}
	faculties := map[string]domain.Faculty{}
	for _, g := range genes {
		if !g.facultyOK {
			continue
		}
		hours[g.gene.FacultyID] += g.gene.DurationHours
		faculties[g.gene.FacultyID] = g.faculty
	}

	over, under := 0, 0
	for id, h := range hours {
		f := faculties[id]
		if f.Workload.MaxHours > 0 && h > f.Workload.MaxHours {
			over++
		}
		if f.Workload.MinHours > 0 && h < f.Workload.MinHours {
			under++
		}
	}
	tally.add(ViolationWorkloadOverMax, over)
	tally.add(ViolationWorkloadUnderMin, under)
}

func detectStudentGaps(genes []enrichedGene, tally violationTally) {
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
	tally.add(ViolationStudentGap, sumGaps(groups))
}

func detectFacultyGaps(genes []enrichedGene, tally violationTally) {
	groups := map[string]map[domain.Day][]int{}
	for _, g := range genes {
		if !g.slotOK || !g.facultyOK {
			continue
		}
		if groups[g.gene.FacultyID] == nil {
			groups[g.gene.FacultyID] = map[domain.Day][]int{}
		}
		groups[g.gene.FacultyID][g.slot.Day] = append(groups[g.gene.FacultyID][g.slot.Day], g.slot.SlotNumber)
	}
	tally.add(ViolationFacultyGap, sumGapsString(groups))
}

func sumGaps(groups map[sectionKey]map[domain.Day][]int) int {
	total := 0
	for _, byDay := range groups {
		for _, slots := range byDay {
			total += gapSum(slots)
		}
	}
	return total
}

func sumGapsString(groups map[string]map[domain.Day][]int) int {
	total := 0
	for _, byDay := range groups {
		for _, slots := range byDay {
			total += gapSum(slots)
		}
	}
	return total
}

func gapSum(slots []int) int {
	if len(slots) < 2 {
		return 0
	}
	sorted := append([]int(nil), slots...)
	sort.Ints(sorted)
	total := 0
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1] - 1
		if gap > 0 {
			total += gap
		}
	}
	return total
}

func detectWorkloadImbalance(genes []enrichedGene, tally violationTally) {
	hours := map[string]int{}
	for _, g := range genes {
		if !g.facultyOK {
			continue
		}
		hours[g.gene.FacultyID] += g.gene.DurationHours
	}
	if len(hours) < 2 {
		return
	}
	values := make([]float64, 0, len(hours))
	for _, h := range hours {
		values = append(values, float64(h))
	}
	tally.add(ViolationWorkloadImbalance, int(math.Floor(stddev(values))))
}

func stddev(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func detectConsecutiveHours(genes []enrichedGene, tally violationTally) {
	groups := map[string]map[domain.Day][]int{}
	for _, g := range genes {
		if !g.slotOK || !g.facultyOK {
			continue
		}
		if groups[g.gene.FacultyID] == nil {
			groups[g.gene.FacultyID] = map[domain.Day][]int{}
		}
		groups[g.gene.FacultyID][g.slot.Day] = append(groups[g.gene.FacultyID][g.slot.Day], g.slot.SlotNumber)
	}

	count := 0
	for _, byDay := range groups {
		for _, slots := range byDay {
			count += excessRunLength(slots, 3)
		}
	}
	tally.add(ViolationExcessiveConsecutive, count)
}

// excessRunLength walks sorted slot numbers and counts, for every maximal run
// of consecutive integers longer than max, the slots beyond the max'th.
func excessRunLength(slots []int, max int) int {
	if len(slots) == 0 {
		return 0
	}
	sorted := append([]int(nil), slots...)
	sort.Ints(sorted)

	total := 0
	runLen := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			runLen++
		} else {
			if runLen > max {
				total += runLen - max
			}
			runLen = 1
		}
	}
	if runLen > max {
		total += runLen - max
	}
	return total
}

// detectPreferenceMismatch penalizes a gene placed in a faculty's avoided
// slot, or outside an explicit preferred-slot list when one is declared.
func detectPreferenceMismatch(genes []enrichedGene, tally violationTally) {
	count := 0
	for _, g := range genes {
		if !g.facultyOK {
			continue
		}
		prefs := g.faculty.Preferences
		if contains(prefs.AvoidSlots, g.gene.TimeSlotID) {
			count++
			continue
		}
		if len(prefs.PreferredSlots) > 0 && !contains(prefs.PreferredSlots, g.gene.TimeSlotID) {
			count++
		}
	}
	tally.add(ViolationPreferenceMismatch, count)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// detectUnbalancedDaily penalizes an uneven spread of total sessions across
// the active days of the week, mirroring the per-faculty imbalance metric
// but over the whole chromosome.
func detectUnbalancedDaily(genes []enrichedGene, tally violationTally) {
	perDay := map[domain.Day]int{}
	for _, g := range genes {
		if !g.slotOK {
			continue
		}
		perDay[g.slot.Day]++
	}
	if len(perDay) < 2 {
		return
	}
	values := make([]float64, 0, len(perDay))
	for _, n := range perDay {
		values = append(values, float64(n))
	}
	tally.add(ViolationUnbalancedDaily, int(math.Floor(stddev(values))))
}
