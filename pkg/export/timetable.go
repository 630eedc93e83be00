package export

import (
	"fmt"
	"sort"

	"github.com/campusforge/timetable-engine/internal/domain"
)

// TimetableDataset flattens a solved chromosome into the generic tabular
// Dataset shape CSVExporter/PDFExporter already know how to render.
func TimetableDataset(snapshot domain.Snapshot, chromosome domain.Chromosome) Dataset {
	headers := []string{"Day", "Slot", "Course", "Section", "Session", "Faculty", "Room"}

	rows := make([]map[string]string, 0, len(chromosome.Genes))
	for _, g := range chromosome.Genes {
		slot, _ := snapshot.FindTimeSlot(g.TimeSlotID)
		rows = append(rows, map[string]string{
			"Day":      dayName(slot.Day),
			"Slot":     fmt.Sprintf("%d (%s-%s)", slot.SlotNumber, slot.Start, slot.End),
			"Course":   g.CourseCode,
			"Section":  g.SectionName,
			"Session":  fmt.Sprintf("%s #%d", g.SessionType, g.SessionIndex+1),
			"Faculty":  g.FacultyID,
			"Room":     g.RoomID,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i]["Day"] != rows[j]["Day"] {
			return rows[i]["Day"] < rows[j]["Day"]
		}
		return rows[i]["Slot"] < rows[j]["Slot"]
	})

	return Dataset{Headers: headers, Rows: rows}
}

func dayName(d domain.Day) string {
	names := [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if int(d) < 1 || int(d) >= len(names) {
		return fmt.Sprintf("Day %d", d)
	}
	return names[d]
}
