package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFacultyIsQualifiedFor(t *testing.T) {
	f := Faculty{Qualified: []string{"CS101", "CS102"}}
	assert.True(t, f.IsQualifiedFor("CS101"))
	assert.False(t, f.IsQualifiedFor("CS999"))
}

func TestFacultyAvailableOnRequiresFullContainment(t *testing.T) {
	f := Faculty{Availability: []AvailabilityWindow{{Day: 1, Start: "09:00", End: "12:00"}}}

	assert.True(t, f.AvailableOn(1, "09:00", "10:00"))
	assert.False(t, f.AvailableOn(1, "08:00", "10:00"), "window starts before availability opens")
	assert.False(t, f.AvailableOn(1, "11:00", "13:00"), "window ends after availability closes")
	assert.False(t, f.AvailableOn(2, "09:00", "10:00"), "wrong day")
}

func TestRoomHasFacility(t *testing.T) {
	r := Room{Facilities: []Facility{FacilityProjector}}
	assert.True(t, r.HasFacility(FacilityProjector))
	assert.False(t, r.HasFacility(FacilityComputers))
}

func TestTimeSlotIsTeachable(t *testing.T) {
	assert.True(t, TimeSlot{Active: true, Type: SlotRegular}.IsTeachable())
	assert.False(t, TimeSlot{Active: true, Type: SlotLunch}.IsTeachable())
	assert.False(t, TimeSlot{Active: true, Type: SlotBreak}.IsTeachable())
	assert.False(t, TimeSlot{Active: false, Type: SlotRegular}.IsTeachable())
}

func TestConsecutiveSlots(t *testing.T) {
	a := TimeSlot{Day: 1, SlotNumber: 1, Type: SlotRegular}
	b := TimeSlot{Day: 1, SlotNumber: 2, Type: SlotRegular}
	c := TimeSlot{Day: 2, SlotNumber: 2, Type: SlotRegular}
	lunch := TimeSlot{Day: 1, SlotNumber: 2, Type: SlotLunch}

	assert.True(t, Consecutive(a, b))
	assert.False(t, Consecutive(a, c), "different days")
	assert.False(t, Consecutive(a, lunch), "lunch slots never count as consecutive")
}
