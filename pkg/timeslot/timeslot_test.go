package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClockMinutes(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"07:30", 450, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"08:15:45", 495, true},
		{"08:15:120", 497, true},
		{"8", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
		{"08:xx", 0, false},
		{"08:15:zz", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseClockMinutes(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.input)
		}
	}
}

func TestOverlapsDetectsIntersection(t *testing.T) {
	assert.True(t, Overlaps("08:00", "09:00", "08:30", "09:30"))
	assert.True(t, Overlaps("08:00", "10:00", "08:30", "09:00"))
	assert.False(t, Overlaps("08:00", "09:00", "10:00", "11:00"))
}

func TestOverlapsIsSymmetric(t *testing.T) {
	pairs := [][4]string{
		{"08:00", "09:00", "08:30", "09:30"},
		{"07:00", "07:45", "07:44", "08:30"},
		{"10:00", "11:00", "12:00", "13:00"},
	}
	for _, p := range pairs {
		assert.Equal(t,
			Overlaps(p[0], p[1], p[2], p[3]),
			Overlaps(p[2], p[3], p[0], p[1]),
			"pair %v", p)
	}
}

func TestOverlapsTouchingEndpointsDoNotOverlap(t *testing.T) {
	assert.False(t, Overlaps("08:00", "09:00", "09:00", "10:00"))
	assert.False(t, Overlaps("09:00", "10:00", "08:00", "09:00"))
}

func TestOverlapsRangeOverlapsItself(t *testing.T) {
	assert.True(t, Overlaps("08:00", "09:00", "08:00", "09:00"))
}

func TestOverlapsRejectsInvalidInput(t *testing.T) {
	assert.False(t, Overlaps("bad", "09:00", "08:00", "09:00"))
	assert.False(t, Overlaps("09:00", "08:00", "08:00", "09:00"), "inverted range")
	assert.False(t, Overlaps("08:00", "08:00", "08:00", "09:00"), "empty range")
}
