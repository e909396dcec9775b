package service

import (
	"math"
	"testing"
	"time"

	"github.com/dinelog/internal/db"
)

func TestParseSeatingCapacity(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		raw  string
		want SeatingRange
	}{
		{"20+", SeatingRange{20, inf}},
		{"10-40", SeatingRange{10, 40}},
		{"12", SeatingRange{12, 12}},
		{" 8 - 16 ", SeatingRange{8, 16}},
		{"", SeatingRange{0, inf}},
		{"plenty", SeatingRange{0, inf}},
		{"NaN", SeatingRange{0, inf}},
		{"ten+", SeatingRange{0, inf}},
		{"5-many", SeatingRange{0, inf}},
	}
	for _, tc := range cases {
		got := ParseSeatingCapacity(tc.raw)
		if got != tc.want {
			t.Errorf("ParseSeatingCapacity(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestSeatingAllows(t *testing.T) {
	if !SeatingAllows("2", 0) || !SeatingAllows("2", -3) {
		t.Fatalf("non-positive party size should disable the seating filter")
	}
	if !SeatingAllows("10-40", 40) {
		t.Fatalf("party equal to max should fit")
	}
	if SeatingAllows("10-40", 41) {
		t.Fatalf("party above max should not fit")
	}
	if !SeatingAllows("20+", 500) {
		t.Fatalf("open-ended capacity should fit any party")
	}
	if !SeatingAllows("unknown", 99) {
		t.Fatalf("unparseable capacity must never exclude a restaurant")
	}
}

func TestIsOpenAtHandlesOvernightWindows(t *testing.T) {
	hours := []db.BusinessHour{
		{Day: "Monday", IsOpen: true, StartTime: "22:00", EndTime: "02:00"},
		{Day: "Tuesday", IsOpen: true, StartTime: "11:00", EndTime: "21:00"},
		{Day: "Wednesday", IsOpen: false, StartTime: "11:00", EndTime: "21:00"},
		{Day: "星期四", IsOpen: true, StartTime: "00:00", EndTime: "00:00"},
	}

	cases := []struct {
		weekday time.Weekday
		clock   string
		want    bool
	}{
		{time.Monday, "01:00", true},
		{time.Monday, "23:30", true},
		{time.Monday, "12:00", false},
		{time.Monday, "02:00", false},
		{time.Tuesday, "11:00", true},
		{time.Tuesday, "21:00", false},
		{time.Wednesday, "12:00", false},
		{time.Thursday, "03:15", true},
		{time.Friday, "12:00", false},
		{time.Tuesday, "noon", false},
	}
	for _, tc := range cases {
		if got := IsOpenAt(hours, tc.weekday, tc.clock); got != tc.want {
			t.Errorf("IsOpenAt(%s, %s) = %v, want %v", tc.weekday, tc.clock, got, tc.want)
		}
	}
}

func TestMatchesTextSearchesNamesCategoryAndAddress(t *testing.T) {
	restaurant := db.Restaurant{
		Name:        db.LocalizedName{EN: "Golden Dumpling", ZhTW: "金餃子"},
		Category:    "Taiwanese",
		FullAddress: "No. 1, Zhongshan Rd, Taipei",
	}
	for _, needle := range []string{"", "golden", "餃子", "TAIWAN", "zhongshan"} {
		if !matchesText(restaurant, needle) {
			t.Errorf("expected %q to match", needle)
		}
	}
	if matchesText(restaurant, "ramen") {
		t.Errorf("unexpected match for ramen")
	}
}
