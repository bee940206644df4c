package calendar

import (
	"testing"
	"time"
)

func TestAddDaysRoundTrip(t *testing.T) {
	t.Parallel()

	anchors := []time.Time{
		Date(2024, time.January, 31),
		Date(2024, time.February, 28),
		Date(2023, time.December, 31),
		Date(2024, time.March, 10),
	}
	for _, anchor := range anchors {
		for interval := 1; interval <= 400; interval += 13 {
			got := AddDays(AddDays(anchor, interval), -interval)
			if !got.Equal(anchor) {
				t.Fatalf("round trip %s +/-%d: got %s", Format(anchor), interval, Format(got))
			}
		}
	}
}

func TestAddDaysCrossesYear(t *testing.T) {
	t.Parallel()

	got := AddDays(Date(2023, time.December, 30), 3)
	if want := Date(2024, time.January, 2); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", Format(want), Format(got))
	}
	got = AddWeeks(Date(2024, time.February, 26), 1)
	if want := Date(2024, time.March, 4); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", Format(want), Format(got))
	}
}

func TestAddMonths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		anchor time.Time
		n      int
		want   time.Time
		ok     bool
	}{
		{"plain", Date(2024, time.January, 15), 1, Date(2024, time.February, 15), true},
		{"year carry", Date(2024, time.November, 30), 2, Date(2025, time.January, 30), true},
		{"december to january", Date(2024, time.December, 5), 1, Date(2025, time.January, 5), true},
		{"day 31 skips february", Date(2024, time.January, 31), 1, time.Time{}, false},
		{"day 31 keeps march", Date(2024, time.January, 31), 2, Date(2024, time.March, 31), true},
		{"day 31 skips april", Date(2024, time.January, 31), 3, time.Time{}, false},
		{"leap day kept", Date(2024, time.January, 29), 1, Date(2024, time.February, 29), true},
		{"leap day skipped", Date(2023, time.January, 29), 1, time.Time{}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AddMonths(tc.anchor, tc.n)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", Format(tc.want), Format(got))
			}
		})
	}
}

func TestMapWeekdays(t *testing.T) {
	t.Parallel()

	want := map[int]int{0: 6, 1: 0, 2: 1, 3: 2, 4: 3, 5: 4, 6: 5}
	for ext, internal := range want {
		got, ok := MapWeekday(ext)
		if !ok || got != internal {
			t.Fatalf("day %d: expected %d, got %d (ok=%v)", ext, internal, got, ok)
		}
	}

	set := MapWeekdays([]int{0, 1, 7, -1})
	if len(set) != 2 {
		t.Fatalf("expected 2 mapped days, got %d", len(set))
	}
	if _, ok := set[6]; !ok {
		t.Fatalf("sunday should map to 6")
	}
	if _, ok := set[0]; !ok {
		t.Fatalf("monday should map to 0")
	}
}

func TestWeekdayIsMondayFirst(t *testing.T) {
	t.Parallel()

	// 2024-01-01 was a Monday.
	monday := Date(2024, time.January, 1)
	for i := 0; i < 7; i++ {
		if got := Weekday(AddDays(monday, i)); got != i {
			t.Fatalf("offset %d: expected weekday %d, got %d", i, i, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	d, err := Parse("2024-02-29")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if Format(d) != "2024-02-29" {
		t.Fatalf("unexpected format %q", Format(d))
	}
	if _, err := Parse("2023-02-29"); err == nil {
		t.Fatalf("expected error for invalid day")
	}
	if _, err := Parse("29/02/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2024, time.May, 2, 23, 30, 0, 0, loc)
	if got := Normalize(ts); !got.Equal(Date(2024, time.May, 2)) {
		t.Fatalf("unexpected normalized date %s", got)
	}
}
