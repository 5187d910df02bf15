package booking

import (
	"testing"
	"time"
)

// Wednesday, 2026-03-04.
var testNow = time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

func TestParseDateAt(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string
	}{
		{"empty means today", "", true, "2026-03-04"},
		{"today", "today", true, "2026-03-04"},
		{"now", "now", true, "2026-03-04"},
		{"tomorrow", "tomorrow", true, "2026-03-05"},
		{"day after tomorrow", "day after tomorrow", true, "2026-03-06"},
		{"next monday", "next monday", true, "2026-03-09"},
		{"next mon abbreviated", "next mon", true, "2026-03-09"},
		{"next wednesday jumps a full week", "next wednesday", true, "2026-03-11"},
		{"this friday", "this friday", true, "2026-03-06"},
		{"this wednesday is today", "this wednesday", true, "2026-03-04"},
		{"combined date and time keeps date", "tomorrow at 3pm", true, "2026-03-05"},
		{"time of day word stripped", "tomorrow morning", true, "2026-03-05"},
		{"iso date", "2026-03-20", true, "2026-03-20"},
		{"slash date", "12/25/2026", true, "2026-12-25"},
		{"month day with year", "March 15, 2026", true, "2026-03-15"},
		{"month day without year", "march 15", true, "2026-03-15"},
		{"month day rolls to next year", "january 2", true, "2027-01-02"},
		{"numeric month day", "12/25", true, "2026-12-25"},
		{"same-year past rolls forward", "2026-03-03", true, "2027-03-03"},
		{"prior-year date rejected", "2025-12-25", false, ""},
		{"far future rejected", "2027-06-01", false, ""},
		{"gibberish rejected", "whenever works", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDateAt(tt.input, testNow)
			if got.OK != tt.wantOK {
				t.Fatalf("ParseDateAt(%q).OK = %v, want %v (msg %q)", tt.input, got.OK, tt.wantOK, got.Message)
			}
			if got.OK && got.Value != tt.want {
				t.Errorf("ParseDateAt(%q) = %q, want %q", tt.input, got.Value, tt.want)
			}
		})
	}
}

func TestParseDateMessages(t *testing.T) {
	if got := ParseDateAt("2025-01-01", testNow); got.Message != msgPastDate {
		t.Errorf("past date message = %q, want %q", got.Message, msgPastDate)
	}
	if got := ParseDateAt("2027-12-31", testNow); got.Message != msgTooFarAhead {
		t.Errorf("far future message = %q, want %q", got.Message, msgTooFarAhead)
	}
}

func TestParseDateNextWeekdayIsStrictlyFuture(t *testing.T) {
	// Sweep a full week of "now" values: "next monday" must always land on a
	// Monday strictly after today.
	for offset := 0; offset < 7; offset++ {
		now := testNow.AddDate(0, 0, offset)
		got := ParseDateAt("next monday", now)
		if !got.OK {
			t.Fatalf("next monday from %s rejected: %s", now.Format("2006-01-02"), got.Message)
		}
		parsed, err := time.Parse("2006-01-02", got.Value)
		if err != nil {
			t.Fatalf("bad canonical date %q: %v", got.Value, err)
		}
		if parsed.Weekday() != time.Monday {
			t.Errorf("next monday from %s = %s (%s)", now.Format("2006-01-02"), got.Value, parsed.Weekday())
		}
		if !parsed.After(truncateToDay(now)) {
			t.Errorf("next monday from %s = %s is not strictly future", now.Format("2006-01-02"), got.Value)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string
	}{
		{"pm hour", "2pm", true, "14:00"},
		{"pm hour with space", "2 pm", true, "14:00"},
		{"pm with minutes", "2:30pm", true, "14:30"},
		{"dot separator", "2.30pm", true, "14:30"},
		{"24 hour", "14:30", true, "14:30"},
		{"24 hour on the hour", "14", true, "14:00"},
		{"noon", "noon", true, "12:00"},
		{"midday", "midday", true, "12:00"},
		{"morning", "morning", true, "09:00"},
		{"early morning", "early morning", true, "08:00"},
		{"late morning", "late morning", true, "11:00"},
		{"afternoon", "afternoon", true, "14:00"},
		{"late afternoon", "late afternoon", true, "16:00"},
		{"evening", "evening", true, "17:00"},
		{"opening time", "8am", true, "08:00"},
		{"last bookable minute", "17:59", true, "17:59"},
		{"12pm is noon", "12pm", true, "12:00"},
		{"before opening", "7am", false, ""},
		{"midnight", "12am", false, ""},
		{"at closing", "18:00", false, ""},
		{"after closing", "6:30pm", false, ""},
		{"hour out of range", "25", false, ""},
		{"gibberish", "soonish", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.input)
			if got.OK != tt.wantOK {
				t.Fatalf("ParseTime(%q).OK = %v, want %v (msg %q)", tt.input, got.OK, tt.wantOK, got.Message)
			}
			if got.OK && got.Value != tt.want {
				t.Errorf("ParseTime(%q) = %q, want %q", tt.input, got.Value, tt.want)
			}
		})
	}
}

func TestParseTimeMessages(t *testing.T) {
	if got := ParseTime("6am"); got.Message != msgBeforeOpen {
		t.Errorf("before-opening message = %q, want %q", got.Message, msgBeforeOpen)
	}
	if got := ParseTime("9pm"); got.Message != msgAfterClosing {
		t.Errorf("after-closing message = %q, want %q", got.Message, msgAfterClosing)
	}
	got := ParseTime("sometime")
	if got.OK {
		t.Fatal("expected rejection")
	}
	if want := "Could not understand 'sometime'. Please use format like '2pm', '14:30', or 'afternoon'."; got.Message != want {
		t.Errorf("hint message = %q, want %q", got.Message, want)
	}
}
