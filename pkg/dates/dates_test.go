package dates

import (
	"testing"
	"time"
)

func fixedClock(t *testing.T, tz string, instant string) *Clock {
	t.Helper()
	at, err := time.Parse(time.RFC3339, instant)
	if err != nil {
		t.Fatalf("parse instant: %v", err)
	}
	c, err := NewFixedClock(tz, at)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	return c
}

func TestTodayRespectsTimezone(t *testing.T) {
	// 23:30 UTC on the 14th is already the 15th in Shanghai.
	c := fixedClock(t, "Asia/Shanghai", "2026-03-14T23:30:00Z")
	if got := c.Today(); got != "2026-03-15" {
		t.Fatalf("expected 2026-03-15, got %s", got)
	}
	if got := c.Tomorrow(); got != "2026-03-16" {
		t.Fatalf("expected 2026-03-16, got %s", got)
	}

	utc := fixedClock(t, "UTC", "2026-03-14T23:30:00Z")
	if got := utc.Today(); got != "2026-03-14" {
		t.Fatalf("expected 2026-03-14, got %s", got)
	}
}

func TestSpanEndingToday(t *testing.T) {
	c := fixedClock(t, "UTC", "2026-03-05T12:00:00Z")

	span := c.SpanEndingToday(3)
	want := []string{"2026-03-03", "2026-03-04", "2026-03-05"}
	if len(span) != len(want) {
		t.Fatalf("expected %d dates, got %v", len(want), span)
	}
	for i := range want {
		if span[i] != want[i] {
			t.Fatalf("span[%d]: expected %s, got %s", i, want[i], span[i])
		}
	}

	if got := c.SpanEndingToday(0); len(got) != 1 || got[0] != "2026-03-05" {
		t.Fatalf("zero-day span should collapse to today, got %v", got)
	}
}

func TestSpanCrossesMonthBoundary(t *testing.T) {
	c := fixedClock(t, "UTC", "2026-03-01T00:00:00Z")
	span := c.SpanEndingToday(2)
	if span[0] != "2026-02-28" || span[1] != "2026-03-01" {
		t.Fatalf("unexpected span across month boundary: %v", span)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("2026-03-15"); err != nil {
		t.Fatalf("valid date rejected: %v", err)
	}
	for _, bad := range []string{"2026-3-15", "15-03-2026", "2026-03-15T00:00:00Z", "not-a-date"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewClockRejectsUnknownZone(t *testing.T) {
	if _, err := NewClock("Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
