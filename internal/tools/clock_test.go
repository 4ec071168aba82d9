package tools

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestClockToolKnownZone(t *testing.T) {
	t.Parallel()

	ct := NewClockTool()
	ct.now = func() time.Time {
		return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	}

	got, err := ct.InvokableRun(context.Background(), `{"timezone":"UTC"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	want := "The current local time in UTC is: 2025-03-14 12:00:00"
	if got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestClockToolZoneConversion(t *testing.T) {
	t.Parallel()

	ct := NewClockTool()
	ct.now = func() time.Time {
		return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	}

	got, err := ct.InvokableRun(context.Background(), `{"timezone":"Asia/Tokyo"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	// Tokyo is UTC+9 with no DST.
	want := "The current local time in Asia/Tokyo is: 2025-01-15 21:00:00"
	if got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestClockToolInvalidZone(t *testing.T) {
	t.Parallel()

	ct := NewClockTool()
	got, err := ct.InvokableRun(context.Background(), `{"timezone":"Mars/Olympus_Mons"}`)
	if err != nil {
		t.Fatalf("invalid zone must not be a tool error: %v", err)
	}
	if !strings.HasPrefix(got, "Error fetching time for timezone 'Mars/Olympus_Mons':") {
		t.Errorf("result = %q", got)
	}
}

func TestClockToolRequiresTimezone(t *testing.T) {
	t.Parallel()

	ct := NewClockTool()
	if _, err := ct.InvokableRun(context.Background(), `{}`); err == nil {
		t.Fatal("expected error for missing timezone")
	}
}
