package jobs

import (
	"context"
	"testing"
	"time"

	"nutriapi/internal/store"
	"nutriapi/internal/store/storetest"
)

func TestSweeper_Sweep(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetAppointments,
		// id, user_id, plan_id, appointment_date, appointment_time, status, notes, created_at
		[]interface{}{"1", "1", "1", "2024-01-10", "10:00", "pending", "", ""},
		[]interface{}{"2", "1", "1", "2024-01-10", "10:00", "confirmed", "", ""},
		[]interface{}{"3", "2", "1", "2030-06-01", "09:30", "pending", "", ""},
		[]interface{}{"4", "2", "1", "not-a-date", "09:30", "pending", "", ""},
	)

	sweeper := New(store.New(fake), "@every 1h")
	sweeper.now = func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	if swept := sweeper.Sweep(context.Background()); swept != 1 {
		t.Fatalf("Sweep() = %d, want 1", swept)
	}

	s := store.New(fake)
	ctx := context.Background()

	tests := []struct {
		id         string
		wantStatus string
	}{
		{id: "1", wantStatus: "missed"},    // overdue pending
		{id: "2", wantStatus: "confirmed"}, // not pending, untouched
		{id: "3", wantStatus: "pending"},   // future slot
		{id: "4", wantStatus: "pending"},   // unparseable date, left alone
	}
	for _, tt := range tests {
		record, err := s.FindByID(ctx, store.SheetAppointments, tt.id)
		if err != nil {
			t.Fatalf("FindByID(%s) error = %v", tt.id, err)
		}
		if got := record.GetAsString("status", ""); got != tt.wantStatus {
			t.Errorf("appointment %s status = %q, want %q", tt.id, got, tt.wantStatus)
		}
	}
}

func TestSweeper_SweepIdempotent(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetAppointments,
		[]interface{}{"1", "1", "1", "2024-01-10", "10:00", "pending", "", ""},
	)

	sweeper := New(store.New(fake), "@every 1h")
	sweeper.now = func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	if swept := sweeper.Sweep(context.Background()); swept != 1 {
		t.Fatalf("first Sweep() = %d, want 1", swept)
	}
	if swept := sweeper.Sweep(context.Background()); swept != 0 {
		t.Errorf("second Sweep() = %d, want 0", swept)
	}
}

func TestSweeper_InvalidSchedule(t *testing.T) {
	sweeper := New(store.New(storetest.NewSeeded()), "not a schedule")
	if err := sweeper.Start(); err == nil {
		sweeper.Stop()
		t.Error("Start() with invalid schedule succeeded, want error")
	}
}
