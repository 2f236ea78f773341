package jobstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCreateGetRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	job := Job{ID: "abc", Position: "OOP:AA:S10/IP:KK:S10|P1|2c7d9h", Status: Pending, CreatedAt: time.Now()}
	if err := m.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := m.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Position != job.Position || got.Status != Pending {
		t.Errorf("Get returned %+v, want %+v", got, job)
	}
}

func TestMemoryGetMissingReturnsErrNotFound(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemorySaveResultMarksDone(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	job := Job{ID: "xyz", Status: Pending}
	if err := m.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.SaveResult(ctx, "xyz", []byte("snapshot")); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	got, err := m.Get(ctx, "xyz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != Done {
		t.Errorf("Status = %q, want %q", got.Status, Done)
	}
	if string(got.Result) != "snapshot" {
		t.Errorf("Result = %q, want %q", got.Result, "snapshot")
	}
}

func TestMemoryUpdateStatusOnMissingJobFails(t *testing.T) {
	m := NewMemory()
	if err := m.UpdateStatus(context.Background(), "missing", Failed, "boom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrNotFound", err)
	}
}
