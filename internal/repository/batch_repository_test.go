package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nurpe/freight-market/internal/model"
	"github.com/nurpe/freight-market/internal/storage"
)

type getSetOnly struct {
	storage.KV
}

func TestBatchKey(t *testing.T) {
	week := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)
	if got := BatchKey("north", week); got != "contracts:north:2026-10-18" {
		t.Errorf("BatchKey() = %q", got)
	}
}

func TestBatchRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	repo := NewBatchRepository(kv)
	week := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Get(ctx, "north", week); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	best := 95000.0
	batch := model.Batch{
		GeneratedAt: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
		Contracts: []model.ContractJob{{
			ID:          "c-1",
			Value:       100000,
			Budget:      110000,
			Competition: model.Competition{Participants: 2, CurrentBestBid: &best, Status: model.CompetitionActive},
			BidHistory:  []model.BidEntry{},
		}},
	}
	if err := repo.Save(ctx, "north", week, batch); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, ok, _ := kv.Get(ctx, "contracts:north:2026-10-18")
	if !ok {
		t.Fatal("batch not stored under expected key")
	}
	var record map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		t.Fatalf("stored record is not JSON: %v", err)
	}
	for _, field := range []string{"contracts", "generatedAt"} {
		if _, ok := record[field]; !ok {
			t.Errorf("stored record missing %q", field)
		}
	}

	got, err := repo.Get(ctx, "north", week)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.GeneratedAt.Equal(batch.GeneratedAt) || len(got.Contracts) != 1 {
		t.Fatalf("Get() = %+v", got)
	}
	if *got.Contracts[0].Competition.CurrentBestBid != best {
		t.Errorf("best bid = %v", *got.Contracts[0].Competition.CurrentBestBid)
	}
}

func TestBatchRepositoryCorruptRecord(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	week := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	_ = kv.Set(ctx, BatchKey("north", week), "{not json")

	_, err := NewBatchRepository(kv).Get(ctx, "north", week)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want decode error", err)
	}
}

func TestListWeeks(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	repo := NewBatchRepository(kv)
	for _, day := range []int{4, 18, 11} {
		week := time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC)
		if err := repo.Save(ctx, "north", week, model.Batch{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	_ = repo.Save(ctx, "south", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), model.Batch{})

	weeks, err := repo.ListWeeks(ctx, "north", time.UTC)
	if err != nil {
		t.Fatalf("ListWeeks() error = %v", err)
	}
	if len(weeks) != 3 || weeks[0].Day() != 4 || weeks[2].Day() != 18 {
		t.Errorf("ListWeeks() = %v", weeks)
	}

	_, err = NewBatchRepository(getSetOnly{kv}).ListWeeks(ctx, "north", time.UTC)
	if !errors.Is(err, ErrListingUnsupported) {
		t.Errorf("ListWeeks() error = %v, want ErrListingUnsupported", err)
	}
}
