package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/freight-market/internal/catalog"
	"github.com/nurpe/freight-market/internal/clock"
	"github.com/nurpe/freight-market/internal/finance"
	"github.com/nurpe/freight-market/internal/generator"
	"github.com/nurpe/freight-market/internal/model"
	"github.com/nurpe/freight-market/internal/repository"
	"github.com/nurpe/freight-market/internal/storage"
)

// Monday of the week starting Sunday 2026-10-18.
var monday = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type stubGenerator struct {
	mu    sync.Mutex
	calls int
	build func(region string, call int) []model.ContractJob
}

func (g *stubGenerator) Generate(region string) []model.ContractJob {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.build(region, g.calls)
}

func (g *stubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func reeferContract(id string, now time.Time) model.ContractJob {
	return model.ContractJob{
		ID:        id,
		CreatedAt: now.UTC(),
		Title:     "Clinic Network Replenishment",
		Category:  "medical_supply",
		Currency:  "USD",
		Value:     100000,
		Budget:    110000,
		Requirements: model.Requirements{
			DurationMonths: 6,
			FleetSize:      1,
			DriverCount:    1,
			TrailerKind:    "reefer",
			CargoKind:      "vaccines",
			Frequency:      model.FrequencyWeekly,
			Licenses:       []string{catalog.LicenseBase},
		},
		Competition: model.Competition{
			Participants: 2,
			EndTime:      now.Add(72 * time.Hour).UTC(),
			Status:       model.CompetitionActive,
		},
		BidHistory: []model.BidEntry{},
	}
}

type fixture struct {
	svc   *ContractService
	kv    *storage.Memory
	repo  *repository.BatchRepository
	clock *clock.Fixed
	gen   *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	clk := clock.NewFixed(monday)
	gen := &stubGenerator{build: func(region string, call int) []model.ContractJob {
		now := clk.Now()
		return []model.ContractJob{
			reeferContract(fmt.Sprintf("reefer-%d", call), now),
		}
	}}
	kv := storage.NewMemory()
	repo := repository.NewBatchRepository(kv)
	return &fixture{
		svc:   NewContractService(repo, gen, cat, clk, time.Sunday, zerolog.Nop()),
		kv:    kv,
		repo:  repo,
		clock: clk,
		gen:   gen,
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func storedRecord(t *testing.T, f *fixture, region string) string {
	t.Helper()
	key := repository.BatchKey(region, clock.WeekStart(f.clock.Now(), time.Sunday))
	raw, ok, err := f.kv.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("no stored record for %s (err=%v)", key, err)
	}
	return raw
}

func newSeededService(t *testing.T, clk clock.Clock) *ContractService {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	gen := generator.New(2026, cat, finance.NewCalculator(finance.DefaultPolicy()), clk, zerolog.Nop())
	repo := repository.NewBatchRepository(storage.NewMemory())
	return NewContractService(repo, gen, cat, clk, time.Sunday, zerolog.Nop())
}

func TestLoadOrGenerateIsIdempotentWithinWeek(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(monday)
	svc := newSeededService(t, clk)

	first, err := svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	second, err := svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	if mustJSON(t, first) != mustJSON(t, second) {
		t.Fatal("second read within the week differs from the first")
	}

	clk.Advance(30 * time.Hour)
	third, err := svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	if len(third.Contracts) != len(first.Contracts) || !third.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatal("batch regenerated within the same week")
	}
	for i := range first.Contracts {
		if first.Contracts[i].ID != third.Contracts[i].ID {
			t.Errorf("contract %d id changed: %s -> %s", i, first.Contracts[i].ID, third.Contracts[i].ID)
		}
		if first.Contracts[i].Financial != third.Contracts[i].Financial {
			t.Errorf("contract %d financials changed", i)
		}
	}
}

func TestGeneratedBatchHoldsFinancialIdentity(t *testing.T) {
	svc := newSeededService(t, clock.NewFixed(monday))
	batch, err := svc.LoadOrGenerate(context.Background(), "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	for _, c := range batch.Contracts {
		f := c.Financial
		if f.EstimatedProfit != f.TotalRevenue-f.TotalCosts {
			t.Errorf("%s: profit identity broken", c.ID)
		}
		if f.ProfitMargin != f.EstimatedProfit/f.TotalRevenue*100 {
			t.Errorf("%s: margin identity broken", c.ID)
		}
	}
}

func TestLoadOrGenerateRegeneratesAfterWeekRollover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	firstRecord := storedRecord(t, f, "north")

	f.clock.Advance(7 * 24 * time.Hour)
	second, err := f.svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	if f.gen.Calls() != 2 {
		t.Fatalf("generator called %d times, want 2", f.gen.Calls())
	}
	if !second.GeneratedAt.After(first.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want after %v", second.GeneratedAt, first.GeneratedAt)
	}
	if second.Contracts[0].ID == first.Contracts[0].ID {
		t.Error("new week reused the previous batch")
	}

	old, err := f.svc.LoadWeek(ctx, "north", monday)
	if err != nil {
		t.Fatalf("LoadWeek() error = %v", err)
	}
	if old.Contracts[0].ID != first.Contracts[0].ID {
		t.Error("previous week's batch was overwritten")
	}
	key := repository.BatchKey("north", clock.WeekStart(monday, time.Sunday))
	raw, _, _ := f.kv.Get(ctx, key)
	if raw != firstRecord {
		t.Error("previous week's stored record changed")
	}
}

func TestLoadOrGenerateReplacesStaleRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	weekStart := clock.WeekStart(monday, time.Sunday)

	stale := model.Batch{
		Contracts:   []model.ContractJob{reeferContract("stale", monday)},
		GeneratedAt: weekStart.Add(-time.Hour),
	}
	if err := f.repo.Save(ctx, "north", weekStart, stale); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	batch, err := f.svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	if f.gen.Calls() != 1 || batch.Contracts[0].ID == "stale" {
		t.Error("stale batch was served from cache")
	}
}

func TestLoadOrGenerateRejectsBadRegion(t *testing.T) {
	f := newFixture(t)
	for _, region := range []string{"", "   ", "north:1"} {
		if _, err := f.svc.LoadOrGenerate(context.Background(), region); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("LoadOrGenerate(%q) error = %v, want ErrInvalidInput", region, err)
		}
	}
}

func TestCompetitionExpiresLazily(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	batch, err := f.svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	id := batch.Contracts[0].ID

	f.clock.Advance(73 * time.Hour)
	batch, err = f.svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	if got := batch.Contracts[0].Competition.Status; got != model.CompetitionExpired {
		t.Errorf("status = %q, want expired", got)
	}

	stored, err := f.repo.Get(ctx, "north", clock.WeekStart(monday, time.Sunday))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Contracts[0].Competition.Status != model.CompetitionActive {
		t.Error("expiry was written back on read")
	}

	_, err = f.svc.PlaceBid(ctx, PlaceBidInput{
		Region:     "north",
		ContractID: id,
		Bidder:     eligibleBidder(),
		Amount:     90000,
	})
	if !errors.Is(err, ErrCompetitionClosed) {
		t.Errorf("PlaceBid() error = %v, want ErrCompetitionClosed", err)
	}
}

func TestGetContract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	batch, _ := f.svc.LoadOrGenerate(ctx, "north")

	got, err := f.svc.GetContract(ctx, "north", batch.Contracts[0].ID)
	if err != nil || got.ID != batch.Contracts[0].ID {
		t.Fatalf("GetContract() = %v, %v", got, err)
	}
	if _, err := f.svc.GetContract(ctx, "north", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetContract(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLoadWeekMissing(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.LoadWeek(context.Background(), "north", monday.AddDate(0, 0, -14)); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadWeek() error = %v, want ErrNotFound", err)
	}
}

func TestListWeeks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.svc.LoadOrGenerate(ctx, "north")
	f.clock.Advance(7 * 24 * time.Hour)
	_, _ = f.svc.LoadOrGenerate(ctx, "north")

	weeks, err := f.svc.ListWeeks(ctx, "north")
	if err != nil {
		t.Fatalf("ListWeeks() error = %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("ListWeeks() = %v, want 2 weeks", weeks)
	}
	if got := weeks[0].Format("2006-01-02"); got != "2026-10-18" {
		t.Errorf("first week = %s", got)
	}
}

func TestListedWeeksLoadBehindUTC(t *testing.T) {
	ctx := context.Background()
	zone := time.FixedZone("UTC-5", -5*60*60)
	clk := clock.NewFixed(time.Date(2026, 10, 19, 9, 0, 0, 0, zone))
	svc := newSeededService(t, clk)

	current, err := svc.LoadOrGenerate(ctx, "north")
	if err != nil {
		t.Fatalf("LoadOrGenerate() error = %v", err)
	}
	weeks, err := svc.ListWeeks(ctx, "north")
	if err != nil {
		t.Fatalf("ListWeeks() error = %v", err)
	}
	if len(weeks) != 1 || weeks[0].Format("2006-01-02") != "2026-10-18" {
		t.Fatalf("ListWeeks() = %v", weeks)
	}

	for _, day := range []string{"2026-10-18", "2026-10-24"} {
		parsed, _ := time.Parse("2006-01-02", day)
		batch, err := svc.LoadWeek(ctx, "north", parsed)
		if err != nil {
			t.Fatalf("LoadWeek(%s) error = %v", day, err)
		}
		if mustJSON(t, batch) != mustJSON(t, current) {
			t.Errorf("LoadWeek(%s) returned a different batch", day)
		}
	}
}
