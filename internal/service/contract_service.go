package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/freight-market/internal/clock"
	"github.com/nurpe/freight-market/internal/model"
	"github.com/nurpe/freight-market/internal/repository"
)

type ContractGenerator interface {
	Generate(region string) []model.ContractJob
}

type BatchRepository interface {
	Get(ctx context.Context, region string, weekStart time.Time) (*model.Batch, error)
	Save(ctx context.Context, region string, weekStart time.Time, batch model.Batch) error
	ListWeeks(ctx context.Context, region string, loc *time.Location) ([]time.Time, error)
}

type ContractService struct {
	repo      BatchRepository
	generator ContractGenerator
	oracle    CompatibilityOracle
	clock     clock.Clock
	weekStart time.Weekday
	locks     *keyedMutex
	log       zerolog.Logger
}

func NewContractService(
	repo BatchRepository,
	generator ContractGenerator,
	oracle CompatibilityOracle,
	clk clock.Clock,
	weekStart time.Weekday,
	log zerolog.Logger,
) *ContractService {
	return &ContractService{
		repo:      repo,
		generator: generator,
		oracle:    oracle,
		clock:     clk,
		weekStart: weekStart,
		locks:     newKeyedMutex(),
		log:       log,
	}
}

// WeekStart is the start of the week containing now.
func (s *ContractService) WeekStart(now time.Time) time.Time {
	return clock.WeekStart(now, s.weekStart)
}

// LoadOrGenerate returns the region's batch for the current week, generating
// and persisting a new one when none is stored or the stored one predates
// the week start.
func (s *ContractService) LoadOrGenerate(ctx context.Context, region string) (*model.Batch, error) {
	batch, _, err := s.currentBatch(ctx, region)
	return batch, err
}

// currentBatch is LoadOrGenerate that also reports the week the batch belongs
// to, read from the same clock reading.
func (s *ContractService) currentBatch(ctx context.Context, region string) (*model.Batch, time.Time, error) {
	region, err := normalizeRegion(region)
	if err != nil {
		return nil, time.Time{}, err
	}
	now := s.clock.Now()
	weekStart := s.WeekStart(now)

	unlock := s.locks.Lock(repository.BatchKey(region, weekStart))
	defer unlock()

	batch, err := s.loadOrGenerateLocked(ctx, region, now, weekStart)
	if err != nil {
		return nil, time.Time{}, err
	}
	applyExpiry(batch, now)
	return batch, weekStart, nil
}

func (s *ContractService) loadOrGenerateLocked(ctx context.Context, region string, now, weekStart time.Time) (*model.Batch, error) {
	batch, err := s.repo.Get(ctx, region, weekStart)
	switch {
	case err == nil && !batch.GeneratedAt.Before(weekStart):
		s.log.Debug().Str("region", region).Time("week_start", weekStart).Msg("contract batch cache hit")
		return batch, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	fresh := model.Batch{
		Contracts:   s.generator.Generate(region),
		GeneratedAt: now.UTC(),
	}
	if err := s.repo.Save(ctx, region, weekStart, fresh); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("region", region).
		Time("week_start", weekStart).
		Int("contracts", len(fresh.Contracts)).
		Msg("generated weekly contract batch")
	return &fresh, nil
}

func (s *ContractService) GetContract(ctx context.Context, region, contractID string) (*model.ContractJob, error) {
	contract, _, err := s.currentContract(ctx, region, contractID)
	return contract, err
}

func (s *ContractService) currentContract(ctx context.Context, region, contractID string) (*model.ContractJob, time.Time, error) {
	batch, weekStart, err := s.currentBatch(ctx, region)
	if err != nil {
		return nil, time.Time{}, err
	}
	idx, ok := batch.Find(contractID)
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	contract := batch.Contracts[idx]
	return &contract, weekStart, nil
}

// LoadWeek reads a stored batch for any week without regenerating it. Only
// the calendar date of day is used; it is taken in the clock's location.
func (s *ContractService) LoadWeek(ctx context.Context, region string, day time.Time) (*model.Batch, error) {
	region, err := normalizeRegion(region)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	local := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	weekStart := s.WeekStart(local)

	batch, err := s.repo.Get(ctx, region, weekStart)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	applyExpiry(batch, now)
	return batch, nil
}

func (s *ContractService) ListWeeks(ctx context.Context, region string) ([]time.Time, error) {
	region, err := normalizeRegion(region)
	if err != nil {
		return nil, err
	}
	return s.repo.ListWeeks(ctx, region, s.clock.Now().Location())
}

type PlaceBidInput struct {
	Region     string
	ContractID string
	Bidder     model.Bidder
	Amount     float64
}

// PlaceBid records a bid on a contract of the current week's batch and
// persists the batch. Rejected bids leave the stored batch untouched.
func (s *ContractService) PlaceBid(ctx context.Context, input PlaceBidInput) (*model.ContractJob, error) {
	region, err := normalizeRegion(input.Region)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ContractID) == "" {
		return nil, fmt.Errorf("%w: contract id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Bidder.ID) == "" {
		return nil, fmt.Errorf("%w: bidder id is required", ErrInvalidInput)
	}
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	now := s.clock.Now()
	weekStart := s.WeekStart(now)
	unlock := s.locks.Lock(repository.BatchKey(region, weekStart))
	defer unlock()

	batch, err := s.loadOrGenerateLocked(ctx, region, now, weekStart)
	if err != nil {
		return nil, err
	}
	idx, ok := batch.Find(input.ContractID)
	if !ok {
		return nil, ErrNotFound
	}

	updated, err := ApplyBid(batch.Contracts[idx], input.Bidder, input.Amount, now, s.oracle)
	if err != nil {
		s.log.Info().Err(err).
			Str("region", region).
			Str("contract_id", input.ContractID).
			Str("bidder_id", input.Bidder.ID).
			Msg("bid rejected")
		return nil, err
	}

	batch.Contracts[idx] = updated
	if err := s.repo.Save(ctx, region, weekStart, *batch); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("region", region).
		Str("contract_id", input.ContractID).
		Str("bidder_id", input.Bidder.ID).
		Float64("amount", input.Amount).
		Msg("bid placed")
	return &updated, nil
}

func applyExpiry(batch *model.Batch, now time.Time) {
	for i := range batch.Contracts {
		batch.Contracts[i].Competition.Status = EffectiveStatus(batch.Contracts[i], now)
	}
}

func normalizeRegion(region string) (string, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return "", fmt.Errorf("%w: region is required", ErrInvalidInput)
	}
	if strings.Contains(region, ":") {
		return "", fmt.Errorf("%w: region must not contain ':'", ErrInvalidInput)
	}
	return region, nil
}
