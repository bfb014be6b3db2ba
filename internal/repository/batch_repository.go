package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/freight-market/internal/model"
	"github.com/nurpe/freight-market/internal/storage"
)

const (
	keyPrefix  = "contracts"
	weekLayout = "2006-01-02"
)

var (
	ErrNotFound           = errors.New("batch not found")
	ErrListingUnsupported = errors.New("storage cannot list keys")
)

// BatchKey is the storage key of a region's batch for the week starting at
// weekStart: contracts:{region}:{YYYY-MM-DD}.
func BatchKey(region string, weekStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, region, weekStart.Format(weekLayout))
}

type BatchRepository struct {
	kv storage.KV
}

func NewBatchRepository(kv storage.KV) *BatchRepository {
	return &BatchRepository{kv: kv}
}

func (r *BatchRepository) Get(ctx context.Context, region string, weekStart time.Time) (*model.Batch, error) {
	key := BatchKey(region, weekStart)
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	var batch model.Batch
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if batch.Contracts == nil {
		batch.Contracts = []model.ContractJob{}
	}
	return &batch, nil
}

// Save overwrites the batch stored for (region, weekStart).
func (r *BatchRepository) Save(ctx context.Context, region string, weekStart time.Time, batch model.Batch) error {
	key := BatchKey(region, weekStart)
	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ListWeeks returns the week starts that have a stored batch for region,
// oldest first.
func (r *BatchRepository) ListWeeks(ctx context.Context, region string, loc *time.Location) ([]time.Time, error) {
	lister, ok := r.kv.(storage.Lister)
	if !ok {
		return nil, ErrListingUnsupported
	}
	prefix := fmt.Sprintf("%s:%s:", keyPrefix, region)
	keys, err := lister.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	weeks := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		week, err := time.ParseInLocation(weekLayout, strings.TrimPrefix(key, prefix), loc)
		if err != nil {
			continue
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}
