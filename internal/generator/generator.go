// Package generator builds the weekly contract batch for a region from the
// template catalog, using a seeded random source so batches are reproducible.
package generator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freight-market/internal/catalog"
	"github.com/nurpe/freight-market/internal/clock"
	"github.com/nurpe/freight-market/internal/finance"
	"github.com/nurpe/freight-market/internal/model"
)

const (
	currency         = "USD"
	insuranceMinimum = 1_000_000
	budgetMarkup     = 1.1
	stateIssuerShare = 0.6
	bestBidChance    = 0.75
	// cargo draws tried before falling back to the template's first trailer
	maxCargoAttempts = 3
)

var (
	batchSizes = []int{2, 3, 4}
	durations  = []int{3, 6, 12, 24}
	fleetSizes = []int{1, 2, 3}

	frequencies = []model.Frequency{
		model.FrequencyDaily,
		model.FrequencyWeekly,
		model.FrequencyMonthly,
	}

	stateIssuers = []string{
		"Ministry of Transport",
		"Regional Health Authority",
		"Department of Public Works",
		"State Agricultural Agency",
		"Municipal Services Board",
		"National Energy Board",
	}
	privateIssuers = []string{
		"Northline Retail Group",
		"Atlas Construction Ltd",
		"GreenField Cooperative",
		"Meridian Foods",
		"Vertex Chemicals",
		"Bluewater Distribution",
	}
)

type Catalog interface {
	Categories() []string
	Template(category string) (model.ContractTemplate, bool)
	Cargo(key string) (model.CargoKind, bool)
	CargoFitsTrailer(cargo, trailer string) bool
}

type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	catalog Catalog
	calc    *finance.Calculator
	clock   clock.Clock
	log     zerolog.Logger
}

func New(seed int64, cat Catalog, calc *finance.Calculator, clk clock.Clock, log zerolog.Logger) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		catalog: cat,
		calc:    calc,
		clock:   clk,
		log:     log,
	}
}

// Generate draws a fresh batch of two to four contracts for region.
func (g *Generator) Generate(region string) []model.ContractJob {
	g.mu.Lock()
	defer g.mu.Unlock()

	categories := g.catalog.Categories()
	if len(categories) == 0 {
		return []model.ContractJob{}
	}

	now := g.clock.Now()
	count := pickOne(g.rng, batchSizes)
	contracts := make([]model.ContractJob, 0, count)
	for i := 0; i < count; i++ {
		contracts = append(contracts, g.generateOne(region, categories, now))
	}
	return contracts
}

func (g *Generator) generateOne(region string, categories []string, now time.Time) model.ContractJob {
	issuer := model.Issuer{Kind: model.IssuerPrivate}
	if g.rng.Float64() < stateIssuerShare {
		issuer.Kind = model.IssuerState
		issuer.Name = pickOne(g.rng, stateIssuers)
	} else {
		issuer.Name = pickOne(g.rng, privateIssuers)
	}

	category := pickOne(g.rng, categories)
	tpl, _ := g.catalog.Template(category)
	title := pickOne(g.rng, tpl.Titles)
	description := pickOne(g.rng, tpl.Descriptions)

	cargo, trailer, fallback := g.pickCargoAndTrailer(tpl)
	if fallback {
		g.log.Warn().
			Str("region", region).
			Str("category", category).
			Str("cargo", cargo.Key).
			Str("trailer", trailer).
			Msg("no compatible trailer for cargo, using template default")
	}

	duration := pickOne(g.rng, durations)
	fleet := pickOne(g.rng, fleetSizes)
	drivers := fleet*g.rng.Intn(2) + 1
	frequency := pickOne(g.rng, frequencies)

	base := tpl.Value.Min + g.rng.Float64()*tpl.Value.Span
	value := math.Round(base * float64(duration) / 6)
	budget := math.Round(value * budgetMarkup)

	financial, err := g.calc.CalculateOrFallback(finance.Input{
		Value:          value,
		DurationMonths: duration,
		FleetSize:      fleet,
		DriverCount:    drivers,
		Frequency:      frequency,
	})
	if err != nil {
		g.log.Warn().Err(err).Str("region", region).Str("category", category).
			Msg("financial projection fell back to fixed ratio")
	}

	competition := model.Competition{
		Participants: g.rng.Intn(4) + 1,
		Status:       model.CompetitionActive,
	}
	if g.rng.Float64() < bestBidChance {
		bid := math.Round(value * (0.85 + g.rng.Float64()*0.10))
		competition.CurrentBestBid = &bid
	}
	competition.EndTime = now.Add(time.Duration(g.rng.Intn(6)+2) * 24 * time.Hour).UTC()

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}

	cargoDescription := cargo.Description
	if cargoDescription == "" {
		cargoDescription = cargo.Name
	}

	return model.ContractJob{
		ID:          id.String(),
		CreatedAt:   now.UTC(),
		Region:      region,
		Title:       title,
		Issuer:      issuer,
		Category:    category,
		Description: description,
		Currency:    currency,
		Value:       value,
		Budget:      budget,
		Requirements: model.Requirements{
			DurationMonths:   duration,
			FleetSize:        fleet,
			DriverCount:      drivers,
			TrailerKind:      trailer,
			CargoKind:        cargo.Key,
			CargoDescription: cargoDescription,
			Frequency:        frequency,
			Equipment:        model.Equipment{Trucks: fleet, Trailers: fleet},
			Licenses:         catalog.RequiredLicenses(cargo),
			InsuranceMinimum: insuranceMinimum,
			TrailerFallback:  fallback,
		},
		Financial:   financial,
		Competition: competition,
		BidHistory:  []model.BidEntry{},
	}
}

// pickCargoAndTrailer draws a cargo kind and a trailer compatible with it.
// When no draw yields a compatible trailer, the last cargo is kept with the
// template's first trailer kind and fallback is true.
func (g *Generator) pickCargoAndTrailer(tpl model.ContractTemplate) (model.CargoKind, string, bool) {
	var cargo model.CargoKind
	for attempt := 0; attempt < maxCargoAttempts; attempt++ {
		cargo = g.lookupCargo(pickOne(g.rng, tpl.CargoKinds))
		compatible := make([]string, 0, len(tpl.TrailerKinds))
		for _, trailer := range tpl.TrailerKinds {
			if g.catalog.CargoFitsTrailer(cargo.Key, trailer) {
				compatible = append(compatible, trailer)
			}
		}
		if len(compatible) > 0 {
			return cargo, pickOne(g.rng, compatible), false
		}
	}
	trailer := ""
	if len(tpl.TrailerKinds) > 0 {
		trailer = tpl.TrailerKinds[0]
	}
	return cargo, trailer, true
}

func (g *Generator) lookupCargo(key string) model.CargoKind {
	if cargo, ok := g.catalog.Cargo(key); ok {
		return cargo
	}
	return model.CargoKind{Key: key, Name: key}
}

func pickOne[T any](rng *rand.Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rng.Intn(len(items))]
}
