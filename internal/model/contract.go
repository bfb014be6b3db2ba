package model

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type CompetitionStatus string

const (
	CompetitionActive  CompetitionStatus = "active"
	CompetitionAwarded CompetitionStatus = "awarded"
	CompetitionExpired CompetitionStatus = "expired"
)

// ContractJob is one generated freight contract on a region's weekly board.
type ContractJob struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"createdAt"`
	Region       string       `json:"region"`
	Title        string       `json:"title"`
	Issuer       Issuer       `json:"issuer"`
	Category     string       `json:"category"`
	Description  string       `json:"description"`
	Currency     string       `json:"currency"`
	Value        float64      `json:"value"`
	Budget       float64      `json:"budget"`
	Requirements Requirements `json:"requirements"`
	Financial    Financial    `json:"financial"`
	Competition  Competition  `json:"competition"`
	BidHistory   []BidEntry   `json:"bidHistory"`
}

type Requirements struct {
	DurationMonths   int       `json:"durationMonths"`
	FleetSize        int       `json:"fleetSize"`
	DriverCount      int       `json:"driverCount"`
	TrailerKind      string    `json:"trailerKind"`
	CargoKind        string    `json:"cargoKind"`
	CargoDescription string    `json:"cargoDescription"`
	Frequency        Frequency `json:"frequency"`
	Equipment        Equipment `json:"equipment"`
	Licenses         []string  `json:"licenses"`
	InsuranceMinimum float64   `json:"insuranceMinimum"`
	// TrailerFallback marks contracts whose trailer kind was not compatible
	// with the drawn cargo and was taken from the template as-is.
	TrailerFallback bool `json:"trailerFallback,omitempty"`
}

type Equipment struct {
	Trucks   int `json:"trucks"`
	Trailers int `json:"trailers"`
}

// Financial is derived from Value, Requirements and the cost policy. It is
// stored with the contract so the board renders the same numbers all week.
type Financial struct {
	TotalRevenue     float64       `json:"totalRevenue"`
	Costs            CostBreakdown `json:"costs"`
	TotalCosts       float64       `json:"totalCosts"`
	EstimatedProfit  float64       `json:"estimatedProfit"`
	ProfitMargin     float64       `json:"profitMargin"`
	MonthlyRevenue   float64       `json:"monthlyRevenue"`
	MonthlyCosts     float64       `json:"monthlyCosts"`
	DailyRate        float64       `json:"dailyRate"`
	CostPerOperation float64       `json:"costPerOperation"`
	TotalOperations  int           `json:"totalOperations"`
	Fallback         bool          `json:"fallback,omitempty"`
}

// CostBreakdown holds per-operation costs.
type CostBreakdown struct {
	Fuel                float64 `json:"fuel"`
	Maintenance         float64 `json:"maintenance"`
	Insurance           float64 `json:"insurance"`
	DriverSalaries      float64 `json:"driverSalaries"`
	TrailerDepreciation float64 `json:"trailerDepreciation"`
	Administrative      float64 `json:"administrative"`
}

type Competition struct {
	Participants   int               `json:"participants"`
	CurrentBestBid *float64          `json:"currentBestBid"`
	EndTime        time.Time         `json:"endTime"`
	Status         CompetitionStatus `json:"status"`
}

type BidEntry struct {
	BidderID   string    `json:"bidderId"`
	BidderName string    `json:"bidderName"`
	Amount     float64   `json:"amount"`
	PlacedAt   time.Time `json:"placedAt"`
}

// Batch is the persistence unit: all contracts of one region for one week.
type Batch struct {
	Contracts   []ContractJob `json:"contracts"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

func (b *Batch) Find(id string) (int, bool) {
	for i := range b.Contracts {
		if b.Contracts[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
