// Package finance projects revenue and operating costs for a contract.
package finance

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/nurpe/freight-market/internal/model"
)

var ErrInvalidInput = errors.New("invalid financial input")

// Policy holds the tunable cost constants. Per-vehicle amounts are charged
// once per operation.
type Policy struct {
	FuelPerVehicle            float64
	MaintenancePerVehicle     float64
	InsurancePerVehicle       float64
	DriverMonthlySalary       float64
	TrailerValue              float64
	TrailerDepreciationPeriod float64
	AdministrativePerOp       float64
	FallbackCostRatio         float64
}

func DefaultPolicy() Policy {
	return Policy{
		FuelPerVehicle:            250,
		MaintenancePerVehicle:     80,
		InsurancePerVehicle:       150,
		DriverMonthlySalary:       3500,
		TrailerValue:              50000,
		TrailerDepreciationPeriod: 12 * 60,
		AdministrativePerOp:       200,
		FallbackCostRatio:         0.7,
	}
}

type Input struct {
	Value          float64
	DurationMonths int
	FleetSize      int
	DriverCount    int
	Frequency      model.Frequency
}

type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// OperationsPerMonth maps a delivery frequency to operations per month.
// Unknown frequencies are treated as weekly.
func OperationsPerMonth(f model.Frequency) int {
	switch f {
	case model.FrequencyDaily:
		return 22
	case model.FrequencyMonthly:
		return 1
	default:
		return 4
	}
}

func (c *Calculator) Calculate(in Input) (model.Financial, error) {
	if err := validate(in); err != nil {
		return model.Financial{}, err
	}

	ops := OperationsPerMonth(in.Frequency)
	opsD := decimal.NewFromInt(int64(ops))
	duration := decimal.NewFromInt(int64(in.DurationMonths))
	fleet := decimal.NewFromInt(int64(in.FleetSize))
	drivers := decimal.NewFromInt(int64(in.DriverCount))
	value := decimal.NewFromFloat(in.Value)

	fuel := decimal.NewFromFloat(c.policy.FuelPerVehicle).Mul(fleet)
	maintenance := decimal.NewFromFloat(c.policy.MaintenancePerVehicle).Mul(fleet)
	insurance := decimal.NewFromFloat(c.policy.InsurancePerVehicle).Mul(fleet)
	salaries := decimal.NewFromFloat(c.policy.DriverMonthlySalary).Mul(drivers).Div(opsD)
	depreciation := decimal.NewFromFloat(c.policy.TrailerValue).Mul(fleet).
		Div(decimal.NewFromFloat(c.policy.TrailerDepreciationPeriod))
	admin := decimal.NewFromFloat(c.policy.AdministrativePerOp)

	perOp := fuel.Add(maintenance).Add(insurance).Add(salaries).Add(depreciation).Add(admin)
	monthlyCosts := perOp.Mul(opsD)
	totalCosts := monthlyCosts.Mul(duration)
	monthlyRevenue := value.Div(duration)
	dailyRate := monthlyRevenue.Div(opsD)

	f := model.Financial{
		TotalRevenue: in.Value,
		Costs: model.CostBreakdown{
			Fuel:                money(fuel),
			Maintenance:         money(maintenance),
			Insurance:           money(insurance),
			DriverSalaries:      money(salaries),
			TrailerDepreciation: money(depreciation),
			Administrative:      money(admin),
		},
		TotalCosts:       money(totalCosts),
		MonthlyRevenue:   money(monthlyRevenue),
		MonthlyCosts:     money(monthlyCosts),
		DailyRate:        money(dailyRate),
		CostPerOperation: money(perOp),
		TotalOperations:  ops * in.DurationMonths,
	}
	f.EstimatedProfit = f.TotalRevenue - f.TotalCosts
	f.ProfitMargin = f.EstimatedProfit / f.TotalRevenue * 100
	return f, nil
}

// CalculateOrFallback always returns a usable projection. On invalid input it
// is the Fallback projection, returned together with the validation error.
func (c *Calculator) CalculateOrFallback(in Input) (model.Financial, error) {
	f, err := c.Calculate(in)
	if err != nil {
		return c.Fallback(in), err
	}
	return f, nil
}

// Fallback assumes a fixed cost ratio of the contract value.
func (c *Calculator) Fallback(in Input) model.Financial {
	value := in.Value
	if !finite(value) || value < 0 {
		value = 0
	}
	months := in.DurationMonths
	if months <= 0 {
		months = 1
	}
	ops := OperationsPerMonth(in.Frequency)
	valueD := decimal.NewFromFloat(value)
	totalCosts := valueD.Mul(decimal.NewFromFloat(c.policy.FallbackCostRatio))
	monthlyRevenue := valueD.Div(decimal.NewFromInt(int64(months)))
	monthlyCosts := totalCosts.Div(decimal.NewFromInt(int64(months)))

	f := model.Financial{
		TotalRevenue:     value,
		TotalCosts:       money(totalCosts),
		MonthlyRevenue:   money(monthlyRevenue),
		MonthlyCosts:     money(monthlyCosts),
		DailyRate:        money(monthlyRevenue.Div(decimal.NewFromInt(int64(ops)))),
		CostPerOperation: money(monthlyCosts.Div(decimal.NewFromInt(int64(ops)))),
		TotalOperations:  ops * months,
		Fallback:         true,
	}
	f.EstimatedProfit = f.TotalRevenue - f.TotalCosts
	if f.TotalRevenue > 0 {
		f.ProfitMargin = f.EstimatedProfit / f.TotalRevenue * 100
	} else {
		f.ProfitMargin = (1 - c.policy.FallbackCostRatio) * 100
	}
	return f
}

func validate(in Input) error {
	switch {
	case !finite(in.Value) || in.Value <= 0:
		return fmt.Errorf("%w: value must be positive", ErrInvalidInput)
	case in.DurationMonths <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	case in.FleetSize < 1:
		return fmt.Errorf("%w: fleet size must be at least 1", ErrInvalidInput)
	case in.DriverCount < 1:
		return fmt.Errorf("%w: driver count must be at least 1", ErrInvalidInput)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
