package service

import (
	"fmt"
	"time"

	"github.com/nurpe/freight-market/internal/model"
)

type CompatibilityOracle interface {
	CargoFitsTrailer(cargo, trailer string) bool
	LicensesCover(held, required []string) bool
}

// EffectiveStatus reports the competition status as of now. Active
// competitions past their end time read as expired.
func EffectiveStatus(c model.ContractJob, now time.Time) model.CompetitionStatus {
	if c.Competition.Status == model.CompetitionActive && now.After(c.Competition.EndTime) {
		return model.CompetitionExpired
	}
	return c.Competition.Status
}

// ApplyBid validates a bid against contract and returns the updated copy.
// contract itself is never modified.
func ApplyBid(contract model.ContractJob, bidder model.Bidder, amount float64, now time.Time, oracle CompatibilityOracle) (model.ContractJob, error) {
	if status := EffectiveStatus(contract, now); status != model.CompetitionActive {
		return contract, fmt.Errorf("%w: contract %s is %s", ErrCompetitionClosed, contract.ID, status)
	}
	if amount > contract.Budget {
		return contract, &BidExceedsBudgetError{ContractID: contract.ID, Amount: amount, Budget: contract.Budget}
	}
	if reasons := eligibilityProblems(contract.Requirements, bidder, oracle); len(reasons) > 0 {
		return contract, &IneligibleBidderError{ContractID: contract.ID, BidderID: bidder.ID, Reasons: reasons}
	}

	out := contract
	out.BidHistory = make([]model.BidEntry, 0, len(contract.BidHistory)+1)
	out.BidHistory = append(out.BidHistory, contract.BidHistory...)
	out.BidHistory = append(out.BidHistory, model.BidEntry{
		BidderID:   bidder.ID,
		BidderName: bidder.Name,
		Amount:     amount,
		PlacedAt:   now.UTC(),
	})
	best := amount
	out.Competition.CurrentBestBid = &best
	out.Competition.Participants++
	return out, nil
}

func eligibilityProblems(req model.Requirements, bidder model.Bidder, oracle CompatibilityOracle) []string {
	var reasons []string

	hasTrailer := false
	for _, trailer := range bidder.Trailers {
		if trailer != req.TrailerKind {
			continue
		}
		if req.TrailerFallback || oracle.CargoFitsTrailer(req.CargoKind, trailer) {
			hasTrailer = true
			break
		}
	}
	if !hasTrailer {
		reasons = append(reasons, fmt.Sprintf("no %s trailer in fleet", req.TrailerKind))
	}

	hasDriver := false
	for _, driver := range bidder.Drivers {
		if oracle.LicensesCover(driver.Licenses, req.Licenses) {
			hasDriver = true
			break
		}
	}
	if !hasDriver {
		reasons = append(reasons, fmt.Sprintf("no driver holds licenses %v", req.Licenses))
	}
	return reasons
}
