package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrBidExceedsBudget  = errors.New("bid exceeds contract budget")
	ErrIneligibleBidder  = errors.New("bidder is not eligible")
	ErrCompetitionClosed = errors.New("competition is closed")
)

type BidExceedsBudgetError struct {
	ContractID string
	Amount     float64
	Budget     float64
}

func (e *BidExceedsBudgetError) Error() string {
	return fmt.Sprintf("%s: bid %.2f is above budget %.2f for contract %s", ErrBidExceedsBudget, e.Amount, e.Budget, e.ContractID)
}

func (e *BidExceedsBudgetError) Unwrap() error {
	return ErrBidExceedsBudget
}

type IneligibleBidderError struct {
	ContractID string
	BidderID   string
	Reasons    []string
}

func (e *IneligibleBidderError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIneligibleBidder, strings.Join(e.Reasons, "; "))
}

func (e *IneligibleBidderError) Unwrap() error {
	return ErrIneligibleBidder
}
