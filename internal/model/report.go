package model

import "time"

// WeeklyBoard is a batch together with the key it is stored under.
type WeeklyBoard struct {
	Region    string
	WeekStart time.Time
	Batch     Batch
}

type OfferDocument struct {
	Region    string
	WeekStart time.Time
	Contract  ContractJob
}
