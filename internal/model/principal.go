package model

// Principal is the authenticated player, taken from the access token.
type Principal struct {
	PlayerID string
	Name     string
	Region   string
}

// Bidder is the caller-supplied view of a player's fleet and staff roster.
type Bidder struct {
	ID       string
	Name     string
	Trailers []string
	Drivers  []Driver
}

type Driver struct {
	Name     string   `json:"name"`
	Licenses []string `json:"licenses"`
}
