package model

type IssuerKind string

const (
	IssuerState   IssuerKind = "state"
	IssuerPrivate IssuerKind = "private"
)

// Issuer is the party offering a contract.
type Issuer struct {
	Name string     `json:"name"`
	Kind IssuerKind `json:"kind"`
}
