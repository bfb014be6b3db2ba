package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/freight-market/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by player access tokens.
type Claims struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
	parser *jwt.Parser
}

func NewParser(secret string) *Parser {
	return &Parser{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Parse validates an HS256 access token and returns the player it names.
func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	claims := &Claims{}
	_, err := p.parser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return model.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return model.Principal{
		PlayerID: claims.Subject,
		Name:     claims.Name,
		Region:   strings.TrimSpace(claims.Region),
	}, nil
}

// Issue signs a token for principal. Used by tooling and tests.
func (p *Parser) Issue(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = principal.PlayerID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name:             principal.Name,
		Region:           principal.Region,
		RegisteredClaims: claims,
	})
	return token.SignedString(p.secret)
}
