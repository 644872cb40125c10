package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"sweetshop/internal/domain"
)

// ErrUndecodable is returned for tokens whose claims cannot be read.
var ErrUndecodable = errors.New("token cannot be decoded")

// Decoder extracts an identity from a bearer token.
type Decoder interface {
	Decode(token string) (*domain.Identity, error)
}

// Claims is the claim set issued by the sweetshop backend.
type Claims struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTDecoder reads claims without verifying the signature. The backend verifies
// tokens on every request; the client only needs the identity for display and routing.
type JWTDecoder struct {
	parser *jwt.Parser
}

// NewJWTDecoder returns a decoder for unverified JWT claims.
func NewJWTDecoder() *JWTDecoder {
	return &JWTDecoder{parser: jwt.NewParser()}
}

func (d *JWTDecoder) Decode(token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUndecodable
	}
	var claims Claims
	if _, _, err := d.parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	id := claims.ID
	if id == "" {
		id = claims.UserID
	}
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return nil, fmt.Errorf("%w: no subject", ErrUndecodable)
	}

	role := strings.ToLower(strings.TrimSpace(claims.Role))
	if role == "" {
		role = domain.RoleUser
	}

	identity := &domain.Identity{
		ID:       id,
		Email:    claims.Email,
		Username: claims.Username,
		Role:     role,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
