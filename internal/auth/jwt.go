package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSecret is returned when a verifier is constructed without a signing key.
var ErrNoSecret = errors.New("jwt secret is not configured")

// Identity is the verified principal attached to a connection after the
// authentication handshake.
type Identity struct {
	Email string
}

// Claims represents JWT claims for chatroom authentication.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Verifier turns a bearer credential into a verified identity.
// Implementations must honor ctx cancellation for bounded verification.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// JWTVerifier validates locally signed HS256 tokens.
type JWTVerifier struct {
	cfg *JWTConfig
}

// NewJWTVerifier builds a verifier. Fails when no signing secret is
// configured so that misconfiguration surfaces at startup, not per
// connection.
func NewJWTVerifier(cfg *JWTConfig) (*JWTVerifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	return &JWTVerifier{cfg: cfg}, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (v *JWTVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	claims, err := ValidateToken(v.cfg, credential)
	if err != nil {
		return Identity{}, err
	}

	// Signature checks are CPU-bound; re-check the deadline so a caller
	// with an expired context never observes success.
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	return Identity{Email: claims.Email}, nil
}

// GenerateToken creates a new JWT token for the given user.
func GenerateToken(cfg *JWTConfig, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// ValidateToken parses and validates a JWT token.
func ValidateToken(cfg *JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("token carries no email")
	}

	// Validate issuer and audience if configured
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	if cfg.Audience != "" {
		validAudience := false
		for _, aud := range claims.Audience {
			if aud == cfg.Audience {
				validAudience = true
				break
			}
		}
		if !validAudience {
			return nil, fmt.Errorf("invalid audience")
		}
	}

	return claims, nil
}
