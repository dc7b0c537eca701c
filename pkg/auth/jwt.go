package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// Claims is the verified payload of a bearer token.
type Claims struct {
	Username     string
	Role         models.Role
	Organization string
}

// JWTManager signs and verifies bearer tokens. Tokens always carry an
// expiration; issuance without a TTL is not supported.
type JWTManager struct {
	secretKey string
	tokenTTL  time.Duration
	clock     clockwork.Clock
}

func NewJWTManager(secretKey string, tokenTTL time.Duration, clock clockwork.Clock) *JWTManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JWTManager{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
		clock:     clock,
	}
}

// TokenTTL returns the configured token lifetime.
func (j *JWTManager) TokenTTL() time.Duration {
	return j.tokenTTL
}

// GenerateToken issues a signed bearer token for the user. Claims are fixed at
// issuance: subject, role, organization, issued-at, and expiry.
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	if j.secretKey == "" {
		return "", fmt.Errorf("JWT secret key is empty")
	}

	now := j.clock.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          user.Username,
		"role":         string(user.Role),
		"organization": user.Organization,
		"jti":          uuid.New().String(),
		"iat":          now.Unix(),
		"exp":          now.Add(j.tokenTTL).Unix(),
	})

	return token.SignedString([]byte(j.secretKey))
}

// ValidateToken verifies the signature and expiry of a bearer token and
// extracts its claims. Any verification failure, including expiry, is an
// error; the caller maps it to the unauthenticated taxonomy.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.clock.Now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return nil, fmt.Errorf("invalid sub claim")
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid role claim")
	}

	role := models.Role(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q in token", roleStr)
	}

	organization, ok := claims["organization"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid organization claim")
	}

	return &Claims{
		Username:     username,
		Role:         role,
		Organization: organization,
	}, nil
}
