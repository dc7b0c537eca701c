package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// UserStore is the identity store the resolver reads bearer identities from.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// DeviceKeyStore is the credential store for device API keys.
type DeviceKeyStore interface {
	Get(ctx context.Context, key string) (*models.DeviceKey, error)
	Create(ctx context.Context, key *models.DeviceKey) error
	TouchLastUsed(ctx context.Context, key string, at time.Time) error
}

// Resolver turns presented credentials into Principals. It is the only
// component that touches raw credentials; everything downstream operates on
// the resolved Principal.
type Resolver struct {
	users      UserStore
	deviceKeys DeviceKeyStore
	jwtManager *JWTManager
	clock      clockwork.Clock
}

func NewResolver(users UserStore, deviceKeys DeviceKeyStore, jwtManager *JWTManager, clock clockwork.Clock) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Resolver{
		users:      users,
		deviceKeys: deviceKeys,
		jwtManager: jwtManager,
		clock:      clock,
	}
}

// Authenticate verifies a username/password pair and returns the matched user.
// Unknown user and wrong password are indistinguishable to the caller.
func (r *Resolver) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apierror.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: incorrect username or password", apierror.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: incorrect username or password", apierror.ErrUnauthenticated)
	}

	return user, nil
}

// IssueToken generates a bearer token for an authenticated user.
func (r *Resolver) IssueToken(user *models.User) (string, error) {
	return r.jwtManager.GenerateToken(user)
}

// TokenTTL exposes the configured bearer token lifetime.
func (r *Resolver) TokenTTL() int {
	return int(r.jwtManager.TokenTTL().Seconds())
}

// ResolveBearer resolves a bearer token to a Principal. Signature or expiry
// failure, unknown subject, and malformed claims are all unauthenticated; a
// matched but disabled account is forbidden.
func (r *Resolver) ResolveBearer(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := r.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierror.ErrUnauthenticated, err)
	}

	user, err := r.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, apierror.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: user not found", apierror.ErrUnauthenticated)
	}

	if user.Disabled {
		return nil, fmt.Errorf("%w: user account is disabled", apierror.ErrForbidden)
	}

	return &models.Principal{
		ID:           user.Username,
		Role:         user.Role,
		Organization: user.Organization,
		Enabled:      true,
	}, nil
}

// ResolveDeviceKey resolves a device API key to a Principal with the device
// role. The key must exist and be active. Recording the last-used timestamp is
// best-effort: a store failure there is logged and never fails the request.
func (r *Resolver) ResolveDeviceKey(ctx context.Context, key string) (*models.Principal, *models.DeviceKey, error) {
	keyData, err := r.deviceKeys.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apierror.ErrUnavailable) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: invalid or inactive API key", apierror.ErrUnauthenticated)
	}

	if !keyData.Active {
		return nil, nil, fmt.Errorf("%w: invalid or inactive API key", apierror.ErrUnauthenticated)
	}

	if err := r.deviceKeys.TouchLastUsed(ctx, key, r.clock.Now()); err != nil {
		log.Warn().Err(err).Str("device_id", keyData.DeviceID).Msg("Failed to record API key last-used time")
	}

	principal := &models.Principal{
		ID:           keyData.DeviceID,
		Role:         models.RoleDevice,
		Organization: keyData.Organization,
		Enabled:      true,
	}

	return principal, keyData, nil
}

// IssueDeviceKey generates and stores a new device key bound to the device
// and organization. The binding is immutable after issuance.
func (r *Resolver) IssueDeviceKey(ctx context.Context, deviceID, organization string) (*models.DeviceKey, error) {
	key, err := GenerateDeviceKey(deviceID)
	if err != nil {
		return nil, err
	}

	keyData := &models.DeviceKey{
		Key:          key,
		DeviceID:     deviceID,
		Organization: organization,
		CreatedAt:    r.clock.Now().UTC(),
		Active:       true,
	}

	if err := r.deviceKeys.Create(ctx, keyData); err != nil {
		return nil, fmt.Errorf("failed to store device key: %w", err)
	}

	return keyData, nil
}
