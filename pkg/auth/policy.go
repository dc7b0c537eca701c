package auth

import (
	"fmt"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// Action is a gated operation on a tenant-owned resource.
type Action string

const (
	ActionTelemetryRead   Action = "telemetry:read"
	ActionTelemetryDelete Action = "telemetry:delete"
	ActionNetworkRead     Action = "network:read"
	ActionNetworkWrite    Action = "network:write"
	ActionNetworkDelete   Action = "network:delete"
	ActionPartnerRead     Action = "partner:read"
	ActionPartnerManage   Action = "partner:manage"
)

// roleGates lists which roles may perform each action, independent of tenant
// matching. Actions absent from the map are open to any authenticated role.
var roleGates = map[Action][]models.Role{
	ActionTelemetryDelete: {models.RoleAdmin},
	ActionNetworkWrite:    {models.RoleAdmin, models.RolePartner},
	ActionNetworkDelete:   {models.RoleAdmin},
	ActionPartnerRead:     {models.RoleAdmin, models.RolePartner},
	ActionPartnerManage:   {models.RoleAdmin},
}

// Authorize decides whether the principal may perform action on a resource
// owned by resourceOrg. It is a pure function of its inputs: identical calls
// always yield identical results.
//
// Precedence:
//  1. admin is allowed any action on any tenant
//  2. any other role is denied outside its own tenant
//  3. the action's role gate applies even within the tenant
func Authorize(p *models.Principal, action Action, resourceOrg string) error {
	if p == nil || !p.Enabled {
		return fmt.Errorf("%w: no principal", apierror.ErrUnauthenticated)
	}

	if p.IsAdmin() {
		return nil
	}

	if p.Organization != resourceOrg {
		return fmt.Errorf("%w: cross-tenant access", apierror.ErrForbidden)
	}

	allowed, gated := roleGates[action]
	if !gated {
		return nil
	}
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}

	return fmt.Errorf("%w: role %s may not perform %s", apierror.ErrForbidden, p.Role, action)
}

// AuthorizeDeviceWrite checks that a device-key principal is writing telemetry
// for the exact device its key is bound to. Same-tenant submissions for a
// different device are still denied.
func AuthorizeDeviceWrite(key *models.DeviceKey, deviceID string) error {
	if key == nil {
		return fmt.Errorf("%w: no device key", apierror.ErrUnauthenticated)
	}
	if key.DeviceID != deviceID {
		return fmt.Errorf("%w: device id mismatch, API key is for %s", apierror.ErrForbidden, key.DeviceID)
	}
	return nil
}
