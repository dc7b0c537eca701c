package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/JudeSurin/SpaceLink-Complete/internal/database"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/auth"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

var partnerTiers = map[string]bool{
	"bronze":   true,
	"silver":   true,
	"gold":     true,
	"platinum": true,
}

func validatePartnerCreate(req *models.PartnerCreate) error {
	if req.OrganizationName == "" {
		return fmt.Errorf("%w: organization_name is required", apierror.ErrInvalidInput)
	}
	if !req.PartnerType.Valid() {
		return fmt.Errorf("%w: invalid partner_type %q", apierror.ErrInvalidInput, req.PartnerType)
	}
	if req.Tier != "" && !partnerTiers[req.Tier] {
		return fmt.Errorf("%w: invalid tier %q", apierror.ErrInvalidInput, req.Tier)
	}
	if req.PrimaryContactName == "" || req.PrimaryContactEmail == "" {
		return fmt.Errorf("%w: primary contact name and email are required", apierror.ErrInvalidInput)
	}
	if !strings.Contains(req.PrimaryContactEmail, "@") {
		return fmt.Errorf("%w: invalid primary_contact_email", apierror.ErrInvalidInput)
	}
	return nil
}

// OnboardPartner registers a new partner organization with API access
// enabled.
func (h *Handler) OnboardPartner(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	var req models.PartnerCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
		return
	}
	if err := validatePartnerCreate(&req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerManage, req.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}

	tier := req.Tier
	if tier == "" {
		tier = "bronze"
	}
	partner := &models.Partner{
		PartnerID:           newResourceID("partner"),
		OrganizationName:    req.OrganizationName,
		PartnerType:         req.PartnerType,
		Tier:                tier,
		PrimaryContactName:  req.PrimaryContactName,
		PrimaryContactEmail: req.PrimaryContactEmail,
		PrimaryContactPhone: req.PrimaryContactPhone,
		APIAccessEnabled:    true,
		WebhookURL:          req.WebhookURL,
		IPWhitelist:         req.IPWhitelist,
		Status:              "active",
		OnboardedAt:         h.clock.Now().UTC(),
		Notes:               req.Notes,
		Tags:                req.Tags,
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Partners.Create(ctx, partner); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("partner_id", partner.PartnerID).Str("organization", partner.OrganizationName).
		Msg("Onboarded partner")

	writeJSON(w, http.StatusCreated, partner)
}

// ListPartners returns partners within the caller's scope.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	q := r.URL.Query()

	if err := h.authorize(p, auth.ActionPartnerRead, p.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	partners, err := h.db.Partners.List(ctx, database.PartnerFilter{
		OrganizationName: queryScope(p, q.Get("organization")),
		PartnerType:      q.Get("partner_type"),
		Tier:             q.Get("tier"),
		Status:           q.Get("status"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, partners)
}

func (h *Handler) fetchPartner(r *http.Request) (*models.Partner, error) {
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	return h.db.Partners.Get(ctx, mux.Vars(r)["partner_id"])
}

// GetPartner returns one partner by id.
func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	partner, err := h.fetchPartner(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerRead, partner.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, partner)
}

// UpdatePartner applies a partial update to a partner record.
func (h *Handler) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	var req models.PartnerUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
		return
	}

	partner, err := h.fetchPartner(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerManage, partner.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}

	if req.PartnerType != nil && !req.PartnerType.Valid() {
		respondError(w, r, fmt.Errorf("%w: invalid partner_type %q", apierror.ErrInvalidInput, *req.PartnerType))
		return
	}
	if req.Tier != nil && !partnerTiers[*req.Tier] {
		respondError(w, r, fmt.Errorf("%w: invalid tier %q", apierror.ErrInvalidInput, *req.Tier))
		return
	}

	if req.OrganizationName != nil {
		partner.OrganizationName = *req.OrganizationName
	}
	if req.PartnerType != nil {
		partner.PartnerType = *req.PartnerType
	}
	if req.Tier != nil {
		partner.Tier = *req.Tier
	}
	if req.PrimaryContactName != nil {
		partner.PrimaryContactName = *req.PrimaryContactName
	}
	if req.PrimaryContactEmail != nil {
		partner.PrimaryContactEmail = *req.PrimaryContactEmail
	}
	if req.PrimaryContactPhone != nil {
		partner.PrimaryContactPhone = *req.PrimaryContactPhone
	}
	if req.WebhookURL != nil {
		partner.WebhookURL = *req.WebhookURL
	}
	if req.IPWhitelist != nil {
		partner.IPWhitelist = req.IPWhitelist
	}
	if req.Status != nil {
		partner.Status = *req.Status
	}
	if req.Notes != nil {
		partner.Notes = *req.Notes
	}
	if req.Tags != nil {
		partner.Tags = req.Tags
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Partners.Update(ctx, partner); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, partner)
}

func (h *Handler) setPartnerAccess(w http.ResponseWriter, r *http.Request, status string, apiAccess bool) {
	p := h.principal(r)

	partner, err := h.fetchPartner(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerManage, partner.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Partners.SetAccess(ctx, partner.PartnerID, status, apiAccess); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("partner_id", partner.PartnerID).Str("status", status).Msg("Changed partner access")

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    fmt.Sprintf("Partner %s is now %s", partner.PartnerID, status),
		"partner_id": partner.PartnerID,
		"status":     status,
	})
}

// SuspendPartner disables a partner's API access.
func (h *Handler) SuspendPartner(w http.ResponseWriter, r *http.Request) {
	h.setPartnerAccess(w, r, "suspended", false)
}

// ActivatePartner re-enables a suspended partner.
func (h *Handler) ActivatePartner(w http.ResponseWriter, r *http.Request) {
	h.setPartnerAccess(w, r, "active", true)
}

// DeletePartner removes a partner record.
func (h *Handler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	partner, err := h.fetchPartner(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerManage, partner.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Partners.Delete(ctx, partner.PartnerID); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("partner_id", partner.PartnerID).Msg("Deleted partner")

	w.WriteHeader(http.StatusNoContent)
}

// GeneratePartnerAPIKey mints a device API key under the partner's
// organization. The key is returned once and never shown again.
func (h *Handler) GeneratePartnerAPIKey(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		respondError(w, r, fmt.Errorf("%w: device_id is required", apierror.ErrInvalidInput))
		return
	}

	partner, err := h.fetchPartner(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerManage, partner.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}
	if !partner.APIAccessEnabled {
		respondError(w, r, fmt.Errorf("%w: partner API access is disabled", apierror.ErrForbidden))
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	key, err := h.resolver.IssueDeviceKey(ctx, deviceID, partner.OrganizationName)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("partner_id", partner.PartnerID).Str("device_id", deviceID).
		Msg("Generated device API key")

	writeJSON(w, http.StatusCreated, models.DeviceKeyIssued{
		PartnerID: partner.PartnerID,
		DeviceID:  deviceID,
		APIKey:    key.Key,
		CreatedAt: key.CreatedAt,
		Usage:     "Include in X-API-Key header for telemetry submission",
	})
}

// PartnerIntegrationStatus reports whether a partner's devices have sent
// telemetry in the last 24 hours.
func (h *Handler) PartnerIntegrationStatus(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	partner, err := h.fetchPartner(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionPartnerRead, partner.OrganizationName); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	count, err := h.db.Telemetry.CountSince(ctx, partner.OrganizationName, h.clock.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.IntegrationStatus{
		PartnerID:             partner.PartnerID,
		Organization:          partner.OrganizationName,
		Status:                partner.Status,
		APIAccessEnabled:      partner.APIAccessEnabled,
		IntegrationActive:     count > 0,
		Last24hTelemetryCount: count,
		WebhookConfigured:     partner.WebhookURL != "",
		IPWhitelistConfigured: len(partner.IPWhitelist) > 0,
	})
}
