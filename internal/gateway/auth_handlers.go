package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// Login exchanges user credentials for a bearer token. Credentials are
// accepted as JSON or as a urlencoded form body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			respondError(w, r, fmt.Errorf("%w: malformed form body", apierror.ErrInvalidInput))
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
			return
		}
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, r, fmt.Errorf("%w: username and password are required", apierror.ErrInvalidInput))
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	user, err := h.resolver.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		log.Warn().Str("username", req.Username).Msg("Login rejected")
		respondError(w, r, err)
		return
	}

	token, err := h.resolver.IssueToken(user)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("Issued bearer token")

	writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.resolver.TokenTTL(),
		Role:        user.Role,
	})
}

// Me returns the authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.principal(r))
}
