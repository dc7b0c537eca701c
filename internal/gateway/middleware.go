package gateway

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JudeSurin/SpaceLink-Complete/internal/metrics"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	deviceKeyContextKey contextKey = "device_key"
)

// PrincipalFromContext returns the authenticated principal placed there by
// the auth middlewares.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*models.Principal)
	return p, ok
}

// DeviceKeyFromContext returns the API key record for device-key requests.
func DeviceKeyFromContext(ctx context.Context) (*models.DeviceKey, bool) {
	k, ok := ctx.Value(deviceKeyContextKey).(*models.DeviceKey)
	return k, ok
}

func (h *Handler) principal(r *http.Request) *models.Principal {
	p, _ := PrincipalFromContext(r.Context())
	return p
}

// requireBearer authenticates the request with a JWT bearer token and stores
// the resolved principal in the request context.
func (h *Handler) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			metrics.AuthRequestsTotal.WithLabelValues("missing", "bearer").Inc()
			respondError(w, r, apierror.ErrUnauthenticated)
			return
		}

		ctx, cancel := h.storeCtx(r)
		defer cancel()

		principal, err := h.resolver.ResolveBearer(ctx, token)
		if err != nil {
			metrics.AuthRequestsTotal.WithLabelValues("denied", "bearer").Inc()
			respondError(w, r, err)
			return
		}
		metrics.AuthRequestsTotal.WithLabelValues("ok", "bearer").Inc()

		next(w, r.WithContext(context.WithValue(r.Context(), principalContextKey, principal)))
	}
}

// requireDeviceKey authenticates the request with an X-API-Key header and
// stores both the key record and its device principal in the context.
func (h *Handler) requireDeviceKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			metrics.AuthRequestsTotal.WithLabelValues("missing", "api_key").Inc()
			respondError(w, r, apierror.ErrUnauthenticated)
			return
		}

		ctx, cancel := h.storeCtx(r)
		defer cancel()

		principal, record, err := h.resolver.ResolveDeviceKey(ctx, key)
		if err != nil {
			metrics.AuthRequestsTotal.WithLabelValues("denied", "api_key").Inc()
			respondError(w, r, err)
			return
		}
		metrics.AuthRequestsTotal.WithLabelValues("ok", "api_key").Inc()

		reqCtx := context.WithValue(r.Context(), principalContextKey, principal)
		reqCtx = context.WithValue(reqCtx, deviceKeyContextKey, record)
		next(w, r.WithContext(reqCtx))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and latencies per route.
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CORS handles cross-origin headers and preflight requests for web clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
