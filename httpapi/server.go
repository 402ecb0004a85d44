package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/health"
	"github.com/jonwraymond/sessionauth/keys"
	"github.com/jonwraymond/sessionauth/observe"
	"github.com/jonwraymond/sessionauth/resilience"
	"github.com/jonwraymond/sessionauth/session"
)

// Directory is the user directory behind the transport.
type Directory interface {
	session.Directory

	// CliniciansOf returns the clinicians serving a patient.
	CliniciansOf(ctx context.Context, patientID int64) []session.UserRecord

	// PatientsOf returns the patients served by a clinician.
	PatientsOf(ctx context.Context, clinicianID int64) []session.UserRecord
}

// Config wires a Server.
type Config struct {
	// Service issues and validates tokens. Required.
	Service *session.Service

	// Directory verifies credentials and answers the /user routes. Required.
	Directory Directory

	// KeyPair publishes the verification key at JWKSRoute. Nil disables
	// the route.
	KeyPair *keys.KeyPair

	// Health registers the health routes. Nil disables them.
	Health *health.Aggregator

	// Metrics serves MetricsRoute. Nil disables the route.
	Metrics http.Handler

	// Limiter throttles login attempts per user name.
	// Default: 5 attempts, refilled at one per 5 seconds.
	Limiter *resilience.KeyedLimiter

	// Bulkhead caps concurrent credential checks. Default: 4.
	Bulkhead *resilience.Bulkhead

	// Middleware instruments authorization decisions. Default: disabled.
	Middleware *observe.Middleware

	// Authorizer decides role-gated routes. Default: an auth.Gate over the
	// service's role table.
	Authorizer auth.Authorizer
}

// Server serves the session endpoints.
type Server struct {
	svc      *session.Service
	dir      Directory
	roles    *auth.RoleTable
	authz    auth.Authorizer
	jwks     *keys.JWKSet
	health   *health.Aggregator
	metrics  http.Handler
	limiter  *resilience.KeyedLimiter
	bulkhead *resilience.Bulkhead
	mw       *observe.Middleware
}

// NewServer creates a Server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("httpapi: service is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("httpapi: directory is required")
	}
	if cfg.Limiter == nil {
		cfg.Limiter = resilience.NewKeyedLimiter(resilience.RateLimiterConfig{Rate: 0.2, Burst: 5})
	}
	if cfg.Bulkhead == nil {
		cfg.Bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{})
	}
	if cfg.Middleware == nil {
		cfg.Middleware = observe.NewMiddleware(nil, nil, nil)
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = auth.NewGate(cfg.Service.Roles())
	}

	s := &Server{
		svc:      cfg.Service,
		dir:      cfg.Directory,
		roles:    cfg.Service.Roles(),
		authz:    cfg.Authorizer,
		health:   cfg.Health,
		metrics:  cfg.Metrics,
		limiter:  cfg.Limiter,
		bulkhead: cfg.Bulkhead,
		mw:       cfg.Middleware,
	}
	if cfg.KeyPair != nil {
		set := cfg.KeyPair.JWKS()
		s.jwks = &set
	}
	return s, nil
}

// Routes returns the handler for every endpoint.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+AuthenticateRoute, s.handleAuthenticate)
	mux.Handle("POST "+LogoutRoute, s.authenticated(auth.Roles(auth.AllRoles...), http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET "+CliniciansRoute, s.authenticated(auth.Roles(auth.RolePatient), http.HandlerFunc(s.handleClinicians)))
	mux.Handle("GET "+PatientsRoute, s.authenticated(auth.Roles(auth.RoleClinician), http.HandlerFunc(s.handlePatients)))
	mux.Handle("GET "+MeRoute, s.authenticated(auth.Roles(auth.AllRoles...), http.HandlerFunc(s.handleMe)))

	if s.jwks != nil {
		mux.HandleFunc("GET "+JWKSRoute, s.handleJWKS)
	}
	if s.metrics != nil {
		mux.Handle("GET "+MetricsRoute, s.metrics)
	}
	if s.health != nil {
		health.RegisterHandlers(mux, s.health)
	}

	return RecoverMiddleware(
		CorrelationIDMiddleware(
			LoggingMiddleware(
				mux)))
}
