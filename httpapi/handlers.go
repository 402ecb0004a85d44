package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/resilience"
	"github.com/jonwraymond/sessionauth/session"
)

// maxBodyBytes bounds the authenticate request body.
const maxBodyBytes = 4 << 10

// Credentials is the authenticate request body.
type Credentials struct {
	UserName string `json:"user_name"`
	UserPass string `json:"user_pass"`
}

// UserResponse is one entry of the /user listings.
type UserResponse struct {
	UserID       int64  `json:"user_id"`
	UserName     string `json:"user_name"`
	UserFullName string `json:"user_full_name"`
}

// MeResponse describes the caller's session.
type MeResponse struct {
	SubjectID   int64     `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Role        string    `json:"role"`
	TokenID     string    `json:"jti"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func decodeCredentials(r *http.Request) (*Credentials, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var c Credentials
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("extra data in request body")
	}
	if c.UserName == "" || c.UserPass == "" {
		return nil, errors.New("user_name and user_pass are required")
	}
	return &c, nil
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creds, err := decodeCredentials(r)
	if err != nil {
		Error(w, r, "invalid request: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if !s.limiter.Allow(creds.UserName) {
		writeError(w, r, resilience.ErrRateLimitExceeded)
		return
	}

	var raw string
	err = s.bulkhead.Execute(ctx, func(ctx context.Context) error {
		var err error
		raw, err = s.svc.Login(ctx, s.dir, creds.UserName, creds.UserPass)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.limiter.Forget(creds.UserName)

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, raw)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := s.svc.Revoke(r.Context(), id.SubjectID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClinicians(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	JSON(w, r, toUsers(s.dir.CliniciansOf(r.Context(), id.SubjectID)), http.StatusOK)
}

func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	JSON(w, r, toUsers(s.dir.PatientsOf(r.Context(), id.SubjectID)), http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	JSON(w, r, MeResponse{
		SubjectID:   id.SubjectID,
		SubjectName: id.Name,
		Role:        id.RoleName,
		TokenID:     id.TokenID,
		IssuedAt:    id.IssuedAt.UTC(),
		ExpiresAt:   id.ExpiresAt.UTC(),
	}, http.StatusOK)
}

func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	JSON(w, r, s.jwks, http.StatusOK)
}

func toUsers(recs []session.UserRecord) []UserResponse {
	out := make([]UserResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, UserResponse{UserID: rec.ID, UserName: rec.Name, UserFullName: rec.FullName})
	}
	return out
}
