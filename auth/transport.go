package auth

import (
	"net/http"
	"strings"
)

const bearerScheme = "Bearer"

// ExtractBearerToken returns the token from an "Authorization: Bearer
// <token>" header. A missing header yields ErrMissingCredentials; any other
// scheme, or a Bearer header without a token, yields ErrUnsupportedScheme.
// The scheme is matched exactly.
func ExtractBearerToken(r *http.Request) (string, error) {
	return ParseBearer(r.Header.Get("Authorization"))
}

// ParseBearer parses an Authorization header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredentials
	}
	scheme, tok, found := strings.Cut(header, " ")
	if !found || scheme != bearerScheme {
		return "", ErrUnsupportedScheme
	}
	tok = strings.TrimSpace(tok)
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", ErrUnsupportedScheme
	}
	return tok, nil
}
