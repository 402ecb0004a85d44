// Package httpapi is the HTTP transport for the session service.
//
// POST /authenticate exchanges {"user_name", "user_pass"} for a token,
// returned as text/plain. Every /user route and /logout require an
// "Authorization: Bearer <token>" header. A missing header or another
// scheme is answered with 422, an invalid, superseded or expired token
// with 401, a role outside the route's set with 403, and an unreachable
// revocation store with 503.
package httpapi
