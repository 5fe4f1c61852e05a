// Package httpapi serves the session lifecycle over HTTP with a chi router.
//
// Routes:
//
//	POST /auth/session  issue a root session for the identity the resolver returns
//	POST /auth/refresh  rotate: child session from {rsid, refreshToken}
//	POST /auth/archive  revoke the presented session
//	POST /auth/logout   revoke and log out, clearing the session cookies
//
// Credentials are read from a JSON body or, when absent, from the rsid and
// refreshToken cookies. Failures render as {"error": CODE}.
package httpapi
