// Package middleware adapts access-token validation to net/http.
//
// [Guard] reads the bearer token (or the accessToken cookie), calls
// Engine.Validate and stores the claims in the request context.
// [RequirePermission] and [RequireAdmin] gate routes on those claims.
// Rejections are JSON bodies of the form {"error":CODE}.
// No store round trip happens here; access tokens are self-contained.
package middleware
