// Package diary implements a personal diary backend: account registration and
// authentication, private diary entries with tags and emotion annotations, and
// a pluggable AI capability for summaries and sentiment analysis.
//
// Token lifecycle:
//   - Logins issue a short-lived access token and a longer-lived refresh
//     token, both signed JWTs carrying a subject, a type (typ) and a unique
//     id (jti). Tokens travel either as a bearer header or as http-only
//     cookies; the bearer header always wins when both are present.
//   - Refresh tokens are single use. Consuming one revokes its jti (keyed to
//     the token's own expiry) before a new pair is returned, so a replayed
//     refresh token always fails, including when two requests race over the
//     same token.
//   - The revocation store answers membership with lazy expiry: an entry whose
//     recorded expiry has passed is treated as absent whether or not a purge
//     has run.
//
// Stores:
//   - CredentialStore and RevocationStore are narrow interfaces with a Bun
//     backed implementation for production and an in-memory implementation
//     used by tests. The orchestrator depends on the interfaces only, which
//     keeps the auth core free of persistence concerns.
package diary
