// Package identity resolves bearer credentials to authenticated users.
//
// The service does not own accounts; the platform's identity service
// does. Tokens are HS256 JWTs signed with a shared secret, carrying the
// user id in the subject claim and the account email alongside it. When
// a token has merely expired, the provider exchanges it once against the
// identity service's refresh endpoint before giving up.
package identity
