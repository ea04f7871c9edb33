// Package http exposes the verification service over a single
// action-dispatched JSON endpoint.
//
// Clients POST /v1/2fa with {"action": ...} plus the action's fields,
// authenticated by a bearer token the identity provider resolves.
// Responses wrap payloads in {"data": ...} and failures in
// {"error": {"code", "message"}} with stable snake_case codes, so
// callers can branch on codes without parsing prose.
package http
