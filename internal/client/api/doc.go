// Package api is the HTTP client for the Roomify API server.
//
// # Overview
//
// Client wraps the JSON endpoints under /v1: authentication, the credential
// store (API keys and usage logs), billing, and the websocket stream of
// session events. It keeps the current access and refresh tokens, attaches
// the access token to authenticated calls, and when the server answers
// 401 "token expired" it rotates the tokens once and replays the request.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are *StatusError
// values that unwrap to the matching sentinel (ErrUnauthorized,
// common.ErrorNotFound, common.ErrorAlreadyExists, common.ErrorValidation),
// so callers match them with errors.Is.
//
// Concurrency & Contexts
//
// Client is safe for concurrent use. Every call takes a context.Context.
package api
