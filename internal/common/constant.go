// Package common contains shared constants, sentinel errors and small helpers
// used across Roomify components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// DefaultEncryptionPassphrase is used when no passphrase is configured.
// Deployments are expected to override it.
const DefaultEncryptionPassphrase = "default-key-change-in-production"
