// Package cli is the Roomify command-line client.
//
// It wires configuration, on-device state, the API client and the
// session manager, and exposes them as cobra commands plus an interactive
// shell. Typical flow: sign in, add an OpenAI key, then restyle a room photo.
//
// Key features:
//   - Sign up / sign in / sign out / password recovery
//   - API key management and usage history
//   - Stylize: restyle a room photo from a named style or a reference photo
//   - Photo annotations and the scripted design chat
//   - Pricing and hosted checkout
//
// The shell is started via the "shell" command and blocks until the user exits.
package cli
