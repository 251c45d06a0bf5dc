// Package u2f implements the relying-party side of FIDO U2F v2: wire
// parsing, ECDSA/SHA-256 verification, and the JSON message model used to
// register and authenticate U2F tokens. Device attestation metadata lives
// in the attestation subpackage.
//
// The package is stateless: BeginRegistration, CompleteRegistration,
// BeginAuthentication and CompleteAuthentication take and return plain
// values, hold no package-level state, and are safe to call concurrently.
// Challenge storage, device storage, and facet configuration are the
// caller's responsibility.
package u2f
