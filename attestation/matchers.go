package attestation

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"strings"
)

var errInvalidOID = errors.New("attestation: not a valid dotted-decimal OID")

// Matcher decides whether an attestation certificate belongs to the device
// a Selector describes. SelectorType is the Selector.Type value a Matcher
// handles; a MetadataProvider dispatches on it.
type Matcher interface {
	SelectorType() string
	Matches(cert *x509.Certificate, parameters map[string]interface{}) bool
}

// FingerprintMatcher matches on the certificate's SHA-1 fingerprint against
// a case-insensitive list of hex strings in parameters["fingerprints"].
type FingerprintMatcher struct{}

func (FingerprintMatcher) SelectorType() string { return "fingerprint" }

func (FingerprintMatcher) Matches(cert *x509.Certificate, parameters map[string]interface{}) bool {
	raw, _ := parameters["fingerprints"].([]interface{})
	sum := sha1.Sum(cert.Raw)
	fingerprint := hex.EncodeToString(sum[:])
	for _, v := range raw {
		s, ok := v.(string)
		if ok && strings.EqualFold(s, fingerprint) {
			return true
		}
	}
	return false
}

// ExtensionMatcher matches on the raw value of an X.509 extension named by
// OID in parameters["key"], optionally requiring it to equal
// parameters["value"] (a plain string, or a {"type":"hex","value":"..."}
// object for binary comparisons).
type ExtensionMatcher struct{}

func (ExtensionMatcher) SelectorType() string { return "x509Extension" }

func (ExtensionMatcher) Matches(cert *x509.Certificate, parameters map[string]interface{}) bool {
	oidStr, _ := parameters["key"].(string)
	oid, err := parseOID(oidStr)
	if err != nil {
		return false
	}

	extValue, ok := extensionValue(cert, oid)
	if !ok {
		return false
	}

	wantRaw, hasValue := parameters["value"]
	if !hasValue || wantRaw == nil {
		return true
	}

	var want []byte
	switch v := wantRaw.(type) {
	case string:
		want = []byte(v)
	case map[string]interface{}:
		if v["type"] != "hex" {
			return false
		}
		hexStr, _ := v["value"].(string)
		want, err = hex.DecodeString(hexStr)
		if err != nil {
			return false
		}
	default:
		return false
	}
	return string(extValue) == string(want)
}

func parseOID(s string) (asn1.ObjectIdentifier, error) {
	var oid asn1.ObjectIdentifier
	for _, part := range strings.Split(s, ".") {
		n := 0
		for _, r := range part {
			if r < '0' || r > '9' {
				return nil, errInvalidOID
			}
			n = n*10 + int(r-'0')
		}
		oid = append(oid, n)
	}
	if len(oid) == 0 {
		return nil, errInvalidOID
	}
	return oid, nil
}

func extensionValue(cert *x509.Certificate, oid asn1.ObjectIdentifier) ([]byte, bool) {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return ext.Value, true
		}
	}
	return nil, false
}

// DefaultMatchers mirrors the built-in selector types every MetadataProvider
// supports unless overridden.
func DefaultMatchers() []Matcher {
	return []Matcher{FingerprintMatcher{}, ExtensionMatcher{}}
}
