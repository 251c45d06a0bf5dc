package attestation

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// generateIssuer creates a self-signed CA-ish certificate/key pair to stand
// in for a vendor's trusted root, mirroring tstranex-u2f/virtualkey.go's own
// generateCert helper.
func generateIssuer(t *testing.T, commonName string) (*ecdsa.PrivateKey, *x509.Certificate, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		SignatureAlgorithm:    x509.ECDSAWithSHA256,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("x509.CreateCertificate (issuer): %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("x509.ParseCertificate (issuer): %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return key, cert, string(pemBytes)
}

// mustGenKey returns a fresh P-256 key, for callers that need a signer but
// don't care whether it matches any particular issuer certificate (e.g.
// matcher tests that never verify the chain).
func mustGenKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	return key
}

// generateLeaf issues a certificate signed by issuer/issuerKey, with
// extraExtensions appended verbatim (used to embed the transports
// extension in attestation-cert fixtures).
func generateLeaf(t *testing.T, issuer *x509.Certificate, issuerKey *ecdsa.PrivateKey, commonName string, extraExtensions []pkix.Extension) *x509.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber:       big.NewInt(2),
		Subject:            pkix.Name{CommonName: commonName},
		NotBefore:          time.Now().Add(-time.Hour),
		NotAfter:           time.Now().Add(365 * 24 * time.Hour),
		SignatureAlgorithm: x509.ECDSAWithSHA256,
		ExtraExtensions:    extraExtensions,
	}
	// CreateCertificate rejects a parent whose public key differs from the
	// signing key; clearing it on a copy lets callers sign with any key
	// while the leaf still names issuer's subject.
	parent := *issuer
	parent.PublicKey = nil
	der, err := x509.CreateCertificate(rand.Reader, template, &parent, &key.PublicKey, issuerKey)
	if err != nil {
		t.Fatalf("x509.CreateCertificate (leaf): %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("x509.ParseCertificate (leaf): %v", err)
	}
	return cert
}
