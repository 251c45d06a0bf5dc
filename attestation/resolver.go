package attestation

import (
	"crypto/x509"
	"encoding/pem"
	"sync"

	"github.com/gravitational/trace"
)

// MetadataResolver indexes a set of MetadataObjects by their trusted root
// certificates' subject common name, and resolves an attestation
// certificate back to the metadata that vouches for its issuer. It is safe
// for concurrent use: Resolve takes a read lock, AddMetadata a write lock.
type MetadataResolver struct {
	mu sync.RWMutex

	identifiers map[string]MetadataObject          // identifier -> metadata
	certs       map[string][]*x509.Certificate      // issuer subject CN -> trusted certs
	metadataOf  map[*x509.Certificate]MetadataObject // trusted cert -> metadata
}

// NewMetadataResolver returns an empty resolver; populate it with
// AddMetadata or LoadPath (store.go).
func NewMetadataResolver() *MetadataResolver {
	return &MetadataResolver{
		identifiers: make(map[string]MetadataObject),
		certs:       make(map[string][]*x509.Certificate),
		metadataOf:  make(map[*x509.Certificate]MetadataObject),
	}
}

// AddMetadata indexes metadata's trusted certificates. If a MetadataObject
// with the same Identifier was already added, the one with the higher
// Version wins; a tie or an older version is a silent no-op, matching the
// "last writer with a higher version" rule the metadata format requires.
// Accepting a strictly newer version re-indexes every previously added
// object from scratch, since certificate identity (pointer equality here)
// changes when a PEM block is reparsed.
func (r *MetadataResolver) AddMetadata(metadata MetadataObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.identifiers[metadata.Identifier]; ok {
		if metadata.Version <= existing.Version {
			return nil
		}
		r.identifiers[metadata.Identifier] = metadata
		r.certs = make(map[string][]*x509.Certificate)
		r.metadataOf = make(map[*x509.Certificate]MetadataObject)
		for _, m := range r.identifiers {
			if err := r.index(m); err != nil {
				return err
			}
		}
		return nil
	}

	r.identifiers[metadata.Identifier] = metadata
	return r.index(metadata)
}

func (r *MetadataResolver) index(metadata MetadataObject) error {
	for _, certPEM := range metadata.TrustedCertificates {
		block, _ := pem.Decode([]byte(certPEM))
		if block == nil {
			return trace.BadParameter("trusted certificate for metadata %q is not PEM-encoded", metadata.Identifier)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return trace.Wrap(err, "parsing trusted certificate for metadata %q", metadata.Identifier)
		}
		subject := cert.Subject.CommonName
		r.certs[subject] = append(r.certs[subject], cert)
		r.metadataOf[cert] = metadata
	}
	return nil
}

// verifyCert reports whether cert carries a valid signature made by
// issuer's key. It checks only the signature, exactly as the attestation
// model requires: no chain-of-trust, expiry, or key-usage checks.
func verifyCert(cert, issuer *x509.Certificate) bool {
	return issuer.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

// Resolve looks up the MetadataObject that vouches for cert's issuer,
// verifying cert's signature against each candidate trusted certificate
// sharing its issuer's common name. It returns false if no trusted
// certificate's signature matches.
func (r *MetadataResolver) Resolve(cert *x509.Certificate) (MetadataObject, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issuerCN := cert.Issuer.CommonName
	for _, issuer := range r.certs[issuerCN] {
		if verifyCert(cert, issuer) {
			return r.metadataOf[issuer], true
		}
	}
	return MetadataObject{}, false
}
