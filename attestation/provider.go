package attestation

import (
	"crypto/x509"

	"github.com/strandkey/u2f"
)

// MetadataProvider ties a MetadataResolver to a set of Matchers, turning a
// raw attestation certificate into an Attestation: trusted or not, which
// vendor, which device model, and what transports it supports.
type MetadataProvider struct {
	resolver *MetadataResolver
	matchers map[string]Matcher
}

// NewMetadataProvider builds a MetadataProvider over resolver. If matchers
// is empty, DefaultMatchers() is used.
func NewMetadataProvider(resolver *MetadataResolver, matchers ...Matcher) *MetadataProvider {
	if resolver == nil {
		resolver = NewMetadataResolver()
	}
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	p := &MetadataProvider{resolver: resolver, matchers: make(map[string]Matcher, len(matchers))}
	for _, m := range matchers {
		p.AddMatcher(m)
	}
	return p
}

// AddMatcher registers (or replaces) the Matcher for its SelectorType.
func (p *MetadataProvider) AddMatcher(m Matcher) {
	p.matchers[m.SelectorType()] = m
}

// GetAttestation resolves cert against the provider's metadata, returning
// trust status, vendor/device info when trusted, and the transports
// declared by either the certificate or the matched device entry.
func (p *MetadataProvider) GetAttestation(cert *x509.Certificate) Attestation {
	metadata, trusted := p.resolver.Resolve(cert)

	var vendorInfo map[string]interface{}
	device := DeviceInfo{}
	if trusted {
		vendorInfo = metadata.VendorInfo
		device = p.lookupDevice(metadata, cert)
	}

	certMask, certDeclared, _ := u2f.CertificateTransportMask(cert)
	mask := certMask | device.transportMask()

	var transports []u2f.Transport
	if certDeclared || device.Transports != nil {
		transports = append([]u2f.Transport{}, transportsFromMask(mask)...)
	}

	return Attestation{
		Trusted:    trusted,
		VendorInfo: vendorInfo,
		Device:     device,
		Transports: transports,
	}
}

// lookupDevice finds the first DeviceInfo in metadata whose selectors match
// cert. A device with no selectors at all matches unconditionally; a device
// with selectors matches if any one of them does, consulting the matcher
// registered for that selector's type (an unregistered selector type never
// matches). No match returns the zero DeviceInfo.
func (p *MetadataProvider) lookupDevice(metadata MetadataObject, cert *x509.Certificate) DeviceInfo {
	for _, device := range metadata.Devices {
		if device.Selectors == nil {
			return device
		}
		for _, sel := range device.Selectors {
			if matcher, ok := p.matchers[sel.Type]; ok && matcher.Matches(cert, sel.Parameters) {
				return device
			}
		}
	}
	return DeviceInfo{}
}
