package u2f

import (
	"encoding/json"
)

const versionU2F = "U2F_V2"

// ClientData type discriminators.
const (
	typeRegister = "navigator.id.finishEnrollment"
	typeSign     = "navigator.id.getAssertion"
)

// requireFields checks that every name in fields is a key of the JSON
// object encoded in data, without otherwise interpreting the object. This
// is the "required field names must be a subset of keys" rule from the
// message model: unknown extra keys are tolerated, missing ones are not.
func requireFields(data []byte, fields ...string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return wrapErr(ErrMalformedMessage, "not a JSON object", err)
	}
	for _, f := range fields {
		if _, ok := raw[f]; !ok {
			return newErr(ErrMalformedMessage, "missing required field "+f)
		}
	}
	return nil
}

// ClientData is the JSON object a device signs and returns base64-encoded
// alongside its registration or signature data.
type ClientData struct {
	Typ       string `json:"typ"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
	CIDPubKey string `json:"cid_pubkey,omitempty"`
}

func (c *ClientData) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "typ", "challenge", "origin"); err != nil {
		return err
	}
	type alias ClientData
	return json.Unmarshal(data, (*alias)(c))
}

// decodeClientData accepts the raw clientData field from a response: it is
// normally a web-safe-base64 encoded JSON object, but per the message
// model a caller may also hand in an already-decoded JSON object string.
// It returns both the parsed struct and the exact decoded byte sequence,
// since the challenge parameter hashes those bytes verbatim.
func decodeClientData(encoded string) (*ClientData, []byte, error) {
	raw, err := decodeBase64(encoded)
	if err != nil || !json.Valid(raw) {
		raw = []byte(encoded)
	}
	var cd ClientData
	if err := json.Unmarshal(raw, &cd); err != nil {
		return nil, nil, wrapErr(ErrMalformedMessage, "clientData does not decode to a JSON object", err)
	}
	return &cd, raw, nil
}

// RegisterRequest is sent server-to-client to begin a registration.
type RegisterRequest struct {
	Version   string `json:"version"`
	AppId     string `json:"appId"`
	Challenge string `json:"challenge"`
}

func (r *RegisterRequest) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "version", "challenge"); err != nil {
		return err
	}
	type alias RegisterRequest
	return json.Unmarshal(data, (*alias)(r))
}

// RegisterResponse is sent client-to-server to complete a registration.
type RegisterResponse struct {
	Version          string `json:"version"`
	RegistrationData string `json:"registrationData"`
	ClientData       string `json:"clientData"`
}

func (r *RegisterResponse) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "version", "registrationData", "clientData"); err != nil {
		return err
	}
	type alias RegisterResponse
	return json.Unmarshal(data, (*alias)(r))
}

// SignRequest is sent server-to-client to begin an authentication.
type SignRequest struct {
	Version   string `json:"version"`
	AppId     string `json:"appId"`
	KeyHandle string `json:"keyHandle"`
	Challenge string `json:"challenge"`
}

// SignResponse is sent client-to-server to complete an authentication.
type SignResponse struct {
	KeyHandle     string `json:"keyHandle"`
	SignatureData string `json:"signatureData"`
	ClientData    string `json:"clientData"`
}

func (r *SignResponse) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "keyHandle", "signatureData", "clientData"); err != nil {
		return err
	}
	type alias SignResponse
	return json.Unmarshal(data, (*alias)(r))
}

// RegisteredKey is the subset of a DeviceRegistration needed to issue a
// sign challenge, and to let a device refuse to re-register.
type RegisteredKey struct {
	Version    string   `json:"version"`
	KeyHandle  string   `json:"keyHandle"`
	AppId      string   `json:"appId,omitempty"`
	Transports []string `json:"transports,omitempty"`
}

func (k *RegisteredKey) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "version", "keyHandle"); err != nil {
		return err
	}
	type alias RegisteredKey
	return json.Unmarshal(data, (*alias)(k))
}

// KeyData returns a copy of k holding the fields a registeredKeys hint is
// transmitted with (version, keyHandle, appId, transports). RegisteredKey
// has no other fields, so nothing is dropped.
func (k RegisteredKey) KeyData() RegisteredKey {
	return RegisteredKey{
		Version:    k.Version,
		KeyHandle:  k.KeyHandle,
		AppId:      k.AppId,
		Transports: k.Transports,
	}
}

// DeviceRegistration is the persistent record returned by a successful
// registration; callers store one of these per enrolled authenticator.
type DeviceRegistration struct {
	Version    string   `json:"version"`
	AppId      string   `json:"appId,omitempty"`
	KeyHandle  string   `json:"keyHandle"`
	PublicKey  string   `json:"publicKey"`
	Transports []string `json:"transports,omitempty"`
}

func (d *DeviceRegistration) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "version", "keyHandle", "publicKey"); err != nil {
		return err
	}
	type alias DeviceRegistration
	return json.Unmarshal(data, (*alias)(d))
}

// RegisteredKey returns the RegisteredKey view of this device, for issuing
// a SignRequest or as a negative hint in a future RegisterRequest.
func (d DeviceRegistration) RegisteredKey() RegisteredKey {
	return RegisteredKey{
		Version:    d.Version,
		KeyHandle:  d.KeyHandle,
		AppId:      d.AppId,
		Transports: d.Transports,
	}
}

func (d DeviceRegistration) applicationParameter(requestAppID string) [32]byte {
	if d.AppId != "" {
		return applicationParameter(d.AppId)
	}
	return applicationParameter(requestAppID)
}

// U2fRegisterRequest is the bundle handed to the caller by BeginRegistration
// for serialization to the client.
type U2fRegisterRequest struct {
	AppId            string            `json:"appId"`
	RegisterRequests []RegisterRequest `json:"registerRequests"`
	RegisteredKeys   []RegisteredKey   `json:"registeredKeys"`
}

func (r *U2fRegisterRequest) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "appId", "registerRequests", "registeredKeys"); err != nil {
		return err
	}
	type alias U2fRegisterRequest
	return json.Unmarshal(data, (*alias)(r))
}

// DataForClient elides server-internal fields (there are none at this
// level beyond normalizing registeredKeys) before the bundle is sent to
// the browser/JS client.
func (r U2fRegisterRequest) DataForClient() U2fRegisterRequest {
	keys := make([]RegisteredKey, len(r.RegisteredKeys))
	for i, k := range r.RegisteredKeys {
		keys[i] = k.KeyData()
	}
	return U2fRegisterRequest{
		AppId:            r.AppId,
		RegisterRequests: r.RegisterRequests,
		RegisteredKeys:   keys,
	}
}

func (r U2fRegisterRequest) request(version string) (*RegisterRequest, error) {
	for i := range r.RegisterRequests {
		if r.RegisterRequests[i].Version == version {
			return &r.RegisterRequests[i], nil
		}
	}
	return nil, newErr(ErrUnsupportedVersion, "no registerRequests entry for version "+version)
}

// U2fSignRequest is the bundle handed to the caller by BeginAuthentication
// for serialization to the client.
type U2fSignRequest struct {
	AppId          string          `json:"appId"`
	Challenge      string          `json:"challenge"`
	RegisteredKeys []RegisteredKey `json:"registeredKeys"`
}

func (r *U2fSignRequest) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "appId", "challenge", "registeredKeys"); err != nil {
		return err
	}
	type alias U2fSignRequest
	return json.Unmarshal(data, (*alias)(r))
}

// DataForClient returns the bundle as sent to the browser/JS client, with
// registeredKeys normalized through KeyData.
func (r U2fSignRequest) DataForClient() U2fSignRequest {
	keys := make([]RegisteredKey, len(r.RegisteredKeys))
	for i, k := range r.RegisteredKeys {
		keys[i] = k.KeyData()
	}
	return U2fSignRequest{
		AppId:          r.AppId,
		Challenge:      r.Challenge,
		RegisteredKeys: keys,
	}
}
