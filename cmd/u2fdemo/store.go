package main

import (
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/mailgun/ttlmap"

	"github.com/strandkey/u2f"
)

// challengeTTL bounds how long a registerRequest/signRequest stays valid
// before the client must ask for a fresh one.
const challengeTTL = 5 * time.Minute

// challengeCapacity caps the in-memory challenge map, matching the
// Teleport U2F wrapper's sizing rationale: bound memory under load rather
// than let an unbounded number of abandoned challenges accumulate.
const challengeCapacity = 6000

// challengeStore holds the in-flight U2fRegisterRequest/U2fSignRequest a
// registerResponse/signResponse must be checked against, evicting entries
// after challengeTTL.
type challengeStore struct {
	m *ttlmap.TtlMap
}

func newChallengeStore() (*challengeStore, error) {
	m, err := ttlmap.NewMap(challengeCapacity)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &challengeStore{m: m}, nil
}

func (s *challengeStore) putRegister(key string, req *u2f.U2fRegisterRequest) error {
	return trace.Wrap(s.m.Set(key, req, int(challengeTTL.Seconds())))
}

func (s *challengeStore) getRegister(key string) (*u2f.U2fRegisterRequest, error) {
	v, ok := s.m.Get(key)
	if !ok {
		return nil, trace.NotFound("no pending registration challenge for %q", key)
	}
	req, ok := v.(*u2f.U2fRegisterRequest)
	if !ok {
		return nil, trace.BadParameter("bug: challenge store returned %T instead of *u2f.U2fRegisterRequest", v)
	}
	return req, nil
}

func (s *challengeStore) putSign(key string, req *u2f.U2fSignRequest) error {
	return trace.Wrap(s.m.Set(key, req, int(challengeTTL.Seconds())))
}

func (s *challengeStore) getSign(key string) (*u2f.U2fSignRequest, error) {
	v, ok := s.m.Get(key)
	if !ok {
		return nil, trace.NotFound("no pending sign challenge for %q", key)
	}
	req, ok := v.(*u2f.U2fSignRequest)
	if !ok {
		return nil, trace.BadParameter("bug: challenge store returned %T instead of *u2f.U2fSignRequest", v)
	}
	return req, nil
}

// storedDevice is a DeviceRegistration plus the demo-local bookkeeping the
// core package deliberately has no opinion about.
type storedDevice struct {
	Reg      u2f.DeviceRegistration
	LastUsed time.Time
}

// deviceStore is a process-memory stand-in for the durable per-user device
// table a real deployment would keep in a database; illustrative only, per
// the Non-goals around persistence.
type deviceStore struct {
	mu    sync.Mutex
	byKey map[string][]*storedDevice
	clock clockwork.Clock
}

func newDeviceStore(clock clockwork.Clock) *deviceStore {
	return &deviceStore{byKey: make(map[string][]*storedDevice), clock: clock}
}

func (s *deviceStore) registeredKeys(user string) []u2f.RegisteredKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	devices := s.byKey[user]
	keys := make([]u2f.RegisteredKey, len(devices))
	for i, d := range devices {
		keys[i] = d.Reg.RegisteredKey()
	}
	return keys
}

func (s *deviceStore) registrations(user string) []u2f.DeviceRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	devices := s.byKey[user]
	out := make([]u2f.DeviceRegistration, len(devices))
	for i, d := range devices {
		out[i] = d.Reg
	}
	return out
}

func (s *deviceStore) add(user string, reg u2f.DeviceRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[user] = append(s.byKey[user], &storedDevice{Reg: reg, LastUsed: s.clock.Now()})
}

// touch stamps the LastUsed time on the device matching keyHandle, for
// audit logging; it does not enforce counter monotonicity (see
// u2f.CompleteAuthentication's doc comment for why that's a policy choice
// left to the caller, not a core invariant).
func (s *deviceStore) touch(user, keyHandle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.byKey[user] {
		if d.Reg.KeyHandle == keyHandle {
			d.LastUsed = s.clock.Now()
			return
		}
	}
}
