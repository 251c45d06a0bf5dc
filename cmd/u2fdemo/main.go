// Command u2fdemo is a minimal HTTP harness for the u2f package: it plays
// the role of "the caller" the core engine assumes exists — owning
// challenge storage, device storage, and facet configuration — so the
// register/authenticate flows can be exercised from a browser.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/strandkey/u2f"
	"github.com/strandkey/u2f/attestation"
)

func main() {
	appID := flag.String("app-id", "http://localhost:3483", "the U2F AppId facets authenticate against")
	facetsFlag := flag.String("facets", "", "comma-separated trusted facets (defaults to -app-id alone)")
	addr := flag.String("addr", ":3483", "HTTP listen address")
	metadataDir := flag.String("metadata-dir", "", "optional directory of vendor metadata JSON files for attestation")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	facets := []string{*appID}
	if *facetsFlag != "" {
		facets = strings.Split(*facetsFlag, ",")
	}

	var provider *attestation.MetadataProvider
	if *metadataDir != "" {
		resolver := attestation.NewMetadataResolver()
		if err := attestation.LoadPath(resolver, *metadataDir); err != nil {
			log.Fatalw("failed to load attestation metadata", "dir", *metadataDir, "error", err)
		}
		provider = attestation.NewMetadataProvider(resolver)
		log.Infow("attestation metadata loaded", "dir", *metadataDir)
	}

	challenges, err := newChallengeStore()
	if err != nil {
		log.Fatalw("failed to create challenge store", "error", err)
	}
	devices := newDeviceStore(clockwork.NewRealClock())

	srv := &server{
		appID:      *appID,
		facets:     facets,
		challenges: challenges,
		devices:    devices,
		provider:   provider,
		log:        log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", indexHandler)
	mux.HandleFunc("/registerRequest", srv.registerRequest)
	mux.HandleFunc("/registerResponse", srv.registerResponse)
	mux.HandleFunc("/signRequest", srv.signRequest)
	mux.HandleFunc("/signResponse", srv.signResponse)

	log.Infow("starting u2fdemo", "addr", *addr, "appId", *appID)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

type server struct {
	appID      string
	facets     []string
	challenges *challengeStore
	devices    *deviceStore
	provider   *attestation.MetadataProvider
	log        *zap.SugaredLogger
}

// user identifies the demo "session" a request belongs to. The demo has no
// authentication of its own, so it trusts a query parameter; a real
// deployment would derive this from an authenticated session instead.
func user(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return "default"
}

func (s *server) registerRequest(w http.ResponseWriter, r *http.Request) {
	u := user(r)
	req, err := u2f.BeginRegistration(s.appID, s.devices.registeredKeys(u), nil)
	if err != nil {
		s.log.Errorw("BeginRegistration failed", "user", u, "error", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if err := s.challenges.putRegister(u, req); err != nil {
		s.log.Errorw("failed to store registration challenge", "user", u, "error", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	s.log.Infow("registerRequest issued", "user", u)
	json.NewEncoder(w).Encode(req.DataForClient())
}

func (s *server) registerResponse(w http.ResponseWriter, r *http.Request) {
	u := user(r)
	var resp u2f.RegisterResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		http.Error(w, "invalid response: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := s.challenges.getRegister(u)
	if err != nil {
		s.log.Warnw("registerResponse with no pending challenge", "user", u, "error", err)
		http.Error(w, "request not found", http.StatusBadRequest)
		return
	}

	dev, cert, err := u2f.CompleteRegistration(*req, resp, s.facets)
	if err != nil {
		kind, _ := u2f.KindOf(err)
		s.log.Warnw("CompleteRegistration failed", "user", u, "kind", kind, "error", err)
		http.Error(w, "error verifying response", http.StatusInternalServerError)
		return
	}
	s.devices.add(u, *dev)

	fields := []interface{}{"user", u, "keyHandlePrefix", keyHandlePrefix(dev.KeyHandle)}
	if s.provider != nil {
		att := s.provider.GetAttestation(cert)
		fields = append(fields, "trusted", att.Trusted)
	}
	s.log.Infow("registration succeeded", fields...)

	w.Write([]byte("success"))
}

func (s *server) signRequest(w http.ResponseWriter, r *http.Request) {
	u := user(r)
	keys := s.devices.registeredKeys(u)
	if len(keys) == 0 {
		http.Error(w, "no registered devices", http.StatusBadRequest)
		return
	}
	req, err := u2f.BeginAuthentication(s.appID, keys, nil)
	if err != nil {
		s.log.Errorw("BeginAuthentication failed", "user", u, "error", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if err := s.challenges.putSign(u, req); err != nil {
		s.log.Errorw("failed to store sign challenge", "user", u, "error", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	s.log.Infow("signRequest issued", "user", u)
	json.NewEncoder(w).Encode(req.DataForClient())
}

func (s *server) signResponse(w http.ResponseWriter, r *http.Request) {
	u := user(r)
	var resp u2f.SignResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		http.Error(w, "invalid response: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := s.challenges.getSign(u)
	if err != nil {
		s.log.Warnw("signResponse with no pending challenge", "user", u, "error", err)
		http.Error(w, "request not found", http.StatusBadRequest)
		return
	}

	counter, userPresence, err := u2f.CompleteAuthentication(*req, resp, s.devices.registrations(u), s.facets)
	if err != nil {
		kind, _ := u2f.KindOf(err)
		s.log.Warnw("CompleteAuthentication failed", "user", u, "kind", kind, "error", err)
		http.Error(w, "error verifying response", http.StatusInternalServerError)
		return
	}
	s.devices.touch(u, resp.KeyHandle)

	s.log.Infow("authentication succeeded",
		"user", u,
		"keyHandlePrefix", keyHandlePrefix(resp.KeyHandle),
		"counter", counter,
		"userPresence", userPresence,
	)
	w.Write([]byte("success"))
}

// keyHandlePrefix returns a short, log-safe fragment of a key handle —
// enough to correlate log lines without writing the full credential
// identifier to disk.
func keyHandlePrefix(keyHandle string) string {
	const n = 8
	if len(keyHandle) <= n {
		return keyHandle
	}
	return keyHandle[:n]
}

const indexHTML = `<!DOCTYPE html>
<html>
  <head>
    <script type="text/javascript" src="chrome-extension://pfboblefjcgdjicmnffhdgionmgcdmne/u2f-api.js"></script>
  </head>
  <body>
    <h1>U2F demo</h1>
    <ul>
      <li><a href="javascript:register();">Register token</a></li>
      <li><a href="javascript:sign();">Authenticate</a></li>
    </ul>
    <script src="//code.jquery.com/jquery-1.11.2.min.js"></script>
    <script>
      function registered(resp) {
        $.post('/registerResponse', JSON.stringify(resp)).done(function() { alert('Success'); });
      }
      function register() {
        $.getJSON('/registerRequest').done(function(req) {
          u2f.register([req], [], registered, 30);
        });
      }
      function signed(resp) {
        $.post('/signResponse', JSON.stringify(resp)).done(function() { alert('Success'); });
      }
      function sign() {
        $.getJSON('/signRequest').done(function(req) {
          u2f.sign([req], signed, 30);
        });
      }
    </script>
  </body>
</html>
`

func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(indexHTML))
}
