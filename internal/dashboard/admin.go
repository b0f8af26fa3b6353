package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ShutdownRequester is satisfied by the orchestrator session: calling it
// is the same as feeding it a model.Inbound{Kind: model.InboundShutdown}.
type ShutdownRequester interface {
	RequestShutdown()
}

// AdminControl exposes a single HTTP endpoint that triggers a session
// shutdown, gated behind a TOTP code so an operator with the shared secret
// (and only that operator) can halt trading remotely.
type AdminControl struct {
	secret  string
	session ShutdownRequester
}

// NewAdminControl creates an AdminControl. secret is the base32 TOTP seed
// provisioned out of band (e.g. scanned once into an authenticator app).
func NewAdminControl(secret string, session ShutdownRequester) *AdminControl {
	return &AdminControl{secret: secret, session: session}
}

// ServeHTTP handles POST /admin/shutdown {"code":"123456"}.
func (a *AdminControl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	valid, err := totp.ValidateCustom(body.Code, a.secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    6,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		http.Error(w, "invalid or expired code", http.StatusUnauthorized)
		return
	}

	a.session.RequestShutdown()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "shutdown requested"})
}
