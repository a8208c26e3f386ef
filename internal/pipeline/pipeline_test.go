package pipeline

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fastauth/internal/guard"
	"fastauth/internal/host"
	"fastauth/internal/mpc"
	"fastauth/internal/router"
)

type singleGuardResolver struct {
	account string
	guard   guard.Guard
}

func (r singleGuardResolver) Resolve(account string) (guard.Guard, bool) {
	if account != r.account {
		return nil, false
	}
	return r.guard, true
}

func makeRSAFixture(t *testing.T) (*rsa.PrivateKey, guard.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	n := key.N.Bytes()
	if len(n) != 256 {
		padded := make([]byte, 256)
		copy(padded[256-len(n):], n)
		n = padded
	}
	e := make([]byte, 4)
	binary.BigEndian.PutUint32(e, uint32(key.E))
	for len(e) > 1 && e[0] == 0 {
		e = e[1:]
	}
	return key, guard.PublicKey{N: n, E: e}
}

func makeJWT(t *testing.T, key *rsa.PrivateKey, payload map[string]any) string {
	t.Helper()
	header := map[string]any{"alg": "RS256", "typ": "JWT"}
	headerBytes, _ := json.Marshal(header)
	payloadBytes, _ := json.Marshal(payload)
	headerB64 := base64.RawURLEncoding.EncodeToString(headerBytes)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadBytes)
	signingInput := headerB64 + "." + payloadB64

	h := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, h[:])
	if err != nil {
		t.Fatal(err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig)
}

// TestPipelineEndToEndSign exercises S6: a golden verify against a
// firebase-style guard followed by an ecdsa MPC request whose path is
// derived per the default GuardIDSubject scheme.
func TestPipelineEndToEndSign(t *testing.T) {
	key, pk := makeRSAFixture(t)

	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req mpc.V2Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Path != "firebase#sub-42#sub-42" {
			t.Fatalf("unexpected MPC path: %q", req.Path)
		}
		if req.PayloadV2.EcdsaHex == "" {
			t.Fatal("expected ecdsa_hex to be populated")
		}
		if req.DomainID != "domain-1" {
			t.Fatalf("unexpected domain id: %q", req.DomainID)
		}
		_ = json.NewEncoder(w).Encode(mpc.Signature{S: "deadbeef"})
	}))
	defer oracle.Close()

	g, err := guard.NewCustomGuard("https://firebase.example/", []guard.PublicKey{pk}, nil, func() int64 { return 1000 }, true)
	if err != nil {
		t.Fatal(err)
	}

	rt := router.New("owner-1", singleGuardResolver{account: "acct-firebase", guard: g})
	if err := rt.AddGuard("owner-1", "firebase", "acct-firebase"); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetMPCConfig("owner-1", router.MPCConfig{Address: oracle.URL, DomainID: "domain-1"}); err != nil {
		t.Fatal(err)
	}

	tracker := host.NewCallTracker()
	pipe := New(rt, mpc.NewClient(oracle.Client(), oracle.URL), GuardIDSubject, tracker)

	token := makeJWT(t, key, map[string]any{"sub": "sub-42", "iss": "https://firebase.example/", "exp": 2000})
	signPayload := []byte{0x01, 0x02, 0x03}

	sig, err := pipe.Sign(context.Background(), "firebase#sub-42", token, signPayload, "ecdsa", "caller-1")
	if err != nil {
		t.Fatalf("expected successful sign, got %v", err)
	}
	if sig.S != "deadbeef" {
		t.Fatalf("unexpected signature passthrough: %+v", sig)
	}
}

// TestPipelineTracksVerifyAndSignCalls covers the CallTracker bookkeeping
// around the pipeline's two suspension points (spec.md §9 "Coroutine/
// callback flow").
func TestPipelineTracksVerifyAndSignCalls(t *testing.T) {
	key, pk := makeRSAFixture(t)

	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(mpc.Signature{S: "deadbeef"})
	}))
	defer oracle.Close()

	g, err := guard.NewCustomGuard("https://firebase.example/", []guard.PublicKey{pk}, nil, func() int64 { return 1000 }, true)
	if err != nil {
		t.Fatal(err)
	}

	rt := router.New("owner-1", singleGuardResolver{account: "acct-firebase", guard: g})
	if err := rt.AddGuard("owner-1", "firebase", "acct-firebase"); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetMPCConfig("owner-1", router.MPCConfig{Address: oracle.URL}); err != nil {
		t.Fatal(err)
	}

	tracker := host.NewCallTracker()
	pipe := New(rt, mpc.NewClient(oracle.Client(), oracle.URL), GuardIDSubject, tracker)

	token := makeJWT(t, key, map[string]any{"sub": "sub-42", "iss": "https://firebase.example/", "exp": 2000})
	if _, err := pipe.Sign(context.Background(), "firebase#sub-42", token, []byte{1}, "ecdsa", "caller-1"); err != nil {
		t.Fatalf("expected successful sign, got %v", err)
	}

	var verifyCalls, signCalls, done int
	for id := range tracker.Snapshot() {
		state, ok := tracker.Lookup(id)
		if !ok {
			continue
		}
		if state.Done {
			done++
		}
		switch state.Kind {
		case "verify":
			verifyCalls++
		case "sign":
			signCalls++
		}
	}
	if verifyCalls != 1 || signCalls != 1 || done != 2 {
		t.Fatalf("expected one completed verify and one completed sign call, got verify=%d sign=%d done=%d", verifyCalls, signCalls, done)
	}
}

func TestPipelineFailedVerificationNeverReachesMPC(t *testing.T) {
	key, pk := makeRSAFixture(t)

	called := false
	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(mpc.Signature{S: "should-not-be-reached"})
	}))
	defer oracle.Close()

	g, err := guard.NewCustomGuard("https://firebase.example/", []guard.PublicKey{pk}, nil, func() int64 { return 5000 }, true)
	if err != nil {
		t.Fatal(err)
	}

	rt := router.New("owner-1", singleGuardResolver{account: "acct-firebase", guard: g})
	if err := rt.AddGuard("owner-1", "firebase", "acct-firebase"); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetMPCConfig("owner-1", router.MPCConfig{Address: oracle.URL}); err != nil {
		t.Fatal(err)
	}

	pipe := New(rt, mpc.NewClient(oracle.Client(), oracle.URL), GuardIDSubject, nil)

	// exp in the past -> expired, verification must fail
	token := makeJWT(t, key, map[string]any{"sub": "sub-42", "iss": "https://firebase.example/", "exp": 1000})

	_, err = pipe.Sign(context.Background(), "firebase#sub-42", token, []byte{1}, "ecdsa", "caller-1")
	if err != ErrVerificationFailed {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if called {
		t.Fatal("MPC oracle must never be called after a failed verification")
	}
}

func TestPipelinePausedRouterRejectsSign(t *testing.T) {
	rt := router.New("owner-1", singleGuardResolver{})
	if err := rt.Pause("owner-1"); err != nil {
		t.Fatal(err)
	}
	pipe := New(rt, mpc.NewClient(nil, "http://unused"), GuardIDSubject, nil)

	_, err := pipe.Sign(context.Background(), "firebase#sub-42", "token", []byte{1}, "ecdsa", "caller-1")
	if err != router.ErrPaused {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
}
