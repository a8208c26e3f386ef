package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"fastauth/internal/host"
	"fastauth/internal/jwtcore"
	"fastauth/internal/mpc"
	"fastauth/internal/router"
)

// ErrVerificationFailed is returned when the router's verify call returns
// (false, _) or the guard's verification fails outright; signing must
// never be attempted in this case (spec.md §4.8 stage 3).
var ErrVerificationFailed = errors.New("pipeline: verification failed, signing skipped")

// Pipeline wires a Router to an MPC client, implementing the sign
// operation's 5 stages.
type Pipeline struct {
	router  *router.Router
	mpc     *mpc.Client
	scheme  PathScheme
	tracker *host.CallTracker
}

// New constructs a pipeline over an already-configured router and MPC
// client, using scheme to derive MPC signing paths. tracker records the
// verify and sign suspension points spec.md §9 names so a stuck sign call
// can be told apart from one that never started; a nil tracker disables
// this bookkeeping.
func New(rt *router.Router, mpcClient *mpc.Client, scheme PathScheme, tracker *host.CallTracker) *Pipeline {
	return &Pipeline{router: rt, mpc: mpcClient, scheme: scheme, tracker: tracker}
}

// Sign implements spec.md §4.8's sign operation. token is the JWT the
// guard verifies; signPayload is the application data whose hash gets
// signed; algorithm selects the MPC request shape; caller is the
// authenticated account invoking sign, threaded through to the guard's
// custom-claims hook exactly as a direct verify call would.
func (p *Pipeline) Sign(ctx context.Context, guardID string, token string, signPayload []byte, algorithm string, caller string) (*mpc.Signature, error) {
	// Stage 1: gate
	if p.router.Paused() {
		return nil, router.ErrPaused
	}

	// Stage 2: route + verify
	compound, err := router.ParseCompoundID(guardID)
	if err != nil {
		return nil, err
	}
	var verifyCall host.CallID
	if p.tracker != nil {
		verifyCall = p.tracker.Begin("verify", caller)
	}
	ok, subject, err := p.router.Verify(ctx, guardID, signPayload, token, caller)
	if err != nil {
		if p.tracker != nil {
			p.tracker.Finish(verifyCall, true)
		}
		return nil, fmt.Errorf("pipeline: verify: %w", err)
	}

	// Stage 3: verify-callback
	if !ok {
		if p.tracker != nil {
			p.tracker.Finish(verifyCall, true)
		}
		return nil, ErrVerificationFailed
	}
	if err := jwtcore.ValidateSubject(subject); err != nil {
		if p.tracker != nil {
			p.tracker.Finish(verifyCall, true)
		}
		return nil, fmt.Errorf("pipeline: verified subject rejected: %w", err)
	}
	if p.tracker != nil {
		p.tracker.Finish(verifyCall, false)
	}

	// Stage 4: derive + dispatch
	hash := sha256.Sum256(signPayload)
	path := DerivePath(p.scheme, guardID, compound.Prefix, subject)
	cfg := p.router.MPC()

	request, err := mpc.BuildRequest(algorithm, path, hash[:], cfg.KeyVersion, cfg.DomainID)
	if err != nil {
		return nil, err
	}

	// Stage 5: sign-callback
	var signCall host.CallID
	if p.tracker != nil {
		signCall = p.tracker.Begin("sign", caller)
	}
	sig, err := p.mpc.Sign(ctx, algorithm, request)
	if p.tracker != nil {
		p.tracker.Finish(signCall, err != nil)
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: mpc sign failed, no router state changed: %w", err)
	}
	return sig, nil
}
