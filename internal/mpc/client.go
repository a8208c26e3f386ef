package mpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"fastauth/internal/metrics"
)

var (
	ErrOracleUnavailable  = errors.New("mpc: oracle request failed")
	ErrMalformedSignature = errors.New("mpc: oracle returned a malformed signature")
	ErrInvalidCurvePoint  = errors.New("mpc: oracle's response point is not on secp256k1")
)

// Signature is the result the pipeline forwards back to the caller
// unchanged on success (spec.md §4.8 stage 5).
type Signature struct {
	BigR struct {
		AffinePointX string `json:"affine_point_x"`
		AffinePointY string `json:"affine_point_y"`
	} `json:"big_r"`
	S          string `json:"s"`
	RecoveryID byte   `json:"recovery_id"`
}

// Client is a typed HTTP client for the external threshold-signing oracle.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient constructs an MPC client pointed at the oracle's base URL
// (router's configured mpc_address).
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Sign posts a request built by BuildRequest and decodes the oracle's
// signature response. For "secp256k1" and "ecdsa" requests, the returned big_r point
// is validated against the curve before being handed back, since a
// malformed or off-curve point would otherwise propagate silently into
// whatever consumes the signature.
func (c *Client) Sign(ctx context.Context, algorithm string, request any) (*Signature, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.MPCCallDuration.WithLabelValues(algorithm, outcome).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("mpc: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sign", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mpc: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var sig Signature
	if err := json.NewDecoder(resp.Body).Decode(&sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	if algorithm == "secp256k1" || algorithm == "ecdsa" {
		if err := validateCurvePoint(sig.BigR.AffinePointX, sig.BigR.AffinePointY); err != nil {
			return nil, err
		}
	}

	outcome = "ok"
	return &sig, nil
}

// validateCurvePoint rejects an oracle response whose big_r point does not
// decode to a valid point on secp256k1. It builds the uncompressed SEC1
// encoding (0x04 || X || Y) and leans on ParsePubKey's own curve-membership
// check rather than reimplementing the curve equation.
func validateCurvePoint(xHex, yHex string) error {
	x, err := hex.DecodeString(xHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	y, err := hex.DecodeString(yHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(x) != 32 || len(y) != 32 {
		return fmt.Errorf("%w: field elements must be 32 bytes", ErrMalformedSignature)
	}

	uncompressed := make([]byte, 0, 65)
	uncompressed = append(uncompressed, 0x04)
	uncompressed = append(uncompressed, x...)
	uncompressed = append(uncompressed, y...)

	if _, err := secp256k1.ParsePubKey(uncompressed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCurvePoint, err)
	}
	return nil
}
