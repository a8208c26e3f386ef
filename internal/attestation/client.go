// Package attestation talks to the external collaborator that publishes
// and rotates a guard's RSA public keys. It implements the admin-path
// "asynchronous fetch, validate, then replace" half of spec.md §4.5's key
// rotation note, grounded in _examples/original_source/contracts/attestation
// (a quorum-of-attesters contract gating when public_keys changes).
package attestation

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"fastauth/internal/guard"
)

var (
	// ErrNoKeys is returned when the attestation endpoint's key set is
	// empty — a malformed callback must never wipe out a guard's keys.
	ErrNoKeys = errors.New("attestation: published key set is empty")

	// ErrUnsupportedKeyType rejects any published key that isn't RSA,
	// since this guard only ever verifies RS256.
	ErrUnsupportedKeyType = errors.New("attestation: published key is not RSA")
)

// Client fetches the currently-attested public key set for a guard from
// the attestation service's HTTP JWKS endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient constructs an attestation client against baseURL (the
// attestation contract's HTTP-facing endpoint in this re-architecture).
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// FetchPublicKeys retrieves the quorum-attested key set for guardName and
// converts each JWK entry to the fixed-shape guard.PublicKey this service
// verifies against. A malformed or empty response is an error, never a
// partial or zeroed key set — the caller (guard.SetPublicKeys) is
// responsible for leaving the guard's current keys untouched on error,
// matching spec.md §4.5's "rollback on partial failure" requirement.
func (c *Client) FetchPublicKeys(ctx context.Context, guardName string) ([]guard.PublicKey, error) {
	url := fmt.Sprintf("%s/attestation/%s/jwks.json", c.baseURL, guardName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("attestation: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attestation: fetching key set: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attestation: endpoint returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("attestation: decoding response: %w", err)
	}

	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("attestation: parsing JWK set: %w", err)
	}
	if set.Len() == 0 {
		return nil, ErrNoKeys
	}

	keys := make([]guard.PublicKey, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		jwkKey, ok := set.Key(i)
		if !ok {
			continue
		}
		pk, err := toPublicKey(jwkKey)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}

	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	return keys, nil
}

func toPublicKey(jwkKey jwk.Key) (guard.PublicKey, error) {
	var rawKey any
	if err := jwkKey.Raw(&rawKey); err != nil {
		return guard.PublicKey{}, fmt.Errorf("attestation: extracting raw key: %w", err)
	}

	rsaKey, ok := rawKey.(*rsa.PublicKey)
	if !ok {
		return guard.PublicKey{}, ErrUnsupportedKeyType
	}

	n := rsaKey.N.Bytes()
	if len(n) != 256 {
		padded := make([]byte, 256)
		copy(padded[256-len(n):], n)
		n = padded
	}

	e := big32(rsaKey.E)
	return guard.PublicKey{N: n, E: e}, nil
}

// big32 encodes a small positive int as minimal big-endian bytes, which
// is all an RSA public exponent (65537 in practice) ever needs.
func big32(e int) []byte {
	if e == 0 {
		return []byte{0}
	}
	var out []byte
	for e > 0 {
		out = append([]byte{byte(e & 0xff)}, out...)
		e >>= 8
	}
	return out
}
