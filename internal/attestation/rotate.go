package attestation

import (
	"context"
	"fmt"

	"fastauth/internal/guard"
)

// RotateGuardKeys fetches the currently-attested key set for guardName and
// installs it on g. guard.Base.SetPublicKeys validates the entire batch
// before replacing anything, so a malformed attestation response leaves
// the guard's existing keys in place — the callback-rollback behavior
// spec.md §4.5 requires.
func RotateGuardKeys(ctx context.Context, client *Client, guardName string, g guard.Guard) error {
	keys, err := client.FetchPublicKeys(ctx, guardName)
	if err != nil {
		return fmt.Errorf("attestation: rotation fetch failed, keys unchanged: %w", err)
	}
	if err := g.SetPublicKeys(keys); err != nil {
		return fmt.Errorf("attestation: rotation rejected, keys unchanged: %w", err)
	}
	return nil
}
