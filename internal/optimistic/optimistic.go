// Package optimistic applies a local change ahead of a remote call and undoes
// it when the call fails.
package optimistic

import "context"

// Mutate runs apply, then remote. If remote fails, revert runs and the remote
// error is returned unchanged. apply and revert must not fail.
func Mutate(ctx context.Context, apply, revert func(), remote func(context.Context) error) error {
	apply()
	if err := remote(ctx); err != nil {
		revert()
		return err
	}
	return nil
}
