package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/99designs/keyring"

	"github.com/netcanis/feat-network/internal/config"
	"github.com/netcanis/feat-network/internal/iocontext"
	"github.com/netcanis/feat-network/internal/validation"
)

// runCommand executes the CLI with captured output streams.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	ctx := iocontext.WithIO(context.Background(), &iocontext.IO{
		Out:    &out,
		ErrOut: &errOut,
		In:     strings.NewReader(""),
	})
	err = Execute(ctx, args)
	return out.String(), errOut.String(), err
}

// useMemoryKeyring swaps the credential store for an in-memory keyring.
func useMemoryKeyring(t *testing.T) {
	t.Helper()
	t.Setenv("FEATNET_BASE_URL", "")
	t.Setenv("FEATNET_TOKEN", "")
	ring := keyring.NewArrayKeyring(nil)
	restore := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
}

// resetAllowPrivate restores the package-global validation toggle after a
// test that runs commands with --allow-private.
func resetAllowPrivate(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { validation.SetAllowPrivate(false) })
}
