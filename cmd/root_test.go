// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"execute", "batch", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestOverrideBindingsHaveFlags(t *testing.T) {
	for key, name := range overrideBindings {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "viper key %q bound to missing flag %q", key, name)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, Version, strings.TrimSpace(out.String()))
}
