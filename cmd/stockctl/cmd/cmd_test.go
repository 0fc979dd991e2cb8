package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := TypesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[0], "TYPE")
	assert.Regexp(t, `^metric\s+unit\s+ton,kilogram,`, lines[3])
	assert.Regexp(t, `^selection\s+options\s+-$`, lines[6])
}

func TestMigrateUpAndDown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "stock.db")

	for _, step := range []string{"up", "status", "down"} {
		var out bytes.Buffer
		cmd := MigrateCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{step, "--driver", "sqlite", "--dsn", dsn})
		require.NoError(t, cmd.Execute(), step)
		assert.Contains(t, out.String(), "migrate "+step+" done")
	}
}
