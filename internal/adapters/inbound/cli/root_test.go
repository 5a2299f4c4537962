package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackaudit/stackaudit/internal/adapters/inbound/cli"
)

func TestRootCmd_RegistersAllCommands(t *testing.T) {
	root := cli.NewRootCmdForTest()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{
		"version", "audit", "security", "caps", "multistage",
		"environment", "orchestration", "api", "scan", "mcp",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_Help(t *testing.T) {
	root := cli.NewRootCmdForTest()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	err := root.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "stackaudit")
	assert.Contains(t, out.String(), "audit")
}

func TestVersionCmd(t *testing.T) {
	root := cli.NewRootCmdForTest()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	err := root.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "stackaudit")
}

func TestCategoryCmd_Flags(t *testing.T) {
	root := cli.NewRootCmdForTest()

	security, _, err := root.Find([]string{"security"})
	require.NoError(t, err)
	assert.NotNil(t, security.Flags().Lookup("json"))
	assert.NotNil(t, security.Flags().Lookup("path"))
	assert.Nil(t, security.Flags().Lookup("base-url"))

	api, _, err := root.Find([]string{"api"})
	require.NoError(t, err)
	assert.NotNil(t, api.Flags().Lookup("base-url"))

	audit, _, err := root.Find([]string{"audit"})
	require.NoError(t, err)
	assert.NotNil(t, audit.Flags().Lookup("stop-on-failure"))

	scan, _, err := root.Find([]string{"scan"})
	require.NoError(t, err)
	assert.NotNil(t, scan.Flags().Lookup("allow-missing"))
	assert.NotNil(t, scan.Flags().Lookup("severity"))
}
