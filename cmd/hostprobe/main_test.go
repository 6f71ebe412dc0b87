package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUnknownFeature(t *testing.T) {
	_, err := execute(t, "feature", "sandbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hyperv, wsl")
}

func TestFeatureRejectsBadOrder(t *testing.T) {
	_, err := execute(t, "feature", "wsl", "--order", "service,smbios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smbios")
}

func TestFingerprintRejectsUnknownCategory(t *testing.T) {
	_, err := execute(t, "fingerprint", "--categories", "board,bios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bios")
}

func TestCategoriesFromEnvironment(t *testing.T) {
	t.Setenv("HOSTPROBE_CATEGORIES", "network")
	_, err := execute(t, "fingerprint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network")
}

func TestProtectRequiresApp(t *testing.T) {
	_, err := execute(t, "protect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--app")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "virt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, map[string]bool{"enabled": true}))
	assert.Equal(t, "{\n  \"enabled\": true\n}\n", out.String())
}
