package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/jackroute"
	"github.com/opd-ai/jackroute/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSnapshot = `
client: pw-Rocksmith2014-3
normalized_lookup: true
ports:
  - name: system:capture_1
    flags: [output, physical, terminal]
  - name: system:capture_2
    flags: [output, physical, terminal]
  - name: system:playback_1
    flags: [input, physical, terminal]
  - name: system:playback_2
    flags: [input, physical, terminal]
  - name: pw-Rocksmith2014-3:in_1
    flags: [input]
  - name: pw-Rocksmith2014-3:in_2
    flags: [input]
  - name: pw-Rocksmith2014-3:out_1
    flags: [output]
  - name: pw-Rocksmith2014-3:out_2
    flags: [output]
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JACKROUTE_CONFIG", filepath.Join(t.TempDir(), "none.toml"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jackroute "+jackroute.Version+"\n", out)
}

func TestRouteCommandWithSnapshot(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "route.log")

	out, err := runCLI(t, "--snapshot", writeSnapshot(t), "--log-level", "error",
		"route", "--report", reportPath, "--max-wait", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Connected system:capture_1 -> Rocksmith2014:in_1")
	assert.Contains(t, out, "Connected Rocksmith2014:out_2 -> system:playback_2")
	assert.Contains(t, out, "4 of 4 connections made")
	assert.Contains(t, out, "Dry run against a simulated graph")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Running on PipeWire, searching for client Rocksmith2014")
}

func TestRouteCommandRequiresClient(t *testing.T) {
	_, err := runCLI(t, "--log-level", "error", "route")
	assert.ErrorIs(t, err, errMissingClient)
}

func TestPortsCommand(t *testing.T) {
	out, err := runCLI(t, "--snapshot", writeSnapshot(t), "--log-level", "error", "ports")
	require.NoError(t, err)

	assert.Contains(t, out, "Physical input ports (2):\n  system:capture_1\n  system:capture_2\n")
	assert.Contains(t, out, "Client input ports (2):")
	assert.Contains(t, out, "  Rocksmith2014:in_1\t(pw-Rocksmith2014-3:in_1)\n")
}

func TestSnapshotCommandRoundTrip(t *testing.T) {
	output := filepath.Join(t.TempDir(), "copy.yaml")

	_, err := runCLI(t, "--snapshot", writeSnapshot(t), "--log-level", "error", "snapshot", "-o", output)
	require.NoError(t, err)

	snap, err := simulation.LoadSnapshot(output)
	require.NoError(t, err)
	assert.Equal(t, "pw-Rocksmith2014-3", snap.Client)
	assert.True(t, snap.NormalizedLookup)
	assert.Len(t, snap.Ports, 8)
}
