package simulation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/jackroute/interfaces"
	"github.com/opd-ai/jackroute/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `
client: pw-Rocksmith2014-3
normalized_lookup: true
ports:
  - name: system:capture_1
    flags: [output, physical, terminal]
  - name: system:playback_1
    flags: [input, physical, terminal]
    aliases: ["alsa:playback_FL"]
  - name: pw-Rocksmith2014-3:in_1
    flags: [input]
`

func TestParseSnapshot(t *testing.T) {
	snap, err := ParseSnapshot([]byte(sampleSnapshot))
	require.NoError(t, err)

	assert.Equal(t, "pw-Rocksmith2014-3", snap.Client)
	assert.True(t, snap.NormalizedLookup)
	require.Len(t, snap.Ports, 3)
	assert.Equal(t, []string{"alsa:playback_FL"}, snap.Ports[1].Aliases)
}

func TestParseSnapshotErrors(t *testing.T) {
	_, err := ParseSnapshot([]byte("ports:\n  - name: a:b\n    flags: [sideways]\n"))
	assert.ErrorIs(t, err, ErrUnknownFlag)

	_, err = ParseSnapshot([]byte("ports:\n  - flags: [input]\n"))
	assert.ErrorIs(t, err, ErrEmptyPortName)

	_, err = ParseSnapshot([]byte("ports:\n  - name: \":in_1\"\n    flags: [input]\n"))
	assert.ErrorIs(t, err, limits.ErrNameEmpty)

	_, err = ParseSnapshot([]byte("ports: ["))
	assert.Error(t, err)
}

func TestSnapshotGraph(t *testing.T) {
	snap, err := ParseSnapshot([]byte(sampleSnapshot))
	require.NoError(t, err)

	g := snap.Graph("")
	assert.Equal(t, "pw-Rocksmith2014-3", g.ClientName())

	port, err := g.LookupPort(context.Background(), "Rocksmith2014:in_1")
	require.NoError(t, err)
	assert.Equal(t, interfaces.PortIsInput, port.Flags)

	assert.Equal(t, "other", snap.Graph("other").ClientName())
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o600))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, snap.Ports, 3)

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCaptureRoundTrip(t *testing.T) {
	ports := []interfaces.RawPort{
		{Name: "system:capture_1", Flags: interfaces.PortIsOutput | interfaces.PortIsPhysical},
		{Name: "game:in_1", Flags: interfaces.PortIsInput, Aliases: []string{"g:1"}},
	}

	data, err := Capture("game", ports).Marshal()
	require.NoError(t, err)

	snap, err := ParseSnapshot(data)
	require.NoError(t, err)
	got, err := snap.Graph("").Ports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports, got)
}

func TestParseFlags(t *testing.T) {
	flags, err := ParseFlags([]string{"Output", " physical "})
	require.NoError(t, err)
	assert.Equal(t, interfaces.PortIsOutput|interfaces.PortIsPhysical, flags)

	flags, err = ParseFlags(nil)
	require.NoError(t, err)
	assert.Zero(t, flags)
}
