package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pactlFixture = `Sink Input #42
	Driver: protocol-native.c
	Volume: front-left: 52428 /  80% / -5.81 dB,   front-right: 52428 /  80% / -5.81 dB
	Properties:
		application.name = "Firefox"
		application.process.binary = "firefox"

Sink Input #57
	Driver: protocol-native.c
	Volume: front-left: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "espeak-ng"
`

func TestListSinkInputsParsesPactl(t *testing.T) {
	run := &fakeRunner{runFn: func(name string, args []string) (string, error) {
		return pactlFixture, nil
	}}
	c := newTestController(t, run)

	streams, err := c.listSinkInputs(context.Background())

	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, sinkInput{ID: 42, Volume: 80, App: "Firefox"}, streams[0])
	assert.Equal(t, sinkInput{ID: 57, Volume: 100, App: "espeak-ng"}, streams[1])
}

func TestDuckSkipsOwnStreams(t *testing.T) {
	run := &fakeRunner{runFn: func(name string, args []string) (string, error) {
		if len(args) > 0 && args[0] == "list" {
			return pactlFixture, nil
		}
		return "", nil
	}}
	c := newTestController(t, run)

	require.NoError(t, c.Duck(context.Background(), 0.3))

	// One list call plus exactly one set call, for Firefox only.
	var sets [][]string
	for _, call := range run.runCalls {
		if call[1] == "set-sink-input-volume" {
			sets = append(sets, call)
		}
	}
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"pactl", "set-sink-input-volume", "42", "24%"}, sets[0])
}

func TestRestorePutsVolumesBack(t *testing.T) {
	run := &fakeRunner{runFn: func(name string, args []string) (string, error) {
		if len(args) > 0 && args[0] == "list" {
			return pactlFixture, nil
		}
		return "", nil
	}}
	c := newTestController(t, run)

	require.NoError(t, c.Duck(context.Background(), 0.3))
	run.runCalls = nil
	require.NoError(t, c.Restore(context.Background()))

	var sets [][]string
	for _, call := range run.runCalls {
		if call[1] == "set-sink-input-volume" {
			sets = append(sets, call)
		}
	}
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"pactl", "set-sink-input-volume", "42", "80%"}, sets[0])

	// Second restore is a no-op.
	run.runCalls = nil
	require.NoError(t, c.Restore(context.Background()))
	assert.Empty(t, run.runCalls)
}
