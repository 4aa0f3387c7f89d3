package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOptionsActivity(t *testing.T) {
	opts := runOptions{
		state:      "Editing",
		details:    "main.go",
		largeImage: "gopher",
		largeText:  "Go",
		buttons:    []string{"Repo=https://example.com/repo", "Docs = https://example.com/docs"},
	}

	a, err := opts.activity()
	require.NoError(t, err)
	assert.Equal(t, "Editing", a.State)
	assert.Equal(t, "main.go", a.Details)
	require.NotNil(t, a.Assets)
	assert.Equal(t, "gopher", a.Assets.LargeImage)
	assert.Len(t, a.Buttons, 2)
}

func TestRunOptionsRejectsBadInput(t *testing.T) {
	_, err := runOptions{state: "x", buttons: []string{"no-separator"}}.activity()
	assert.Error(t, err)

	_, err = runOptions{state: "x", buttons: []string{"=https://example.com"}}.activity()
	assert.Error(t, err)

	_, err = runOptions{}.activity()
	assert.Error(t, err)
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	ctx := newCommandContext()
	cmd := buildRootCommand(ctx)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--client-id", "99", "--log-level", "debug"}))

	cfg, err := ctx.ensureConfig(map[string]any{"show_time": false})
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cfg.ClientID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.False(t, cfg.ShowTime)
}

func TestMissingClientIDFails(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"ping"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}
