package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelfUpdateCmd(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", selfUpdateCmd.Use)
	assert.NotEmpty(t, selfUpdateCmd.Short)
	assert.NotEmpty(t, selfUpdateCmd.Long)
	assert.NotNil(t, selfUpdateCmd.RunE)
}

func TestRunSelfUpdateWithDevVersion(t *testing.T) {
	for _, version := range []string{"dev", ""} {
		err := runSelfUpdate(context.Background(), version, "owner/systest", newSelfUpdateCmd())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot self-update a development version")
	}
}

func TestSelfUpdateCommandHelp(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()
	var buf bytes.Buffer
	selfUpdateCmd.SetOut(&buf)
	selfUpdateCmd.SetErr(&buf)
	selfUpdateCmd.SetArgs([]string{"--help"})

	require.NoError(t, selfUpdateCmd.Execute())
	assert.Contains(t, buf.String(), "Checks for the latest release")
	assert.Contains(t, buf.String(), "self-update")
}

func TestRunSelfUpdateRequiresRepository(t *testing.T) {
	tests := []struct {
		name       string
		repository string
		wantErr    string
	}{
		{name: "unset", repository: "", wantErr: "no release repository configured"},
		{name: "no owner", repository: "systest", wantErr: "expected owner/name"},
		{name: "empty name", repository: "owner/", wantErr: "expected owner/name"},
		{name: "too deep", repository: "owner/name/extra", wantErr: "expected owner/name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runSelfUpdate(context.Background(), "1.0.0", tt.repository, newSelfUpdateCmd())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelfUpdateRepositoryFlag(t *testing.T) {
	flag := newSelfUpdateCmd().Flags().Lookup("repository")
	require.NotNil(t, flag)
	assert.Equal(t, releaseRepository, flag.DefValue)
	assert.NoError(t, validateRepository("creek-service/systest"))
}
