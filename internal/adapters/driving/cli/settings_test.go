package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func TestSettingsShow_Defaults(t *testing.T) {
	setupTestServices(t, &mockClient{})

	out, _, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Base URL: "+domain.DefaultServerURL)
	assert.Contains(t, out, "Max size: 100 MB")
	assert.Contains(t, out, "Verbose: false")
	assert.Contains(t, out, "File: (none)")
	assert.NotContains(t, out, "Warning:")
}

func TestSettings_DefaultsToShow(t *testing.T) {
	setupTestServices(t, &mockClient{})

	out, _, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestSettingsShow_WarnsOnInvalidStoredURL(t *testing.T) {
	stack := setupTestServices(t, &mockClient{})
	require.NoError(t, stack.config.Set("server.base_url", "not a url"))

	out, _, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
}

func TestSettingsServer(t *testing.T) {
	stack := setupTestServices(t, &mockClient{})

	out, _, err := execute(t, "", "settings", "set-server", "http://qa.internal:9000/")

	require.NoError(t, err)
	assert.Equal(t, "Server set to http://qa.internal:9000/\n", out)
	settings, err := stack.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://qa.internal:9000", settings.Server.BaseURL)
}

func TestSettingsServer_Invalid(t *testing.T) {
	stack := setupTestServices(t, &mockClient{})

	_, _, err := execute(t, "", "settings", "set-server", "not a url")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	settings, getErr := stack.settings.Get()
	require.NoError(t, getErr)
	assert.Equal(t, domain.DefaultServerURL, settings.Server.BaseURL)
}

func TestSettingsMaxUpload(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    string
		wantMB  int
		wantErr bool
	}{
		{name: "limit", arg: "25", want: "Upload limit set to 25 MB\n", wantMB: 25},
		{name: "disabled", arg: "0", want: "Upload limit disabled\n", wantMB: 0},
		{name: "not a number", arg: "abc", wantErr: true, wantMB: domain.DefaultMaxUploadMB},
		{name: "negative", arg: "-1", wantErr: true, wantMB: domain.DefaultMaxUploadMB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := setupTestServices(t, &mockClient{})

			out, _, err := execute(t, "", "settings", "set-max-upload", "--", tt.arg)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
			}
			settings, getErr := stack.settings.Get()
			require.NoError(t, getErr)
			assert.Equal(t, tt.wantMB, settings.Upload.MaxSizeMB)
		})
	}
}

func TestSettings_NoService(t *testing.T) {
	t.Cleanup(resetCommandState)
	SetServices(&Services{})

	_, _, err := execute(t, "", "settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
