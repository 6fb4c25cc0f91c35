package driving

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// SetServerURL updates the remote service base URL.
	SetServerURL(baseURL string) error

	// SetMaxUploadMB updates the local upload size limit.
	SetMaxUploadMB(mb int) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
