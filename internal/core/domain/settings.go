package domain

// Default settings values.
const (
	DefaultServerURL   = "http://localhost:8000"
	DefaultMaxUploadMB = 100
)

// ServerSettings configures the remote question-answering service.
type ServerSettings struct {
	// BaseURL is the scheme and host the API paths are appended to.
	BaseURL string `validate:"required,url"`
}

// UploadSettings configures local upload checks.
type UploadSettings struct {
	// MaxSizeMB rejects larger files before sending them. 0 disables the check.
	MaxSizeMB int `validate:"gte=0"`
}

// MaxBytes returns the size limit in bytes, or 0 when unlimited.
func (u UploadSettings) MaxBytes() int64 {
	if u.MaxSizeMB <= 0 {
		return 0
	}
	return int64(u.MaxSizeMB) * 1024 * 1024
}

// LogSettings configures verbose logging.
type LogSettings struct {
	// Verbose enables debug output.
	Verbose bool

	// File, when set, receives a rotated copy of the log.
	File string
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Server ServerSettings `validate:"required"`
	Upload UploadSettings
	Log    LogSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{BaseURL: DefaultServerURL},
		Upload: UploadSettings{MaxSizeMB: DefaultMaxUploadMB},
	}
}
