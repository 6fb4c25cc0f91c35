package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServerURL   = "server.base_url"
	keyMaxUploadMB = "upload.max_size_mb"
	keyLogVerbose  = "log.verbose"
	keyLogFile     = "log.file"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			BaseURL: strings.TrimRight(s.getString(keyServerURL, defaults.Server.BaseURL), "/"),
		},
		Upload: domain.UploadSettings{
			MaxSizeMB: s.getInt(keyMaxUploadMB, defaults.Upload.MaxSizeMB),
		},
		Log: domain.LogSettings{
			Verbose: s.getBool(keyLogVerbose, defaults.Log.Verbose),
			File:    s.configStore.GetString(keyLogFile),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(keyServerURL, strings.TrimRight(settings.Server.BaseURL, "/")); err != nil {
		return fmt.Errorf("save server base_url: %w", err)
	}
	if err := s.configStore.Set(keyMaxUploadMB, settings.Upload.MaxSizeMB); err != nil {
		return fmt.Errorf("save upload max_size_mb: %w", err)
	}
	if err := s.configStore.Set(keyLogVerbose, settings.Log.Verbose); err != nil {
		return fmt.Errorf("save log verbose: %w", err)
	}
	if settings.Log.File != "" {
		if err := s.configStore.Set(keyLogFile, settings.Log.File); err != nil {
			return fmt.Errorf("save log file: %w", err)
		}
	}

	return nil
}

// SetServerURL updates the remote service base URL.
func (s *SettingsService) SetServerURL(baseURL string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Server.BaseURL = strings.TrimSpace(baseURL)
	return s.Save(settings)
}

// SetMaxUploadMB updates the local upload size limit.
func (s *SettingsService) SetMaxUploadMB(mb int) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Upload.MaxSizeMB = mb
	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// check runs struct validation and reports the first failing field.
func (s *SettingsService) check(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %q check", domain.ErrInvalidInput, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
