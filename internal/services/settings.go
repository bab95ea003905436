package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/repository"
)

const settingBaseURL = "base_url"

// Settings is the set of values an admin may change at runtime.
type Settings struct {
	BaseURL string `json:"base_url"`
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log            logger.Logger
	repo           repository.SettingsRepository
	defaultBaseURL string
}

// NewSettingsService creates a new SettingsService. defaultBaseURL is used
// until an admin stores one.
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository, defaultBaseURL string) *SettingsService {
	return &SettingsService{log: log, repo: repo, defaultBaseURL: defaultBaseURL}
}

// GetBaseURL returns the public base URL used in QR codes and exports.
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil {
		return "", err
	}
	if value == "" {
		value = s.defaultBaseURL
	}
	return strings.TrimSuffix(value, "/"), nil
}

// SetBaseURL saves the public base URL.
func (s *SettingsService) SetBaseURL(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Validationf("invalid base URL %q", raw)
		}
	}
	return s.repo.SetSetting(ctx, settingBaseURL, raw)
}

// AllSettings returns the effective settings.
func (s *SettingsService) AllSettings(ctx context.Context) (*Settings, error) {
	base, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{BaseURL: base}, nil
}

// UpdateSettings applies every field of settings.
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if err := s.SetBaseURL(ctx, settings.BaseURL); err != nil {
		return err
	}
	s.log.Info("Settings updated", "base_url", settings.BaseURL)
	return nil
}
