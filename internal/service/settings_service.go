package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

type SettingsService struct {
	settings *repository.SettingsRepository
	log      zerolog.Logger
}

func NewSettingsService(settings *repository.SettingsRepository, log zerolog.Logger) *SettingsService {
	return &SettingsService{settings: settings, log: log}
}

func (s *SettingsService) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: setting %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingsService) Put(ctx context.Context, key, value string) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	if key == model.SettingMachineryHourRate {
		if _, err := decimal.NewFromString(strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, key)
		}
	}
	setting := &model.Setting{Key: key, Value: strings.TrimSpace(value)}
	if err := s.settings.Put(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingsService) WithTx(tx *gorm.DB) HourRateSource {
	return &SettingsService{settings: s.settings.WithTx(tx), log: s.log}
}

// HourRate reads machinery_hour_rate. A missing or non-numeric value is 0;
// storage errors are returned.
func (s *SettingsService) HourRate(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.settings.Get(ctx, model.SettingMachineryHourRate)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read %s: %w", model.SettingMachineryHourRate, err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(setting.Value))
	if err != nil {
		s.log.Warn().Str("value", setting.Value).Msg("machinery_hour_rate is not a number, using 0")
		return decimal.Zero, nil
	}
	return rate, nil
}
