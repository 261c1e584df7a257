package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

func (h *harness) hourRate(t *testing.T) decimal.Decimal {
	t.Helper()
	rate, err := h.settings.HourRate(h.ctx)
	require.NoError(t, err)
	return rate
}

func TestSettingsHourRate(t *testing.T) {
	h := newHarness(t)
	assertDecimal(t, "0", h.hourRate(t))

	_, err := h.settings.Get(h.ctx, model.SettingMachineryHourRate)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.settings.Put(h.ctx, model.SettingMachineryHourRate, "five thousand")
	assert.ErrorIs(t, err, ErrInvalidInput)

	setting, err := h.settings.Put(h.ctx, model.SettingMachineryHourRate, " 5000 ")
	require.NoError(t, err)
	assert.Equal(t, "5000", setting.Value)
	assertDecimal(t, "5000", h.hourRate(t))

	_, err = h.settings.Put(h.ctx, model.SettingMachineryHourRate, "5500.50")
	require.NoError(t, err)
	stored, err := h.settings.Get(h.ctx, model.SettingMachineryHourRate)
	require.NoError(t, err)
	assert.Equal(t, "5500.50", stored.Value)
	assert.True(t, decimal.RequireFromString("5500.5").Equal(h.hourRate(t)))

	_, err = h.settings.Put(h.ctx, "  ", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSettingsHourRateIgnoresGarbage(t *testing.T) {
	h := newHarness(t)
	h.fx.Setting(model.SettingMachineryHourRate, "n/a")
	assertDecimal(t, "0", h.hourRate(t))

	_, err := h.settings.Put(h.ctx, "company_name", "North Logistics")
	require.NoError(t, err)
}

func TestSettingsHourRateReportsStorageErrors(t *testing.T) {
	h := newHarness(t)
	h.fx.Setting(model.SettingMachineryHourRate, "5000")
	require.NoError(t, h.db.Exec("DROP TABLE system_settings").Error)

	_, err := h.settings.HourRate(h.ctx)
	assert.Error(t, err)
}

func TestReferenceService(t *testing.T) {
	h := newHarness(t)
	materials := NewReferenceService("material", repository.NewReferenceRepository[model.Material](h.db))
	assert.Equal(t, "material", materials.Entity())

	gravel, err := materials.Create(h.ctx, &model.Material{Name: "Gravel", IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, gravel.ID)

	_, err = materials.Create(h.ctx, &model.Material{Name: "Gravel", IsActive: true})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := materials.Update(h.ctx, gravel.ID, &model.Material{Name: "Crushed gravel", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Crushed gravel", updated.Name)

	_, err = materials.Update(h.ctx, gravel.ID, &model.Material{Name: h.fleet.Material.Name, IsActive: true})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = materials.Update(h.ctx, 999, &model.Material{Name: "Clay", IsActive: true})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, materials.Deactivate(h.ctx, gravel.ID))
	assert.ErrorIs(t, materials.Deactivate(h.ctx, 999), ErrNotFound)

	active := true
	list, err := materials.List(h.ctx, &active)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, h.fleet.Material.ID, list[0].ID)

	all, err := materials.List(h.ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stored, err := materials.Get(h.ctx, gravel.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	_, err = materials.Get(h.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
