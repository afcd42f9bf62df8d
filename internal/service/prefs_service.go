package service

import (
	"context"
	"strconv"

	"meganote_dashboard/internal/repository"

	"github.com/rs/zerolog"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// PrefsService stores the UI preferences that outlive a restart.
// Reads are best-effort: a missing or unreadable value means the default.
type PrefsService struct {
	store  repository.StateRepository
	logger zerolog.Logger
}

func NewPrefsService(store repository.StateRepository, logger zerolog.Logger) *PrefsService {
	return &PrefsService{store: store, logger: logger.With().Str("component", "prefs").Logger()}
}

// Theme returns the stored theme mode, dark by default
func (p *PrefsService) Theme(ctx context.Context) string {
	v, ok, err := p.store.Get(ctx, repository.KeyTheme)
	if err != nil {
		p.logger.Warn().Err(err).Msg("could not read theme")
	}
	if !ok || (v != ThemeDark && v != ThemeLight) {
		return ThemeDark
	}
	return v
}

// ToggleTheme flips between dark and light and returns the new mode
func (p *PrefsService) ToggleTheme(ctx context.Context) string {
	next := ThemeLight
	if p.Theme(ctx) == ThemeLight {
		next = ThemeDark
	}
	if err := p.store.Set(ctx, repository.KeyTheme, next); err != nil {
		p.logger.Warn().Err(err).Msg("could not save theme")
	}
	return next
}

// Persist returns the "stay logged in" preference, false by default
func (p *PrefsService) Persist(ctx context.Context) bool {
	v, ok, err := p.store.Get(ctx, repository.KeyPersist)
	if err != nil {
		p.logger.Warn().Err(err).Msg("could not read persist preference")
	}
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func (p *PrefsService) SetPersist(ctx context.Context, persist bool) {
	if err := p.store.Set(ctx, repository.KeyPersist, strconv.FormatBool(persist)); err != nil {
		p.logger.Warn().Err(err).Msg("could not save persist preference")
	}
}
