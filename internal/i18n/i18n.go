// Package i18n localizes report labels and number formatting.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pavelanni/whatif/internal/model"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

type localeCtx struct {
	loc     *i18n.Localizer
	printer *message.Printer
}

var bundle *i18n.Bundle

// Init loads the translation bundle with lang as the default language.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle = i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	return nil
}

// WithLanguage returns a context carrying a localizer and number printer for lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	tag, err := language.Parse(lang)
	if err != nil {
		slog.Warn("unknown language, using English", "lang", lang, "error", err)
		tag = language.English
	}
	return context.WithValue(ctx, ctxKey{}, localeCtx{
		loc:     i18n.NewLocalizer(bundle, tag.String()),
		printer: message.NewPrinter(tag),
	})
}

func fromCtx(ctx context.Context) localeCtx {
	if lc, ok := ctx.Value(ctxKey{}).(localeCtx); ok {
		return lc
	}
	// Fallback: English.
	return localeCtx{
		loc:     i18n.NewLocalizer(bundle, "en"),
		printer: message.NewPrinter(language.English),
	}
}

// T translates a message by ID.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp translates a pluralized message by ID.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	s, err := fromCtx(ctx).loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

// Subject returns the localized subject name.
func Subject(ctx context.Context, s model.Subject) string {
	switch s {
	case model.SubjectMath:
		return T(ctx, "SubjectMath")
	case model.SubjectReadingWriting:
		return T(ctx, "SubjectReadingWriting")
	}
	return string(s)
}

// Percent formats a 0-100 value with two decimals in the context's locale.
func Percent(ctx context.Context, v float64) string {
	return fromCtx(ctx).printer.Sprintf("%.2f%%", v)
}

// Seconds formats a duration in seconds with two decimals in the context's locale.
func Seconds(ctx context.Context, v float64) string {
	return fromCtx(ctx).printer.Sprintf("%.2fs", v)
}
