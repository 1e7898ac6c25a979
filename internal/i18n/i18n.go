// Package i18n provides the localization step of the dispatch pipeline.
// Language resolution order: explicit language → recipient preference →
// configured default → baseline locale.
package i18n

import (
	"golang.org/x/text/language"
)

// BaselineLanguage is the hardcoded last-resort locale.
const BaselineLanguage = "en-GB"

// Translator localizes a piece of text. Implementations are best-effort and
// never fail: when no translation exists the input is returned unchanged.
type Translator interface {
	Translate(text, lang string) string
}

// Localizer resolves the effective language for a dispatch and runs rendered
// text through the Translator.
type Localizer struct {
	translator  Translator
	defaultLang string
}

// NewLocalizer creates a Localizer. defaultLang may be empty, in which case
// the baseline locale applies.
func NewLocalizer(t Translator, defaultLang string) *Localizer {
	if t == nil {
		t = Noop{}
	}
	return &Localizer{translator: t, defaultLang: defaultLang}
}

// ResolveLanguage picks the effective language: the explicit argument if
// valid, else the recipient's stored preference, else the configured default,
// else the baseline. Candidates that do not parse as a language tag are
// skipped.
func (l *Localizer) ResolveLanguage(explicit, preference string) string {
	for _, candidate := range []string{explicit, preference, l.defaultLang} {
		if candidate == "" {
			continue
		}
		if tag, err := language.Parse(candidate); err == nil {
			return tag.String()
		}
	}
	return BaselineLanguage
}

// Localize translates text into lang. It never fails; at worst the input is
// returned as-is.
func (l *Localizer) Localize(text, lang string) string {
	return l.translator.Translate(text, lang)
}

// Noop is a Translator that echoes its input.
type Noop struct{}

// Translate implements Translator.
func (Noop) Translate(text, _ string) string { return text }
