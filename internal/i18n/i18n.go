// Package i18n resolves the English template strings used in user-facing
// errors into the configured locale. The templates themselves are the stable
// contract: when no translation is registered, T returns the template
// verbatim.
package i18n

import (
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Localizer turns an English template string into user-facing text.
type Localizer func(template string) string

var bundle = goi18n.NewBundle(language.English)

// Translator localizes templates for a fixed set of preferred locales.
type Translator struct {
	loc *goi18n.Localizer
}

// New returns a translator for the given locales, most preferred first.
// With no locales it falls through to English, i.e. the templates as-is.
func New(locales ...string) *Translator {
	return &Translator{loc: goi18n.NewLocalizer(bundle, locales...)}
}

// T resolves a template for the translator's locales.
func (t *Translator) T(template string) string {
	msg, err := t.loc.Localize(&goi18n.LocalizeConfig{
		DefaultMessage: &goi18n.Message{ID: template, Other: template},
	})
	if err != nil {
		return template
	}
	return msg
}

// AddMessages registers translations for a locale. The map keys are the
// English templates.
func AddMessages(locale string, messages map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return err
	}
	msgs := make([]*goi18n.Message, 0, len(messages))
	for id, other := range messages {
		msgs = append(msgs, &goi18n.Message{ID: id, Other: other})
	}
	return bundle.AddMessages(tag, msgs...)
}

var defaultTranslator = New()

// SetDefault switches the locales used by the package-level T.
func SetDefault(locales ...string) {
	defaultTranslator = New(locales...)
}

// T resolves a template with the default translator (English passthrough
// until SetDefault installs a locale with registered translations).
func T(template string) string {
	return defaultTranslator.T(template)
}
