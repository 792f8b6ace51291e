package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// DefaultLang is the fallback language code when none is configured.
const DefaultLang = "en"

// I18n holds translations keyed by language and message key. It is immutable
// after creation, making it safe for concurrent use. Language negotiation
// uses golang.org/x/text matching, so "en-US" resolves against "en".
type I18n struct {
	translations map[language.Tag]map[string]string
	tags         []language.Tag
	matcher      language.Matcher
	fallback     language.Tag
}

// Option configures the I18n instance during construction.
type Option func(*I18n) error

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("invalid default language %q: %w", lang, err)
		}
		i.fallback = tag
		return nil
	}
}

// WithTranslations registers message translations for a language.
// Later registrations for the same language merge over earlier ones.
func WithTranslations(lang string, messages map[string]string) Option {
	return func(i *I18n) error {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("invalid language %q: %w", lang, err)
		}

		existing, ok := i.translations[tag]
		if !ok {
			existing = make(map[string]string, len(messages))
			i.translations[tag] = existing
			i.tags = append(i.tags, tag)
		}
		for key, msg := range messages {
			existing[key] = msg
		}
		return nil
	}
}

// New creates an immutable I18n instance.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		translations: make(map[language.Tag]map[string]string),
		fallback:     language.MustParse(DefaultLang),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	// The fallback goes first: the matcher prefers earlier tags on ties and
	// falls back to the first tag when nothing matches.
	ordered := []language.Tag{i.fallback}
	for _, tag := range i.tags {
		if tag != i.fallback {
			ordered = append(ordered, tag)
		}
	}
	i.matcher = language.NewMatcher(ordered)

	return i, nil
}

// T translates key for the given language, falling back to the default
// language and finally to the key itself when no translation exists.
func (i *I18n) T(lang, key string) string {
	tag, _ := language.MatchStrings(i.matcher, lang)

	if msg, ok := i.lookup(tag, key); ok {
		return msg
	}
	if msg, ok := i.lookup(i.fallback, key); ok {
		return msg
	}
	return key
}

func (i *I18n) lookup(tag language.Tag, key string) (string, bool) {
	for {
		if messages, ok := i.translations[tag]; ok {
			if msg, ok := messages[key]; ok {
				return msg, true
			}
		}
		parent := tag.Parent()
		if parent == tag || parent == language.Und {
			return "", false
		}
		tag = parent
	}
}

// Translator returns a translation function bound to one language context.
func (i *I18n) Translator(lang string) *Translator {
	return &Translator{i18n: i, lang: lang}
}

// Translator provides a simplified translation interface with a fixed
// language context.
type Translator struct {
	i18n *I18n
	lang string
}

// T translates a key in the translator's language context.
func (t *Translator) T(key string) string {
	return t.i18n.T(t.lang, key)
}

// Language returns the translator's language context.
func (t *Translator) Language() string {
	return t.lang
}
