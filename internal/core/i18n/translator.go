// Package i18n provides localized validation messages.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator looks up localized messages.
type Translator interface {
	// Translate returns the catalog message for key formatted with args,
	// or fallback formatted with args when the catalog has no entry.
	Translate(key, fallback string, args ...any) string
}

// Catalog is a message catalog backed by golang.org/x/text.
type Catalog struct {
	printer *message.Printer
	known   map[string]struct{}
}

var _ Translator = (*Catalog)(nil)

// New builds a Catalog for lang from key -> format entries.
// A nil or empty entries map yields the fallback messages.
func New(lang string, entries map[string]string) (*Catalog, error) {
	tag := language.English
	if lang != "" {
		parsed, err := language.Parse(lang)
		if err != nil {
			return nil, err
		}
		tag = parsed
	}

	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	known := make(map[string]struct{}, len(entries))
	for key, format := range entries {
		if err := builder.SetString(tag, key, format); err != nil {
			return nil, err
		}
		known[key] = struct{}{}
	}

	return &Catalog{
		printer: message.NewPrinter(tag, message.Catalog(builder)),
		known:   known,
	}, nil
}

// Default returns an English catalog without entries.
func Default() *Catalog {
	c, _ := New("en", nil)
	return c
}

// Translate implements Translator.
func (c *Catalog) Translate(key, fallback string, args ...any) string {
	if _, ok := c.known[key]; ok {
		return c.printer.Sprintf(key, args...)
	}
	return c.printer.Sprintf(fallback, args...)
}

// Field translates the label of a field, e.g. Field("Buyer", "code", "Code")
// looks up "Buyer.code._".
func Field(t Translator, entity, field, fallback string) string {
	return t.Translate(entity+"."+field+"._", fallback)
}
