// Package i18n renders localized messages for domain error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// BaseLocale is the locale every lookup falls back to.
const BaseLocale = "en-US"

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale    string
	messages  map[Code]string
	templates map[Code]*template.Template
}

// registry keeps catalogs in registration order; index 0 is the base
// locale, which the matcher returns when nothing else fits.
type registry struct {
	mu       sync.RWMutex
	tags     []language.Tag
	catalogs []*Catalog
	matcher  language.Matcher
}

var catalogs = newRegistry()

func newRegistry() *registry {
	r := &registry{}
	r.add(language.AmericanEnglish, NewCatalog(BaseLocale, enUSMessages))
	return r
}

func (r *registry) add(tag language.Tag, cat *Catalog) {
	replaced := false
	for i, t := range r.tags {
		if t == tag {
			r.catalogs[i] = cat
			replaced = true
		}
	}
	if !replaced {
		r.tags = append(r.tags, tag)
		r.catalogs = append(r.catalogs, cat)
	}
	r.matcher = language.NewMatcher(r.tags)
}

func (r *registry) lookup(locale string) *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return r.catalogs[0]
	}
	_, index, confidence := r.matcher.Match(tag)
	if confidence == language.No {
		return r.catalogs[0]
	}
	return r.catalogs[index]
}

// GetCatalog returns the catalog best matching locale, falling back to
// en-US for blank, malformed, or unmatched locales.
func GetCatalog(locale string) *Catalog {
	return catalogs.lookup(locale)
}

// RegisterCatalog registers a catalog for locale, replacing any existing
// one. Malformed locales are ignored.
func RegisterCatalog(locale string, cat *Catalog) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || cat == nil {
		return
	}
	catalogs.mu.Lock()
	defer catalogs.mu.Unlock()
	catalogs.add(tag, cat)
}

// NewCatalog creates a catalog for locale. Templates that do not parse are
// kept as raw text.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		messages:  make(map[Code]string, len(messages)),
		templates: make(map[Code]*template.Template, len(messages)),
	}
	for code, text := range messages {
		c.messages[code] = text
		if t, err := template.New(code).Parse(text); err == nil {
			c.templates[code] = t
		}
	}
	return c
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. Unknown codes render
// as the code itself; templates that fail render as raw text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.messages[code]
	if !ok {
		return code
	}
	t, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}
