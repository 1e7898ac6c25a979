package i18n

import (
	"golang.org/x/text/language"
)

// Catalog is a compiled-in translation table: language tag → source text →
// translated text.
type Catalog map[string]map[string]string

// CatalogTranslator translates against a Catalog, matching the requested
// language against the catalog's available tags. Unmatched languages and
// unknown texts fall through to the input.
type CatalogTranslator struct {
	catalog Catalog
	tags    []language.Tag
	keys    []string // parallel to tags: original catalog keys
	matcher language.Matcher
}

// NewCatalogTranslator builds a CatalogTranslator. Catalog keys that do not
// parse as language tags are ignored.
func NewCatalogTranslator(catalog Catalog) *CatalogTranslator {
	t := &CatalogTranslator{catalog: catalog}
	for key := range catalog {
		tag, err := language.Parse(key)
		if err != nil {
			continue
		}
		t.tags = append(t.tags, tag)
		t.keys = append(t.keys, key)
	}
	if len(t.tags) > 0 {
		t.matcher = language.NewMatcher(t.tags)
	}
	return t
}

// Translate implements Translator.
func (t *CatalogTranslator) Translate(text, lang string) string {
	if t.matcher == nil {
		return text
	}
	_, index, conf := t.matcher.Match(language.Make(lang))
	if conf == language.No {
		return text
	}
	if translated, ok := t.catalog[t.keys[index]][text]; ok {
		return translated
	}
	return text
}
