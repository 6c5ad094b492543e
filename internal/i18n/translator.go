// Package i18n provides the translation seam for user-facing CLI text.
// The core engine never translates; only the surfaces do, so a Translator
// is a small lookup interface with a caller-supplied fallback.
package i18n

import "strings"

// M maps placeholder names to their values.
type M map[string]string

// Translator resolves a message key to localized text. When the key is
// unknown the fallback is returned with the same placeholder substitution.
type Translator interface {
	T(key string, params M, fallback string) string
}

// MapTranslator is a Translator backed by an in-memory catalog, keyed by
// message key. It is the default provider; real catalogs can be loaded
// from configuration and passed in as a plain map.
type MapTranslator struct {
	messages map[string]string
}

// NewMapTranslator creates a translator over a message catalog. A nil
// catalog is valid and makes every lookup fall through to the fallback.
func NewMapTranslator(messages map[string]string) *MapTranslator {
	return &MapTranslator{messages: messages}
}

// T looks up key and substitutes {param} placeholders.
func (t *MapTranslator) T(key string, params M, fallback string) string {
	msg, ok := t.messages[key]
	if !ok {
		msg = fallback
	}
	return substitute(msg, params)
}

func substitute(msg string, params M) string {
	if len(params) == 0 {
		return msg
	}
	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}
