// Package i18n localizes response messages using go-i18n catalogs. The en and
// id catalogs are embedded; Load adds more files at startup.
package i18n

import (
	"embed"
	"encoding/json"
	"path"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var (
	once    sync.Once
	initErr error
	bundle  *goi18n.Bundle
)

// Init builds the bundle from the embedded catalogs. It is safe to call more
// than once; later calls return the first result.
func Init() error {
	once.Do(func() {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := locales.ReadDir("locales")
		if err != nil {
			initErr = err
			return
		}
		for _, e := range entries {
			buf, err := locales.ReadFile(path.Join("locales", e.Name()))
			if err != nil {
				initErr = err
				return
			}
			if _, err := bundle.ParseMessageFileBytes(buf, e.Name()); err != nil {
				initErr = err
				return
			}
		}
	})
	return initErr
}

// Load adds a message file such as active.fr.json. Call it before serving;
// the bundle is not safe for concurrent writes.
func Load(file string) error {
	if err := Init(); err != nil {
		return err
	}
	_, err := bundle.LoadMessageFile(file)
	return err
}

// Translator localizes messages for one set of language preferences.
type Translator struct {
	loc *goi18n.Localizer
}

// For returns a translator for an Accept-Language header value. An empty or
// unparseable header resolves to English.
func For(acceptLanguage string) *Translator {
	if err := Init(); err != nil {
		return &Translator{}
	}
	return &Translator{loc: goi18n.NewLocalizer(bundle, acceptLanguage)}
}

// Message renders messageID with data. When the catalogs have no entry, or
// rendering fails, fallback is returned unchanged.
func (t *Translator) Message(messageID string, data map[string]any, fallback string) string {
	if t == nil || t.loc == nil || messageID == "" {
		return fallback
	}
	msg, err := t.loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}

// Resource translates a resource noun such as "product type", keyed as
// "resource.<noun>".
func (t *Translator) Resource(noun string) string {
	return t.Message("resource."+noun, nil, noun)
}
