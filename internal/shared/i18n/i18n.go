package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed locales/*.json
var localeFS embed.FS

var catalogs = map[string]map[string]string{}

func init() {
	for _, lang := range []string{"vi", "en"} {
		data, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.json", lang))
		if err != nil {
			continue
		}
		catalog := map[string]string{}
		if err := json.Unmarshal(data, &catalog); err != nil {
			continue
		}
		catalogs[lang] = catalog
	}
}

// T trả về localized message cho key.
// Không có catalog cho lang → fallback "vi"; không có key → trả về chính key.
func T(lang, key string) string {
	catalog, ok := catalogs[lang]
	if !ok {
		catalog = catalogs["vi"]
	}
	if msg, ok := catalog[key]; ok {
		return msg
	}
	if fallback, ok := catalogs["vi"][key]; ok {
		return fallback
	}
	return key
}

// Tf là T + fmt.Sprintf cho messages có placeholder
func Tf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(T(lang, key), args...)
}
