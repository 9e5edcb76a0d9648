package i18n

import (
	"cmp"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
)

const (
	LangRU = "ru"
	LangEN = "en"

	// baseLanguage fills keys a locale does not translate.
	baseLanguage = LangEN
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Manager resolves message keys for the languages found in a locales dir.
// Every catalog is complete: missing keys are filled from the base locale at load.
type Manager struct {
	defaultLanguage string
	catalogs        map[string]map[string]string
	languages       []string
}

// NewManager loads the locales compiled into the binary.
func NewManager(defaultLanguage string) (*Manager, error) {
	return NewManagerFromFS(defaultLanguage, embeddedLocales, "locales")
}

func NewManagerFromFS(defaultLanguage string, fsys fs.FS, localesDir string) (*Manager, error) {
	raw, err := readCatalogs(fsys, localesDir)
	if err != nil {
		return nil, err
	}
	base, ok := raw[baseLanguage]
	if !ok {
		return nil, fmt.Errorf("required locale %q missing", baseLanguage)
	}

	manager := &Manager{
		defaultLanguage: baseLanguage,
		catalogs:        make(map[string]map[string]string, len(raw)),
	}
	for language, messages := range raw {
		merged := maps.Clone(base)
		maps.Copy(merged, messages)
		manager.catalogs[language] = merged
	}
	manager.languages = slices.Sorted(maps.Keys(manager.catalogs))
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func readCatalogs(fsys fs.FS, localesDir string) (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(fsys, localesDir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		language := normalizeLanguageTag(strings.TrimSuffix(name, path.Ext(name)))

		content, err := fs.ReadFile(fsys, path.Join(localesDir, name))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}
		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		for key, value := range messages {
			if strings.TrimSpace(value) == "" {
				delete(messages, key)
			}
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}
		catalogs[language] = messages
	}

	if len(catalogs) == 0 {
		return nil, fmt.Errorf("no locales found in %s", localesDir)
	}
	return catalogs, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	return slices.Clone(manager.languages)
}

// NormalizeLanguage maps tags like "ru-RU" or "en_GB" to a loaded language,
// or the default when none matches.
func (manager *Manager) NormalizeLanguage(raw string) string {
	if language := normalizeLanguageTag(raw); manager.isSupported(language) {
		return language
	}
	return manager.defaultLanguage
}

// DetectFromAcceptLanguage picks the highest weighted supported language.
// Equal weights keep header order.
func (manager *Manager) DetectFromAcceptLanguage(header string) string {
	type candidate struct {
		language string
		quality  float64
	}

	candidates := make([]candidate, 0)
	for _, part := range strings.Split(header, ",") {
		tag, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		language := normalizeLanguageTag(tag)
		if !manager.isSupported(language) {
			continue
		}
		quality := 1.0
		if value, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			quality = parsed
		}
		if quality <= 0 {
			continue
		}
		candidates = append(candidates, candidate{language: language, quality: quality})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.quality, a.quality)
	})
	if len(candidates) == 0 {
		return manager.defaultLanguage
	}
	return candidates[0].language
}

// Translate returns the message for key, or key itself when no locale has it.
func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.catalogs[manager.NormalizeLanguage(language)][key]; ok {
		return value
	}
	return key
}

func (manager *Manager) isSupported(language string) bool {
	_, ok := manager.catalogs[language]
	return ok
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	language, _, _ = strings.Cut(strings.ReplaceAll(language, "_", "-"), "-")
	return language
}
