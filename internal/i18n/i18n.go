package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Bundle holds flat key/value translations per language.
type Bundle struct {
	fallback string
	// dir and langs are set by Load so Reload can re-read the same files.
	dir   string
	langs []string

	mu        sync.RWMutex
	dict      map[string]map[string]string
	supported map[string]struct{}
	tags      []language.Tag
	matcher   language.Matcher
}

// Load reads <dir>/<lang>.json for each supported language. Only the fallback
// file is required.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{"en", "es"}
	}
	dict := map[string]map[string]string{}
	for _, l := range supported {
		raw, err := os.ReadFile(filepath.Join(dir, l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		dict[l] = m
	}
	b, err := New(fallback, dict)
	if err != nil {
		return nil, err
	}
	b.dir = dir
	b.langs = append([]string(nil), supported...)
	return b, nil
}

// Reload re-reads the locale files of a bundle built by Load. On error the
// current translations are kept.
func (b *Bundle) Reload() error {
	if b.dir == "" {
		return nil
	}
	next, err := Load(b.dir, b.fallback, b.langs)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dict, b.supported, b.tags, b.matcher = next.dict, next.supported, next.tags, next.matcher
	return nil
}

// New builds a bundle from in-memory dictionaries.
func New(fallback string, dict map[string]map[string]string) (*Bundle, error) {
	if _, ok := dict[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}
	b := &Bundle{
		dict:      dict,
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	// fallback first so the matcher prefers it on ties
	b.tags = append(b.tags, language.Make(fallback))
	b.supported[fallback] = struct{}{}
	langs := make([]string, 0, len(dict))
	for l := range dict {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		if l == fallback {
			continue
		}
		b.supported[l] = struct{}{}
		b.tags = append(b.tags, language.Make(l))
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) Supported() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether translations for lang were loaded.
func (b *Bundle) IsSupported(lang string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.supported[strings.ToLower(lang)]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf translates key and substitutes {name} placeholders from args given as
// alternating name, value pairs.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	s := b.T(lang, key)
	if len(args) < 2 {
		return s
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(args[i])+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Resolve chooses the best supported base language from an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := b.tags[idx].Base()
	return base.String()
}
