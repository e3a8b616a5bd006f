// Package catalog loads the embedded UI message catalogs and registers them
// with x/text/message.
//
// Catalogs live at locales/<locale>/<namespace>.yaml and use a flat subset of
// YAML: quoted "locale" and "namespace" headers followed by a "messages:"
// block of quoted key/value pairs. Every key starts with "<namespace>.".
package catalog

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the source locale every other catalog translates.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the embedded bundle, registered with x/text/message.
func Default() *Bundle {
	return defaultBundle
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	// messages maps locale -> key -> text.
	messages map[string]map[string]string
	// namespaces maps locale -> namespace -> source file.
	namespaces map[string]map[string]string
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads every locales/*/*.yaml file of fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	b := &Bundle{
		messages:   map[string]map[string]string{},
		namespaces: map[string]map[string]string{},
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		if err := b.add(p, data); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s has no catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(p string, data []byte) error {
	file, err := parse(data)
	if err != nil {
		return err
	}
	dirLocale := path.Base(path.Dir(p))
	fileNamespace := strings.TrimSuffix(path.Base(p), path.Ext(p))
	if file.locale != dirLocale {
		return fmt.Errorf("locale %q must match directory %q", file.locale, dirLocale)
	}
	if file.namespace != fileNamespace {
		return fmt.Errorf("namespace %q must match file name %q", file.namespace, fileNamespace)
	}

	if b.namespaces[file.locale] == nil {
		b.namespaces[file.locale] = map[string]string{}
		b.messages[file.locale] = map[string]string{}
	}
	if prev, ok := b.namespaces[file.locale][file.namespace]; ok {
		return fmt.Errorf("namespace %q already loaded from %s", file.namespace, prev)
	}
	b.namespaces[file.locale][file.namespace] = p

	messages := b.messages[file.locale]
	for _, entry := range file.entries {
		if !strings.HasPrefix(entry.key, file.namespace+".") {
			return fmt.Errorf("line %d: key %q is outside namespace %q", entry.line, entry.key, file.namespace)
		}
		if _, dup := messages[entry.key]; dup {
			return fmt.Errorf("line %d: duplicate key %q", entry.line, entry.key)
		}
		messages[entry.key] = entry.value
	}
	return nil
}

// Register makes every message available to x/text/message printers. Keys a
// locale does not translate are registered with the base text so printers
// never show a raw key. Each locale is also registered under its base
// language, so "pt" resolves to "pt-BR".
func (b *Bundle) Register() error {
	base := b.messages[BaseLocale]
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if lang, conf := tag.Base(); conf != language.No {
			if parent, err := language.Parse(lang.String()); err == nil && parent != tag {
				tags = append(tags, parent)
			}
		}
		for key, fallback := range base {
			text, ok := b.messages[locale][key]
			if !ok {
				text = fallback
			}
			for _, t := range tags {
				if err := message.SetString(t, key, text); err != nil {
					return fmt.Errorf("register %s %s: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether any catalog was loaded for locale.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.messages[strings.TrimSpace(locale)]
	return ok
}

// Locales lists the loaded locales in order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		out = append(out, locale)
	}
	slices.Sort(out)
	return out
}

// LocaleMessages returns a copy of the messages locale defines itself.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	out := map[string]string{}
	if b == nil {
		return out
	}
	for key, value := range b.messages[strings.TrimSpace(locale)] {
		out[key] = value
	}
	return out
}

// Message returns the text of key in locale, falling back to the base locale.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if text, ok := b.messages[strings.TrimSpace(locale)][key]; ok {
		return text, true
	}
	text, ok := b.messages[BaseLocale][key]
	return text, ok
}

// Missing lists the base-locale keys that locale does not translate.
func (b *Bundle) Missing(locale string) []string {
	if b == nil {
		return nil
	}
	own := b.messages[strings.TrimSpace(locale)]
	var out []string
	for key := range b.messages[BaseLocale] {
		if _, ok := own[key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}

type entry struct {
	line  int
	key   string
	value string
}

type file struct {
	locale    string
	namespace string
	entries   []entry
}

func parse(data []byte) (file, error) {
	var out file
	inMessages := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "messages:" {
			inMessages = true
			continue
		}
		if !inMessages {
			name, raw, ok := strings.Cut(line, ":")
			if !ok {
				return file{}, fmt.Errorf("line %d: expected header, got %q", n, line)
			}
			value, err := strconv.Unquote(strings.TrimSpace(raw))
			if err != nil {
				return file{}, fmt.Errorf("line %d: %s must be quoted: %w", n, name, err)
			}
			switch name {
			case "locale":
				out.locale = strings.TrimSpace(value)
			case "namespace":
				out.namespace = strings.TrimSpace(value)
			default:
				return file{}, fmt.Errorf("line %d: unknown header %q", n, name)
			}
			continue
		}
		key, value, err := parsePair(line)
		if err != nil {
			return file{}, fmt.Errorf("line %d: %w", n, err)
		}
		out.entries = append(out.entries, entry{line: n, key: key, value: value})
	}
	if err := scanner.Err(); err != nil {
		return file{}, err
	}
	switch {
	case out.locale == "":
		return file{}, fmt.Errorf("missing locale header")
	case out.namespace == "":
		return file{}, fmt.Errorf("missing namespace header")
	case len(out.entries) == 0:
		return file{}, fmt.Errorf("no messages")
	}
	return out, nil
}

// parsePair splits `"key": "value"`.
func parsePair(line string) (string, string, error) {
	quotedKey, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("key must be quoted: %w", err)
	}
	key, _ := strconv.Unquote(quotedKey)
	rest := strings.TrimSpace(line[len(quotedKey):])
	if !strings.HasPrefix(rest, ":") {
		return "", "", fmt.Errorf("missing ':' after key %q", key)
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest[1:]))
	if err != nil {
		return "", "", fmt.Errorf("value of %q must be quoted: %w", key, err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("blank key")
	}
	return key, value, nil
}
