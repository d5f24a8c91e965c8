package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

//go:embed locales
var embedded embed.FS

type Translations map[string]string

type catalogFile struct {
	Labels        Translations `yaml:"LABELS"`
	Notifications Translations `yaml:"NOTIFICATIONS"`
}

// Catalog holds notification templates per locale.
type Catalog struct {
	mu      sync.RWMutex
	locales map[string]catalogFile
}

func NewCatalog() *Catalog {
	return &Catalog{locales: make(map[string]catalogFile)}
}

// Default returns a catalog loaded from the embedded locales.
func Default() (*Catalog, error) {
	c := NewCatalog()
	if err := c.Load(embedded, "locales"); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads <root>/<locale>/notifications.yaml for every locale directory.
func (c *Catalog) Load(fsys fs.FS, root string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		locale := entry.Name()
		filePath := path.Join(root, locale, "notifications.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			continue
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		c.locales[locale] = file
	}

	return nil
}

func (c *Catalog) Translate(locale, key string) string {
	return c.lookup(locale, key, func(f catalogFile) Translations { return f.Notifications })
}

func (c *Catalog) Label(locale, key string) string {
	return c.lookup(locale, key, func(f catalogFile) Translations { return f.Labels })
}

func (c *Catalog) lookup(locale, key string, section func(catalogFile) Translations) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if file, ok := c.locales[locale]; ok {
		if val, ok := section(file)[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if file, ok := c.locales[DefaultLocale]; ok {
			if val, ok := section(file)[key]; ok {
				return val
			}
		}
	}

	return key
}

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes {name} placeholders from vars. Unknown names render as
// the empty string.
func Render(tmpl string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		return vars[m[1:len(m)-1]]
	})
}
