// Package i18n holds the operator message catalogs of the launcher.
//
// Catalogs live in locales/<lang>.yaml and are registered with x/text/message at
// init, so any message.Printer created for a supported language resolves the keys below.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Message keys. They are plain string constants because message.Printer only
// accepts string references.
const (
	StatusSigningIn       = "status.signing_in"
	StatusGreeting        = "status.greeting"
	StatusUsername        = "status.username"
	StatusFetching        = "status.fetching"
	StatusTeam            = "status.team"
	StatusInstanceCreated = "status.instance_created"
	StatusInstanceWiped   = "status.instance_wiped"
	StatusInstanceKept    = "status.instance_kept"
	StatusDownloading     = "status.downloading"
	StatusInstalling      = "status.installing"
	StatusLaunching       = "status.launching"
	StatusReady           = "status.ready"
	StatusGoodGame        = "status.good_game"
	StatusDryRun          = "status.dry_run"

	ErrorIdentity      = "error.identity"
	ErrorDirectory     = "error.directory"
	ErrorTeam          = "error.team"
	ErrorTransfer      = "error.transfer"
	ErrorExtraction    = "error.extraction"
	ErrorFilesystem    = "error.filesystem"
	ErrorRuntime       = "error.runtime"
	ErrorGeneric       = "error.generic"
	ErrorTellOrganizer = "error.tell_organizer"

	PromptPressEnter = "prompt.press_enter"
)

// DefaultLanguage is used when no language is requested
var DefaultLanguage = language.Hungarian

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog maps a language to its messages
type Catalog map[language.Tag]map[string]string

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var (
	defaultCatalog = mustLoadAndRegister()
	matcher        = language.NewMatcher(defaultCatalog.Tags())
)

func mustLoadAndRegister() Catalog {
	catalog, err := Load(embeddedLocales)
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	if err := catalog.Register(); err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	return catalog
}

// Load reads every locales/*.yaml file from fsys
func Load(fsys fs.FS) (Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}

	catalog := Catalog{}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}

		fromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != fromPath {
			return nil, fmt.Errorf("%s: locale %q must match file name", p, file.Locale)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("%s: no messages", p)
		}
		catalog[tag] = file.Messages
	}

	if _, ok := catalog[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %s has no catalog", DefaultLanguage)
	}
	return catalog, nil
}

// Register makes the catalog's messages available to message.Printer
func (c Catalog) Register() error {
	for tag, messages := range c {
		for key, msg := range messages {
			if err := message.SetString(tag, key, msg); err != nil {
				return fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
		}
	}
	return nil
}

// Tags returns the catalog languages with DefaultLanguage first
func (c Catalog) Tags() []language.Tag {
	tags := make([]language.Tag, 0, len(c))
	for tag := range c {
		if tag != DefaultLanguage {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	return append([]language.Tag{DefaultLanguage}, tags...)
}

// Keys returns the sorted message keys of one language
func (c Catalog) Keys(tag language.Tag) []string {
	keys := make([]string, 0, len(c[tag]))
	for key := range c[tag] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the embedded catalog
func Default() Catalog {
	return defaultCatalog
}

// Supported returns the languages with a catalog
func Supported() []language.Tag {
	return defaultCatalog.Tags()
}

// Match picks the supported language closest to lang. An empty lang selects
// DefaultLanguage; an unparsable one is an error.
func Match(lang string) (language.Tag, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage, nil
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return DefaultLanguage, fmt.Errorf("unknown language %q: %w", lang, err)
	}
	_, index, _ := matcher.Match(requested)
	return Supported()[index], nil
}

// NewPrinter returns a printer for tag
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
