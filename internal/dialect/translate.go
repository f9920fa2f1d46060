package dialect

import (
	"strings"

	"flintcfg/internal/manifest"
)

// Flag is a feature with a polarity. Name carries the literal manifest
// spelling for flags the vocabulary does not know; those pass through so
// downstream tooling can still honor them by name.
type Flag struct {
	Feature Feature
	Name    string
	Enabled bool
}

// Token returns the flag's parser-side spelling: the feature token, or the
// preserved literal name for unknown flags.
func (f Flag) Token() string {
	if f.Feature == FeatureUnknown {
		return f.Name
	}
	return f.Feature.Token()
}

const disablePrefix = "no-"

// TranslateFlags maps manifest flag spellings into parser flags, preserving
// order and polarity. A "no-" prefix on a known name disables it; a name
// with no translation becomes an opaque enabled flag with its literal
// spelling kept.
func TranslateFlags(names []string) []Flag {
	flags := make([]Flag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if base, ok := strings.CutPrefix(name, disablePrefix); ok {
			if feat, known := featureNames[base]; known {
				flags = append(flags, Flag{Feature: feat, Enabled: false})
				continue
			}
		}
		if feat, known := featureNames[name]; known {
			flags = append(flags, Flag{Feature: feat, Enabled: true})
			continue
		}
		flags = append(flags, Flag{Feature: FeatureUnknown, Name: name, Enabled: true})
	}
	return flags
}

// Resolve computes the ordered enabled-feature set the parser should run
// with: the dialect's defaults expanded first, then explicit flags applied
// in order (enables append, disables remove by token).
func Resolve(d Dialect, flags []Flag) []Flag {
	var enabled []Flag
	for _, feat := range d.Defaults() {
		enabled = append(enabled, Flag{Feature: feat, Enabled: true})
	}
	for _, fl := range flags {
		if fl.Enabled {
			if indexOf(enabled, fl.Token()) < 0 {
				enabled = append(enabled, fl)
			}
			continue
		}
		if i := indexOf(enabled, fl.Token()); i >= 0 {
			enabled = append(enabled[:i], enabled[i+1:]...)
		}
	}
	return enabled
}

func indexOf(flags []Flag, token string) int {
	for i, fl := range flags {
		if fl.Token() == token {
			return i
		}
	}
	return -1
}

// Config is the pair crossing the boundary to the formatter: the dialect to
// parse with and the ordered enabled-feature set.
type Config struct {
	Dialect Dialect
	Flags   []Flag
}

// Tokens returns the enabled flags as parser tokens, in order.
func (c Config) Tokens() []string {
	tokens := make([]string, 0, len(c.Flags))
	for _, fl := range c.Flags {
		tokens = append(tokens, fl.Token())
	}
	return tokens
}

// DefaultConfig is the conservative fallback when no stanza claims a file:
// the default dialect with no flags enabled, defaults expansion skipped.
func DefaultConfig() Config {
	return Config{Dialect: DefaultDialect}
}

// ConfigFor translates a stanza's BuildInfo into a parser configuration.
// Unknown dialect names fail hard; unknown flags degrade to opaque tokens.
func ConfigFor(info manifest.BuildInfo) (Config, error) {
	d, err := ParseDialect(info.Dialect)
	if err != nil {
		return Config{}, err
	}
	flags := TranslateFlags(info.Features)
	return Config{Dialect: d, Flags: Resolve(d, flags)}, nil
}
