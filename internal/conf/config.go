package conf

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Keys recognized by the archiving job. Anything else in the file
// belongs to other fink services and is skipped.
const (
	KeyLogLevel         = "LOG_LEVEL"
	KeyNightToArchive   = "NIGHT_TO_ARCHIVE"
	KeyScienceDBName    = "SCIENCE_DB_NAME"
	KeySaveCatalogOnly  = "SAVE_SCIENCE_DB_CATALOG_ONLY"
	KeyScienceDBCatalog = "SCIENCE_DB_CATALOG"
)

// Config represents the immutable public configuration object.
// It is a value type; once returned it is never mutated, so it can be
// shared across any number of concurrent readers without locking.
type Config struct {
	LogLevel         Level
	NightToArchive   string
	ScienceDBName    string
	SaveCatalogOnly  bool
	ScienceDBCatalog string
}

// configDTO carries raw string values between scanning and validation.
// Pointers allow distinguishing "not set" (nil) from "set to empty".
type configDTO struct {
	logLevel         *string
	nightToArchive   *string
	scienceDBName    *string
	saveCatalogOnly  *string
	scienceDBCatalog *string
}

// slot returns the DTO field for a recognized key, nil otherwise.
func (dto *configDTO) slot(key string) **string {
	switch key {
	case KeyLogLevel:
		return &dto.logLevel
	case KeyNightToArchive:
		return &dto.nightToArchive
	case KeyScienceDBName:
		return &dto.scienceDBName
	case KeySaveCatalogOnly:
		return &dto.saveCatalogOnly
	case KeyScienceDBCatalog:
		return &dto.scienceDBCatalog
	}
	return nil
}

// ConfigSource orchestrates loading configuration from a file.
// Env supplies values for ${VAR} placeholders; it is injected rather
// than read from the process so that loading stays side-effect-free.
// See the Read method.
type ConfigSource struct {
	Path string
	Env  map[string]string
}

// Read loads the file at Path and returns the validated Config.
func (cs *ConfigSource) Read() (Config, error) {
	data, err := os.ReadFile(cs.Path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load %s: %w", cs.Path, err)
	}

	config, err := Parse(string(data), cs.Env)
	if err != nil {
		// Existing but malformed file should result in failure (let's not hide
		// problems from the users).
		return Config{}, fmt.Errorf("failed to parse %s: %w", cs.Path, err)
	}

	return config, nil
}

// Parse reads KEY=VALUE configuration data and returns the validated
// Config. env supplies values for ${VAR} placeholders; pass
// EnvironMap(os.Environ()) outside of tests.
//
// Loading is all-or-nothing: any missing, repeated or mistyped key
// fails the whole load and no partial record is returned.
func Parse(data string, env map[string]string) (Config, error) {
	dto, err := parseConfigDTO(data)
	if err != nil {
		return Config{}, err
	}
	return newConfig(dto, env)
}

// parseConfigDTO scans KEY=VALUE lines into a configDTO. Comment lines
// (#-prefixed) and blank lines are skipped. A recognized key appearing
// twice is an error even when both occurrences agree; last-wins would
// hide misconfiguration from the operator.
func parseConfigDTO(data string) (configDTO, error) {
	var dto configDTO

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return dto, fmt.Errorf("malformed line %q: expected KEY=VALUE", line)
		}
		key = strings.TrimSpace(key)

		slot := dto.slot(key)
		if slot == nil {
			continue
		}
		if *slot != nil {
			return dto, &KeyError{Key: key, Err: ErrDuplicateKey}
		}

		v := unquote(strings.TrimSpace(value))
		*slot = &v
	}

	return dto, nil
}

// newConfig validates a scanned configDTO and builds the Config.
func newConfig(dto configDTO, env map[string]string) (Config, error) {
	required := []struct {
		key string
		raw *string
	}{
		{KeyLogLevel, dto.logLevel},
		{KeyNightToArchive, dto.nightToArchive},
		{KeyScienceDBName, dto.scienceDBName},
		{KeySaveCatalogOnly, dto.saveCatalogOnly},
		{KeyScienceDBCatalog, dto.scienceDBCatalog},
	}
	for _, r := range required {
		if r.raw == nil {
			return Config{}, &KeyError{Key: r.key, Err: ErrMissingKey}
		}
	}

	var config Config
	var err error

	config.LogLevel, err = ParseLevel(*dto.logLevel)
	if err != nil {
		return Config{}, err
	}

	config.NightToArchive, err = stringValue(KeyNightToArchive, *dto.nightToArchive, env)
	if err != nil {
		return Config{}, err
	}

	config.ScienceDBName, err = stringValue(KeyScienceDBName, *dto.scienceDBName, env)
	if err != nil {
		return Config{}, err
	}

	config.ScienceDBCatalog, err = stringValue(KeyScienceDBCatalog, *dto.scienceDBCatalog, env)
	if err != nil {
		return Config{}, err
	}

	// Only the exact lowercase literals are accepted. The production
	// file warns operators about this; "True" and "1" must fail.
	switch *dto.saveCatalogOnly {
	case "true":
		config.SaveCatalogOnly = true
	case "false":
		config.SaveCatalogOnly = false
	default:
		return Config{}, &KeyError{
			Key:   KeySaveCatalogOnly,
			Value: *dto.saveCatalogOnly,
			Err:   ErrInvalidBooleanLiteral,
		}
	}

	return config, nil
}

// stringValue resolves placeholders in a required string value and
// rejects values that end up empty.
func stringValue(key, raw string, env map[string]string) (string, error) {
	resolved, err := interpolate(key, raw, env)
	if err != nil {
		return "", err
	}
	if resolved == "" {
		return "", &KeyError{Key: key, Err: ErrEmptyValue}
	}
	return resolved, nil
}

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolate substitutes ${VAR} placeholders from env. A placeholder
// naming an unset variable fails the load; keeping the literal would
// point the job at a path that does not exist.
func interpolate(key, value string, env map[string]string) (string, error) {
	var unresolved string
	resolved := varPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-1]
		v, ok := env[name]
		if !ok {
			if unresolved == "" {
				unresolved = name
			}
			return match
		}
		return v
	})
	if unresolved != "" {
		return "", &KeyError{Key: key, Value: unresolved, Err: ErrUnresolvedVariable}
	}
	return resolved, nil
}

// unquote strips one pair of matching outer quotes. Single and double
// quotes are treated as equivalent literal-string quoting.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// EnvironMap converts "KEY=VALUE" pairs in the os.Environ form into
// the map Parse expects.
func EnvironMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, found := strings.Cut(kv, "="); found {
			env[key] = value
		}
	}
	return env
}
