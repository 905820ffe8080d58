package conf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sampleFile mirrors the production configuration of the archiving job.
const sampleFile = `# Parameters of the fink archiving job.
LOG_LEVEL=INFO
NIGHT_TO_ARCHIVE='archive/alerts_store_tmp'
SCIENCE_DB_NAME="test_portal"
# Beware: lowercase true/false only.
SAVE_SCIENCE_DB_CATALOG_ONLY=false
SCIENCE_DB_CATALOG=${FINK_HOME}/catalog_hbase.json
`

func sampleEnv() map[string]string {
	return map[string]string{"FINK_HOME": "/opt/fink"}
}

func TestParse(t *testing.T) {
	config, err := Parse(sampleFile, sampleEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Config{
		LogLevel:         LevelInfo,
		NightToArchive:   "archive/alerts_store_tmp",
		ScienceDBName:    "test_portal",
		SaveCatalogOnly:  false,
		ScienceDBCatalog: "/opt/fink/catalog_hbase.json",
	}
	if diff := cmp.Diff(expected, config); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(lines []string) []string
		env         map[string]string
		expectedErr error
		expectedKey string
	}{
		{
			name: "missing key",
			mutate: func(lines []string) []string {
				return deleteLine(lines, KeyScienceDBName)
			},
			env:         sampleEnv(),
			expectedErr: ErrMissingKey,
			expectedKey: KeyScienceDBName,
		},
		{
			name: "duplicate key with identical value",
			mutate: func(lines []string) []string {
				return append(lines, "LOG_LEVEL=INFO")
			},
			env:         sampleEnv(),
			expectedErr: ErrDuplicateKey,
			expectedKey: KeyLogLevel,
		},
		{
			name: "duplicate key with different value",
			mutate: func(lines []string) []string {
				return append(lines, "LOG_LEVEL=DEBUG")
			},
			env:         sampleEnv(),
			expectedErr: ErrDuplicateKey,
			expectedKey: KeyLogLevel,
		},
		{
			name: "lowercase log level",
			mutate: func(lines []string) []string {
				return replaceLine(lines, KeyLogLevel, "LOG_LEVEL=info")
			},
			env:         sampleEnv(),
			expectedErr: ErrInvalidEnumValue,
			expectedKey: KeyLogLevel,
		},
		{
			name: "unknown log level",
			mutate: func(lines []string) []string {
				return replaceLine(lines, KeyLogLevel, "LOG_LEVEL=VERBOSE")
			},
			env:         sampleEnv(),
			expectedErr: ErrInvalidEnumValue,
			expectedKey: KeyLogLevel,
		},
		{
			name: "capitalized boolean",
			mutate: func(lines []string) []string {
				return replaceLine(lines, KeySaveCatalogOnly, "SAVE_SCIENCE_DB_CATALOG_ONLY=True")
			},
			env:         sampleEnv(),
			expectedErr: ErrInvalidBooleanLiteral,
			expectedKey: KeySaveCatalogOnly,
		},
		{
			name: "uppercase boolean",
			mutate: func(lines []string) []string {
				return replaceLine(lines, KeySaveCatalogOnly, "SAVE_SCIENCE_DB_CATALOG_ONLY=FALSE")
			},
			env:         sampleEnv(),
			expectedErr: ErrInvalidBooleanLiteral,
			expectedKey: KeySaveCatalogOnly,
		},
		{
			name: "numeric boolean",
			mutate: func(lines []string) []string {
				return replaceLine(lines, KeySaveCatalogOnly, "SAVE_SCIENCE_DB_CATALOG_ONLY=1")
			},
			env:         sampleEnv(),
			expectedErr: ErrInvalidBooleanLiteral,
			expectedKey: KeySaveCatalogOnly,
		},
		{
			name:        "unset FINK_HOME",
			mutate:      func(lines []string) []string { return lines },
			env:         map[string]string{},
			expectedErr: ErrUnresolvedVariable,
			expectedKey: KeyScienceDBCatalog,
		},
		{
			name: "empty night to archive",
			mutate: func(lines []string) []string {
				return replaceLine(lines, KeyNightToArchive, "NIGHT_TO_ARCHIVE=''")
			},
			env:         sampleEnv(),
			expectedErr: ErrEmptyValue,
			expectedKey: KeyNightToArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := tt.mutate(strings.Split(sampleFile, "\n"))
			_, err := Parse(strings.Join(lines, "\n"), tt.env)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected %v, got %v", tt.expectedErr, err)
			}

			var keyErr *KeyError
			if !errors.As(err, &keyErr) {
				t.Fatalf("expected a *KeyError, got %T", err)
			}
			if keyErr.Key != tt.expectedKey {
				t.Errorf("expected key %s, got %s", tt.expectedKey, keyErr.Key)
			}
		})
	}
}

func TestParse_EachKeyMissing(t *testing.T) {
	keys := []string{
		KeyLogLevel,
		KeyNightToArchive,
		KeyScienceDBName,
		KeySaveCatalogOnly,
		KeyScienceDBCatalog,
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			lines := deleteLine(strings.Split(sampleFile, "\n"), key)
			_, err := Parse(strings.Join(lines, "\n"), sampleEnv())
			if !errors.Is(err, ErrMissingKey) {
				t.Errorf("expected ErrMissingKey, got %v", err)
			}
		})
	}
}

func TestParse_UnrecognizedKeysSkipped(t *testing.T) {
	// The production file carries keys consumed by other fink services.
	data := sampleFile + `
KAFKA_IPPORT_SIM="localhost:29092"
FINK_TRIGGER_UPDATE=2
KAFKA_IPPORT_SIM="twice, and still not ours"
`
	config, err := Parse(data, sampleEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.ScienceDBName != "test_portal" {
		t.Errorf("expected ScienceDBName=test_portal, got %s", config.ScienceDBName)
	}
}

func TestParse_QuotingStyles(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"single quotes", "SCIENCE_DB_NAME='test_portal'", "test_portal"},
		{"double quotes", `SCIENCE_DB_NAME="test_portal"`, "test_portal"},
		{"no quotes", "SCIENCE_DB_NAME=test_portal", "test_portal"},
		{"mismatched quotes kept verbatim", `SCIENCE_DB_NAME='test_portal"`, `'test_portal"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := replaceLine(strings.Split(sampleFile, "\n"), KeyScienceDBName, tt.line)
			config, err := Parse(strings.Join(lines, "\n"), sampleEnv())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.ScienceDBName != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, config.ScienceDBName)
			}
		})
	}
}

func TestParse_MalformedLine(t *testing.T) {
	_, err := Parse(sampleFile+"\nnot a key value pair\n", sampleEnv())
	if err == nil {
		t.Fatal("expected error but got none")
	}
}

func TestParse_InterpolationInsideValue(t *testing.T) {
	lines := replaceLine(
		strings.Split(sampleFile, "\n"),
		KeyScienceDBCatalog,
		"SCIENCE_DB_CATALOG='${FINK_HOME}/catalogs/${FINK_VERSION}.json'",
	)
	env := map[string]string{"FINK_HOME": "/opt/fink", "FINK_VERSION": "v1"}

	config, err := Parse(strings.Join(lines, "\n"), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.ScienceDBCatalog != "/opt/fink/catalogs/v1.json" {
		t.Errorf("unexpected catalog path: %s", config.ScienceDBCatalog)
	}
}

func TestConfigSource_Read(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "fink.conf")
	if err := os.WriteFile(path, []byte(sampleFile), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cs := &ConfigSource{Path: path, Env: sampleEnv()}
	config, err := cs.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.ScienceDBCatalog != "/opt/fink/catalog_hbase.json" {
		t.Errorf("unexpected catalog path: %s", config.ScienceDBCatalog)
	}
}

func TestConfigSource_MissingFile(t *testing.T) {
	cs := &ConfigSource{
		Path: filepath.Join(t.TempDir(), "nonexistent.conf"),
		Env:  sampleEnv(),
	}
	if _, err := cs.Read(); err == nil {
		t.Fatal("expected error but got none")
	}
}

func TestConfigSource_ParseErrorNamesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "fink.conf")
	broken := strings.Replace(sampleFile, "LOG_LEVEL=INFO", "LOG_LEVEL=info", 1)
	if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cs := &ConfigSource{Path: path, Env: sampleEnv()}
	_, err := cs.Read()
	if !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("expected ErrInvalidEnumValue, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestEnvironMap(t *testing.T) {
	env := EnvironMap([]string{"FINK_HOME=/opt/fink", "EMPTY=", "garbage"})

	expected := map[string]string{"FINK_HOME": "/opt/fink", "EMPTY": ""}
	if diff := cmp.Diff(expected, env); diff != "" {
		t.Errorf("EnvironMap() mismatch (-want +got):\n%s", diff)
	}
}

// deleteLine removes the line defining key from the sample.
func deleteLine(lines []string, key string) []string {
	var out []string
	for _, line := range lines {
		if strings.HasPrefix(line, key+"=") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// replaceLine swaps the line defining key for a replacement.
func replaceLine(lines []string, key, replacement string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.HasPrefix(line, key+"=") {
			out[i] = replacement
		} else {
			out[i] = line
		}
	}
	return out
}
