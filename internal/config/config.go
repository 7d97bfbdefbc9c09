package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config is the root configuration for ttr, stored in ~/.ttr/config.json.
// The file supports single-line // comments for documentation purposes.
// API credentials are intentionally not part of this file; see Credentials.
type Config struct {
	// DefaultBoard is the board id or short link used when a command is
	// invoked without one.
	DefaultBoard string       `json:"default_board"`
	Report       ReportConfig `json:"report"`
}

// ReportConfig holds defaults for report and export filtering.
type ReportConfig struct {
	// ExcludeStartDay shifts the --from bound one day forward, matching
	// the stricter of the two historical filter semantics. Default false:
	// entries dated exactly on the start day are included.
	ExcludeStartDay bool `json:"exclude_start_day"`
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// ttr configuration – ~/.ttr/config.json
//
// All settings are optional. API credentials do NOT belong here; put
// TRELLO_API_KEY and TRELLO_API_TOKEN into ~/.ttr/.env or the process
// environment instead.
{
  // Board id or short link used when a command is run without one.
  "default_board": "",

  "report": {
    // When true, entries dated exactly on the --from day are excluded
    // (the range starts the day after). The default includes them.
    "exclude_start_day": false
  }
}
`

// BaseDir returns the root data directory (~/.ttr).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ttr"), nil
}

func configFilePath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.ttr/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Credentials holds the Trello API key/token pair attached to every request.
type Credentials struct {
	Key   string
	Token string
}

// LoadCredentials reads TRELLO_API_KEY and TRELLO_API_TOKEN from
// ~/.ttr/.env (if present) and the process environment; the environment
// wins over the file.
func LoadCredentials() (Credentials, error) {
	if base, err := BaseDir(); err == nil {
		// Best effort: the env file is optional.
		_ = godotenv.Load(filepath.Join(base, ".env"))
	}

	creds := Credentials{
		Key:   os.Getenv("TRELLO_API_KEY"),
		Token: os.Getenv("TRELLO_API_TOKEN"),
	}
	if creds.Key == "" || creds.Token == "" {
		return Credentials{}, fmt.Errorf("missing Trello credentials: set TRELLO_API_KEY and TRELLO_API_TOKEN in ~/.ttr/.env or the environment (get them from https://trello.com/power-ups/admin)")
	}
	return creds, nil
}
