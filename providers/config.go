package providers

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the command configuration file.
type Config struct {
	Provider  string                    `toml:"provider"`
	Providers map[string]ProviderConfig `toml:"providers"`
	Runtime   RuntimeConfig             `toml:"runtime"`
	UI        UIConfig                  `toml:"ui"`

	// Dir is the directory of the file, set at load time.
	Dir string `toml:"-"`
}

// ProviderConfig holds the constructor arguments of one provider.
type ProviderConfig struct {
	Authorization string `toml:"authorization"`
	Salt          string `toml:"salt"`
	ClientCert    string `toml:"client_cert"`
	Language      string `toml:"language"`
}

// RuntimeConfig configures the embedded VM.
type RuntimeConfig struct {
	ClassPath string   `toml:"class_path"`
	Debug     string   `toml:"debug"`
	Options   []string `toml:"options"`
}

// UIConfig configures the interactive commands.
type UIConfig struct {
	MaxResults int `toml:"max_results"`
	Workers    int `toml:"workers"`
}

// DefaultPath returns $XDG_CONFIG_HOME/pte/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pte", "config.toml")
}

// LoadConfig reads a configuration file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse error in %s: %w", path, err)
			}
			if cfg.Dir, err = filepath.Abs(filepath.Dir(path)); err != nil {
				return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
			}
		}
	}

	// Defaults
	if cfg.UI.MaxResults <= 0 {
		cfg.UI.MaxResults = 10
	}
	if cfg.UI.Workers <= 0 {
		cfg.UI.Workers = 4
	}
	return cfg, nil
}

// SaltBytes decodes the hex salt.
func (p ProviderConfig) SaltBytes() ([]byte, error) {
	b, err := hex.DecodeString(p.Salt)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return b, nil
}

// ClientCertBytes reads the client certificate, resolving relative
// paths against dir.
func (p ProviderConfig) ClientCertBytes(dir string) ([]byte, error) {
	if p.ClientCert == "" {
		return nil, nil
	}
	path := p.ClientCert
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("client certificate: %w", err)
	}
	return b, nil
}
