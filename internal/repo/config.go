package repo

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/knotvcs/knot/internal/repoerr"
)

// Config is .git/config.toml: repository-local identity, signing key, and
// remotes, loaded with github.com/BurntSushi/toml.
type Config struct {
	Author  AuthorConfig      `toml:"author"`
	Signing SigningConfig     `toml:"signing"`
	Remotes map[string]string `toml:"remotes"`
}

// AuthorConfig is the [author] table: identity used for new commits when
// AUTHOR_NAME/AUTHOR_EMAIL are unset.
type AuthorConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// SigningConfig is the [signing] table: an SSH private key path. It is
// stored and read back by WriteConfig/ReadConfig only; commit signing does
// not consult it (resolveSigningKeyPath looks at the explicit path,
// KNOT_SIGNING_KEY, and ~/.ssh).
type SigningConfig struct {
	KeyPath string `toml:"key_path"`
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitDir, "config.toml")
}

// ReadConfig reads .git/config.toml. A missing file yields an empty Config.
func (r *Repo) ReadConfig() (*Config, error) {
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Remotes: map[string]string{}}, nil
		}
		return nil, repoerr.New("read config", repoerr.Io, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, repoerr.New("read config", repoerr.Corrupt, err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = map[string]string{}
	}
	return &cfg, nil
}

// WriteConfig atomically persists cfg to .git/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return repoerr.New("write config", repoerr.Io, err)
	}

	tmp, err := os.CreateTemp(r.GitDir, ".config-tmp-*")
	if err != nil {
		return repoerr.New("write config", repoerr.Io, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return repoerr.New("write config", repoerr.Io, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return repoerr.New("write config", repoerr.Io, err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return repoerr.New("write config", repoerr.Io, err)
	}
	return nil
}

// SetRemote stores a named remote URL in repository config.
func (r *Repo) SetRemote(name, url string) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.Remotes[name] = url
	return r.WriteConfig(cfg)
}

// RemoteURL returns the configured URL for name, or "" if unset.
func (r *Repo) RemoteURL(name string) (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Remotes[name], nil
}
