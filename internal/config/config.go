package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appDirName = "boost-installer"

// Config holds installer settings read from config.yaml. The root path is
// kept separately in the PathStore.
type Config struct {
	Theme      string `yaml:"theme"`
	LogLevel   string `yaml:"log_level"`
	ModulePath string `yaml:"module_path"`
}

// ExecutableFunc is the signature of os.Executable, injectable for tests.
type ExecutableFunc func() (string, error)

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
	}
}

// Load reads config.yaml from configDir, or from the XDG config home when
// configDir is empty.
func Load(configDir string) (Config, error) {
	return LoadFrom(filepath.Join(ResolveConfigDir(configDir), "config.yaml"))
}

// LoadFrom reads settings from configPath. A missing file yields defaults;
// a malformed one yields defaults and the parse error.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// ResolveModulePath returns the auxiliary module source path.
func (c *Config) ResolveModulePath() string {
	return c.ResolveModulePathWith(os.Executable)
}

// ResolveModulePathWith returns module_path with "~" expanded when set, and
// otherwise boost_v11_plus.py next to the running executable.
func (c *Config) ResolveModulePathWith(executable ExecutableFunc) string {
	if c.ModulePath != "" {
		return ExpandHome(c.ModulePath)
	}
	exe, err := executable()
	if err != nil {
		return "boost_v11_plus.py"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "boost_v11_plus.py")
}

// ResolveConfigDir returns configDir, or $XDG_CONFIG_HOME/boost-installer.
func ResolveConfigDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Join(xdg.ConfigHome, appDirName)
}

// ResolveStateDir returns where logs and the instance lock live: configDir
// when given, otherwise $XDG_STATE_HOME/boost-installer.
func ResolveStateDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Join(xdg.StateHome, appDirName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
