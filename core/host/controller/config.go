package controller

import (
	"os"
	"path/filepath"
	"time"

	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/host"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const (
	// ConfigName is the name of the configuration file in the config folder.
	ConfigName = "config.yaml"

	// DefaultPrefix is the human-readable part of the addresses when none is
	// configured.
	DefaultPrefix = "oracle"
)

// Config is the configuration of the chain of the node. It is written once by
// the init command.
type Config struct {
	ChainID     string              `yaml:"chain_id"`
	Prefix      string              `yaml:"bech32_prefix"`
	BlockTime   time.Duration       `yaml:"block_time"`
	GenesisTime execution.Timestamp `yaml:"genesis_time"`
}

// DefaultConfig returns the configuration used when the folder has not been
// initialized.
func DefaultConfig() Config {
	return Config{
		ChainID:     host.DefaultChainID,
		Prefix:      DefaultPrefix,
		BlockTime:   host.DefaultBlockTime,
		GenesisTime: host.DefaultGenesis,
	}
}

// Validate returns an error if a field of the configuration is not usable.
func (c Config) Validate() error {
	if c.ChainID == "" {
		return xerrors.New("chain id is empty")
	}

	if c.Prefix == "" {
		return xerrors.New("bech32 prefix is empty")
	}

	if c.BlockTime <= 0 {
		return xerrors.Errorf("block time must be positive: %v", c.BlockTime)
	}

	return nil
}

// LoadConfig reads the configuration of the folder. It returns the default
// configuration and false if the file does not exist.
func LoadConfig(dir string) (Config, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigName))
	if os.IsNotExist(err) {
		return DefaultConfig(), false, nil
	}

	if err != nil {
		return Config{}, false, xerrors.Errorf("failed to read config: %v", err)
	}

	cfg := DefaultConfig()

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, false, xerrors.Errorf("failed to decode config: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, false, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, true, nil
}

// WriteConfig writes the configuration in the folder. It fails if the file
// already exists.
func WriteConfig(dir string, cfg Config) error {
	err := cfg.Validate()
	if err != nil {
		return xerrors.Errorf("invalid config: %v", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return xerrors.Errorf("failed to encode config: %v", err)
	}

	path := filepath.Join(dir, ConfigName)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return xerrors.Errorf("config '%s' already exists", path)
	}

	if err != nil {
		return xerrors.Errorf("failed to create config: %v", err)
	}

	defer file.Close()

	_, err = file.Write(data)
	if err != nil {
		return xerrors.Errorf("failed to write config: %v", err)
	}

	return nil
}
