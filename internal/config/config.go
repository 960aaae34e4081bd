package config

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
)

const (
	EnvPrefix  = "CBRSA"
	ConfigName = "cbrsa"
)

// Keys understood by Load. Every key can also be set through the environment
// as CBRSA_<KEY> with dots and dashes replaced by underscores.
const (
	ConfigFile           = "config"
	ExponentPolicy       = "exponent.policy"
	ExponentConventional = "exponent.conventional"
	LogBackend           = "log.backend"
	LogLevel             = "log.level"
	LogFormat            = "log.format"
	BatchWorkers         = "batch.workers"
	KeyringCapacity      = "keyring.capacity"
	KeyringTTL           = "keyring.ttl"
	MetricsAddress       = "metrics.address"
	OutputHex            = "output.hex"
	PrimesBits           = "primes.bits"
)

// SearchPaths are the directories searched for cbrsa.{yaml,json,toml} when
// no explicit config file is given.
var SearchPaths = []string{".", "/etc/cbrsa"}

type Config struct {
	ConfigFile string         `json:"config"`
	Exponent   ExponentConfig `json:"exponent"`
	Log        LogConfig      `json:"log"`
	Batch      BatchConfig    `json:"batch"`
	Keyring    KeyringConfig  `json:"keyring"`
	Metrics    MetricsConfig  `json:"metrics"`
	Output     OutputConfig   `json:"output"`
	Primes     PrimesConfig   `json:"primes"`
}

type ExponentConfig struct {
	Policy       string `json:"policy"`
	Conventional int64  `json:"conventional"`
}

type LogConfig struct {
	Backend string `json:"backend"`
	Level   string `json:"level"`
	Format  string `json:"format"`
}

type BatchConfig struct {
	Workers int `json:"workers"`
}

type KeyringConfig struct {
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
}

type MetricsConfig struct {
	Address string `json:"address"`
}

type OutputConfig struct {
	Hex bool `json:"hex"`
}

type PrimesConfig struct {
	Bits int `json:"bits"`
}

// NewFlagSet returns the global flags with their defaults. Parsing stops at
// the first non-flag argument so that subcommands keep their own flags.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("cbrsa-go", pflag.ContinueOnError)
	fs.SetInterspersed(false)

	fs.String(ConfigFile, "", "Path to a configuration file.")
	fs.String(ExponentPolicy, keys.PolicySmallest.String(), "Public exponent policy: smallest, random or conventional.")
	fs.Int64(ExponentConventional, keys.ConventionalE, "Preferred exponent for the conventional policy.")
	fs.String(LogBackend, logging.BackendSlog, "Logging backend: slog, zap or logrus.")
	fs.String(LogLevel, "info", "Log level: debug, info, warn or error.")
	fs.String(LogFormat, logging.FormatText, "Log format: text or json.")
	fs.Int(BatchWorkers, 0, "Goroutines used by batch operations; 0 means GOMAXPROCS.")
	fs.Int(KeyringCapacity, 128, "Key pairs held in memory before eviction.")
	fs.Duration(KeyringTTL, 0, "Expire stored key pairs after this duration; 0 disables expiry.")
	fs.String(MetricsAddress, "", "Serve Prometheus metrics on this address, e.g. :9090.")
	fs.Bool(OutputHex, false, "Print integers as 0x-prefixed hex.")
	fs.Int(PrimesBits, 512, "Bit length of randomly drawn primes.")
	return fs
}

// Load parses args into fs and merges, in increasing priority, the config
// file, the CBRSA_ environment and the flags set on the command line.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, decoderHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper) error {
	if explicit := v.GetString(ConfigFile); explicit != "" {
		path, err := SecurePath(explicit)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	for _, p := range SearchPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

func decoderHook(dc *mapstructure.DecoderConfig) {
	dc.TagName = "json"
	dc.ErrorUnused = true
}

// SecurePath validates that a file path doesn't escape the working directory.
func SecurePath(path string) (string, error) {
	clean := filepath.Clean(path)
	absPath, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	if _, err := keys.ParsePolicy(c.Exponent.Policy); err != nil {
		return fmt.Errorf("%s: %w", ExponentPolicy, err)
	}
	if c.Exponent.Conventional < 3 {
		return fmt.Errorf("%s: must be at least 3, got %d", ExponentConventional, c.Exponent.Conventional)
	}
	// phi is even for odd primes, so an even exponent is never coprime to it.
	if c.Exponent.Conventional%2 == 0 {
		return fmt.Errorf("%s: must be odd, got %d", ExponentConventional, c.Exponent.Conventional)
	}

	if !slices.Contains([]string{logging.BackendSlog, logging.BackendZap, logging.BackendLogrus}, strings.ToLower(c.Log.Backend)) {
		return fmt.Errorf("%s: unknown backend %q", LogBackend, c.Log.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: %w", LogLevel, err)
	}
	if !slices.Contains([]string{logging.FormatText, logging.FormatJSON}, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("%s: unknown format %q", LogFormat, c.Log.Format)
	}

	if c.Batch.Workers < 0 {
		return fmt.Errorf("%s: must not be negative", BatchWorkers)
	}
	if c.Keyring.Capacity < 0 {
		return fmt.Errorf("%s: must not be negative", KeyringCapacity)
	}
	if c.Keyring.TTL < 0 {
		return fmt.Errorf("%s: must not be negative", KeyringTTL)
	}
	if c.Primes.Bits < 2 {
		return fmt.Errorf("%s: must be at least 2, got %d", PrimesBits, c.Primes.Bits)
	}

	if c.Metrics.Address != "" && !validListenAddress(c.Metrics.Address) {
		return fmt.Errorf("%s: invalid listen address %q", MetricsAddress, c.Metrics.Address)
	}
	return nil
}

// validListenAddress accepts host:port and :port.
func validListenAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host != "" && !govalidator.IsHost(host) {
		return false
	}
	return govalidator.IsPort(port)
}

// ExponentSelector returns the selector configured by the exponent settings.
func (c *Config) ExponentSelector() (keys.ExponentSelector, error) {
	policy, err := keys.ParsePolicy(c.Exponent.Policy)
	if err != nil {
		return nil, err
	}
	if policy == keys.PolicyConventional {
		return keys.ConventionalExponent(big.NewInt(c.Exponent.Conventional)), nil
	}
	return policy.Selector(nil), nil
}

// Print logs every effective setting at debug level.
func (c *Config) Print(ctx context.Context, logger logging.Logger) {
	settings := []struct {
		key   string
		value any
	}{
		{ConfigFile, c.ConfigFile},
		{ExponentPolicy, c.Exponent.Policy},
		{ExponentConventional, c.Exponent.Conventional},
		{LogBackend, c.Log.Backend},
		{LogLevel, c.Log.Level},
		{LogFormat, c.Log.Format},
		{BatchWorkers, c.Batch.Workers},
		{KeyringCapacity, c.Keyring.Capacity},
		{KeyringTTL, c.Keyring.TTL.String()},
		{MetricsAddress, c.Metrics.Address},
		{OutputHex, c.Output.Hex},
		{PrimesBits, c.Primes.Bits},
	}
	for _, s := range settings {
		logger.Debug(ctx, "config", "key", s.key, "value", s.value)
	}
}
