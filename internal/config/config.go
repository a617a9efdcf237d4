package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Paths    PathsConfig  `mapstructure:"paths"`
	Tensor   TensorConfig `mapstructure:"tensor"`
}

type PathsConfig struct {
	NamesFile  string `mapstructure:"names_file"`
	TensorFile string `mapstructure:"tensor_file"`
}

type TensorConfig struct {
	DType    string `mapstructure:"dtype"`
	Policy   string `mapstructure:"policy"`
	Rounding string `mapstructure:"rounding"`
	// Seed fixes random fills when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps command line flags to their config keys.
var flagKeys = map[string]string{
	"log-level":         "log_level",
	"paths-names-file":  "paths.names_file",
	"paths-tensor-file": "paths.tensor_file",
	"tensor-dtype":      "tensor.dtype",
	"tensor-policy":     "tensor.policy",
	"tensor-rounding":   "tensor.rounding",
	"tensor-seed":       "tensor.seed",
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			NamesFile:  "data/names.txt",
			TensorFile: "tensors.safetensors",
		},
		Tensor: TensorConfig{
			DType:    DTypeFloat64,
			Policy:   PolicyTruncate,
			Rounding: RoundingTruncate,
			Seed:     0,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	fs.String("paths-names-file", defaults.Paths.NamesFile, "Text file with one name per line")
	fs.String("paths-tensor-file", defaults.Paths.TensorFile, "Safetensors file used by matmul and inspect")
	fs.String("tensor-dtype", defaults.Tensor.DType, "Element type: float32|float64|int32|int64")
	fs.String("tensor-policy", defaults.Tensor.Policy, "Element-wise size policy: truncate|strict")
	fs.String("tensor-rounding", defaults.Tensor.Rounding, "Random draw to integer conversion: truncate|nearest")
	fs.Uint64("tensor-seed", defaults.Tensor.Seed, "Seed for random fills (0 = fresh entropy per call)")
}

// Load resolves the configuration. Precedence, highest first: explicitly set
// flags, MICROTENSOR_* environment variables, the config file, flag defaults
// and finally opts.Defaults. The result is normalized.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("MICROTENSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("microtensor")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg.Normalize()
}

// Normalize canonicalizes the enumerated fields and rejects unknown values.
func (c Config) Normalize() (Config, error) {
	var err error

	if c.Tensor.DType, err = NormalizeDType(c.Tensor.DType); err != nil {
		return Config{}, err
	}

	if c.Tensor.Policy, err = NormalizePolicy(c.Tensor.Policy); err != nil {
		return Config{}, err
	}

	if c.Tensor.Rounding, err = NormalizeRounding(c.Tensor.Rounding); err != nil {
		return Config{}, err
	}

	if _, err = ParseLogLevel(c.LogLevel); err != nil {
		return Config{}, err
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	return c, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.names_file", c.Paths.NamesFile)
	v.SetDefault("paths.tensor_file", c.Paths.TensorFile)
	v.SetDefault("tensor.dtype", c.Tensor.DType)
	v.SetDefault("tensor.policy", c.Tensor.Policy)
	v.SetDefault("tensor.rounding", c.Tensor.Rounding)
	v.SetDefault("tensor.seed", c.Tensor.Seed)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("flag %q: %w", name, err)
		}
	}

	return nil
}
