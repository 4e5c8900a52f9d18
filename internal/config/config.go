// Package config holds the configuration of the otc tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/library"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/project"
)

// EnvPrefix is the prefix of environment overrides, e.g. OTC_STRICT=true.
const EnvPrefix = "OTC"

// Config is the tool configuration.
type Config struct {
	// Libraries are directories scanned for component definitions.
	Libraries []string `mapstructure:"libraries" validate:"dive,required"`
	// LocaleOrder selects the default value of new components.
	LocaleOrder []string `mapstructure:"locale_order" validate:"dive,required"`
	// NormOrder selects the name prefix of new components.
	NormOrder []string `mapstructure:"norm_order" validate:"dive,required"`
	// Strict makes the erc command fail on active error messages.
	Strict bool `mapstructure:"strict"`
	// IgnoreFile is the default ERC ignore list.
	IgnoreFile string `mapstructure:"ignore_file"`
}

// Defaults returns the configuration used when no file is found.
func Defaults() Config {
	return Config{
		LocaleOrder: []string{library.DefaultLocale},
	}
}

var validate = validator.New()

// Validate checks the configuration for empty entries.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config: %s: empty entry", strings.ToLower(verrs[0].Field()))
		}
		return fmt.Errorf("config: %w", err)
	}
	if len(c.LocaleOrder) == 0 {
		return fmt.Errorf("config: locale_order must not be empty")
	}
	return nil
}

// Settings returns the project settings derived from the configuration.
func (c Config) Settings() project.Settings {
	return project.Settings{
		LocaleOrder: append([]string(nil), c.LocaleOrder...),
		NormOrder:   append([]string(nil), c.NormOrder...),
	}
}

// SetDefaults registers the defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("libraries", d.Libraries)
	v.SetDefault("locale_order", d.LocaleOrder)
	v.SetDefault("norm_order", d.NormOrder)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("ignore_file", d.IgnoreFile)
}

// Load reads the configuration into v and decodes it.
//
// Lookup order when file is empty:
//  1. ./otc.yaml
//  2. ~/.config/otc/config.yaml
//
// A missing file is not an error; an explicit file that cannot be read is.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case file != "":
		v.SetConfigFile(file)
	default:
		if _, err := os.Stat("otc.yaml"); err == nil {
			v.SetConfigFile("otc.yaml")
		} else {
			if home, err := os.UserHomeDir(); err == nil {
				v.AddConfigPath(filepath.Join(home, ".config", "otc"))
			}
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
