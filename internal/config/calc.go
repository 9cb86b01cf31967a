package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CalcConfig holds the tunables of the distribution calculator.
type CalcConfig struct {
	// MinYear and MaxYear bound the accepted rent-record years.
	MinYear int `mapstructure:"minYear"`
	MaxYear int `mapstructure:"maxYear"`

	// PercentTolerance is the allowed deviation of a property's
	// participation sum from 100 before a warning is logged.
	PercentTolerance float64 `mapstructure:"percentTolerance"`

	// WithholdingThreshold and WithholdingRate drive the flat
	// withholding estimate. Amounts at or below the threshold are exempt.
	WithholdingThreshold float64 `mapstructure:"withholdingThreshold"`
	WithholdingRate      float64 `mapstructure:"withholdingRate"`
}

func DefaultCalcConfig() CalcConfig {
	return CalcConfig{
		MinYear:              2020,
		MaxYear:              2060,
		PercentTolerance:     0.01,
		WithholdingThreshold: 1903.98,
		WithholdingRate:      0.15,
	}
}

// CalcConfigHolder serves the current calculator config and hot-reloads it
// when the backing file changes.
type CalcConfigHolder struct {
	current atomic.Value // holds CalcConfig
}

func NewCalcConfigHolder() (*CalcConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("calc")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/rentshare")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RENTSHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCalcConfig()
	v.SetDefault("calc.minYear", defaults.MinYear)
	v.SetDefault("calc.maxYear", defaults.MaxYear)
	v.SetDefault("calc.percentTolerance", defaults.PercentTolerance)
	v.SetDefault("calc.withholdingThreshold", defaults.WithholdingThreshold)
	v.SetDefault("calc.withholdingRate", defaults.WithholdingRate)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	var cfg CalcConfig
	if err := v.UnmarshalKey("calc", &cfg); err != nil {
		return nil, err
	}
	if err := validateCalcConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CalcConfigHolder{}
	holder.current.Store(cfg)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated CalcConfig
			if err := v.UnmarshalKey("calc", &updated); err != nil {
				log.Printf("[calc-config] reload failed: %v", err)
				return
			}
			if err := validateCalcConfig(updated); err != nil {
				log.Printf("[calc-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[calc-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *CalcConfigHolder) Get() CalcConfig {
	if v, ok := h.current.Load().(CalcConfig); ok {
		return v
	}
	return DefaultCalcConfig()
}

func validateCalcConfig(cfg CalcConfig) error {
	if cfg.MinYear <= 0 || cfg.MaxYear < cfg.MinYear {
		return errors.New("calc.minYear/maxYear out of order")
	}
	if cfg.PercentTolerance < 0 {
		return errors.New("calc.percentTolerance cannot be negative")
	}
	if cfg.WithholdingRate < 0 || cfg.WithholdingRate > 1 {
		return errors.New("calc.withholdingRate must be within [0, 1]")
	}
	return nil
}
