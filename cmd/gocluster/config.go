/*
 * config.go, part of gocluster.
 *
 * Copyright 2024 The gocluster authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rmera/gocluster/collision"
	"github.com/rmera/gocluster/refine"
	"github.com/rmera/gocluster/xover"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GOCLUSTER"

// XoverConfig sets up the crossover operator.
type XoverConfig struct {
	Cut         string  `mapstructure:"cut" yaml:"cut"`
	Mode        string  `mapstructure:"mode" yaml:"mode"`
	MaxAttempts int     `mapstructure:"max_attempts" yaml:"max_attempts"`
	GaussWidth  float64 `mapstructure:"gauss_width" yaml:"gauss_width"`
	Rotate      bool    `mapstructure:"rotate" yaml:"rotate"`
	PostCheck   bool    `mapstructure:"post_check" yaml:"post_check"`
	Refine      bool    `mapstructure:"refine" yaml:"refine"`
	Seed        int64   `mapstructure:"seed" yaml:"seed"`
	Workers     int     `mapstructure:"workers" yaml:"workers"`
}

// Config is everything the commands can be told through the config file
// or GOCLUSTER_* variables.
type Config struct {
	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
	Engine   string        `mapstructure:"engine" yaml:"engine"`
	Blow     float64       `mapstructure:"blow" yaml:"blow"`
	BlowDiss float64       `mapstructure:"blow_diss" yaml:"blow_diss"`
	Cutoff   float64       `mapstructure:"cutoff" yaml:"cutoff"`
	Xover    XoverConfig   `mapstructure:"xover" yaml:"xover"`
	Refine   refine.Config `mapstructure:"refine" yaml:"refine"`
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Engine:   "grid",
		Blow:     collision.DefaultBlow,
		BlowDiss: collision.DefaultBlowDiss,
		Cutoff:   collision.DefaultOptions().Cutoff(),
		Xover: XoverConfig{
			Cut:         "plane-z",
			Mode:        xover.Gauss.String(),
			MaxAttempts: xover.DefaultMaxAttempts,
			GaussWidth:  1,
			Rotate:      true,
			PostCheck:   true,
			Seed:        1,
		},
		Refine: refine.DefaultConfig(),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// LoadConfig returns the default configuration, overridden by the YAML file
// path, if not empty, and then by the environment.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	//The defaults are loaded as a config, so viper knows every key and
	//AutomaticEnv can override all of them.
	def, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(def)); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the names in the configuration are known and the
// numbers make sense.
func (C *Config) Validate() error {
	if _, err := collision.New(C.Engine, nil); err != nil {
		return err
	}
	if _, err := xover.ParseCut(C.Xover.Cut); err != nil {
		return err
	}
	if _, err := xover.ParseMode(C.Xover.Mode); err != nil {
		return err
	}
	if C.Blow <= 0 || C.BlowDiss <= 0 {
		return fmt.Errorf("blow factors must be positive, got %g and %g", C.Blow, C.BlowDiss)
	}
	if C.Xover.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", C.Xover.MaxAttempts)
	}
	if C.Refine.FracMinCut > C.Refine.FracMaxCut {
		return fmt.Errorf("refine: frac_min_cut %g is larger than frac_max_cut %g", C.Refine.FracMinCut, C.Refine.FracMaxCut)
	}
	return nil
}

// NewLogger builds a zap logger writing to stderr. "debug" gives a console,
// development, logger. Unknown levels are an error.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
