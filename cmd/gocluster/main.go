/*
 * main.go, part of gocluster.
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

// gocluster runs the variation operators of the cluster structure search on
// XYZ files: crossovers, clash checks and radial distributions.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the persistent flags set up to the subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *Config
	logger *zap.Logger
	props  *cluster.Properties
}

func newRootCommand() *cobra.Command {
	a := &app{props: cluster.DefaultProperties()}
	cmd := &cobra.Command{
		Use:   "gocluster",
		Short: "Crossover and clash detection for atomic and molecular clusters",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the config")
	cmd.AddCommand(
		newXoverCommand(a),
		newClashCommand(a),
		newRadialCommand(a),
		newConfigCommand(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg = cfg
	//one run ID per invocation
	a.logger = logger.With(zap.String("run", uuid.NewString()))
	a.logger.Debug("configuration loaded", zap.String("file", a.configPath), zap.String("command", cmd.Name()))
	return nil
}

// engine returns the configured collision engine.
func (a *app) engine(name string) (collision.Engine, error) {
	O := collision.DefaultOptions()
	O.Cutoff(a.cfg.Cutoff)
	O.Logger(a.logger)
	return collision.New(name, O)
}

// readStructure reads an XYZ file and splits it into fragments by bond connectivity.
func (a *app) readStructure(name string) (*cluster.Structure, error) {
	coords, symbols, _, err := cluster.XYZFileRead(name)
	if err != nil {
		return nil, err
	}
	bonds, err := cluster.AssignBonds(coords, symbols, a.props)
	if err != nil {
		return nil, err
	}
	S, err := cluster.StructureFromCartesian(coords, symbols, bonds, a.props, nil)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("read structure", zap.String("file", name), zap.Int("atoms", S.NAtoms()),
		zap.Int("fragments", S.NFragments()), zap.Int("bonds", bonds.NBonds()))
	return S, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gocluster:", err)
		os.Exit(1)
	}
}
