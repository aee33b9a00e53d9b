/*
 * commands.go, part of gocluster.
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
	"fmt"
	"math/rand"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/checkpoint"
	"github.com/rmera/gocluster/collision"
	"github.com/rmera/gocluster/refine"
	"github.com/rmera/gocluster/xover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type xoverFlags struct {
	mother, father string
	out            string
	checkpoint     string
	cut, mode      string
	repeat         int
	metrics        string
}

func newXoverCommand(a *app) *cobra.Command {
	f := &xoverFlags{}
	cmd := &cobra.Command{
		Use:   "xover",
		Short: "Cross two parent clusters over, writing the children as XYZ files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runXover(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.mother, "mother", "", "XYZ file of the mother")
	fl.StringVar(&f.father, "father", "", "XYZ file of the father")
	fl.StringVarP(&f.out, "out", "o", "child", "prefix of the output files")
	fl.StringVar(&f.checkpoint, "checkpoint", "", "also save the children to this checkpoint file")
	fl.StringVar(&f.cut, "cut", "", "cut primitive (plane-x, plane-y, plane-z, sphere, sphere-fixed), overrides the config")
	fl.StringVar(&f.mode, "mode", "", "cut sampling mode, overrides the config")
	fl.IntVarP(&f.repeat, "repeat", "n", 1, "number of crossovers to run, the first successful one is written")
	fl.StringVar(&f.metrics, "metrics", "", "write the crossover metrics to this file, in the Prometheus text format")
	cmd.MarkFlagRequired("mother")
	cmd.MarkFlagRequired("father")
	return cmd
}

// operator builds the crossover operator from the configuration and the overrides.
func (a *app) operator(cutName, modeName string, M *xover.Metrics) (*xover.Operator, error) {
	C := a.cfg.Xover
	if cutName == "" {
		cutName = C.Cut
	}
	if modeName == "" {
		modeName = C.Mode
	}
	cut, err := xover.ParseCut(cutName)
	if err != nil {
		return nil, err
	}
	mode, err := xover.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	O := xover.DefaultOptions()
	O.MaxAttempts(C.MaxAttempts)
	O.Mode(mode)
	O.GaussWidth(C.GaussWidth)
	O.Rotate(C.Rotate)
	O.Properties(a.props)
	O.Blow(a.cfg.Blow)
	O.Logger(a.logger)
	O.Metrics(M)
	if C.PostCheck || C.Refine {
		E, err := a.engine(a.cfg.Engine)
		if err != nil {
			return nil, err
		}
		if C.PostCheck {
			O.PostCheck(E)
		}
		if C.Refine {
			R := refine.New(a.cfg.Refine, E, nil)
			R.Properties(a.props)
			R.Logger(a.logger)
			O.Refiner(R)
		}
	}
	return xover.New(cut, rand.New(rand.NewSource(C.Seed)), O), nil
}

func (a *app) runXover(cmd *cobra.Command, f *xoverFlags) error {
	mother, err := a.readStructure(f.mother)
	if err != nil {
		return err
	}
	father, err := a.readStructure(f.father)
	if err != nil {
		return err
	}
	mother.ID, father.ID = 0, 1
	var M *xover.Metrics
	reg := prometheus.NewRegistry()
	if f.metrics != "" {
		if M, err = xover.NewMetrics(reg); err != nil {
			return err
		}
	}
	X, err := a.operator(f.cut, f.mode, M)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	var res *xover.Result
	if f.repeat <= 1 {
		res = X.Run(mother, father, 2)
	} else {
		pairs := make([]xover.Pair, f.repeat)
		for i := range pairs {
			pairs[i] = xover.Pair{Mother: mother, Father: father, ChildID: int64(i + 2)}
		}
		results, st, err := xover.Batch(cmd.Context(), X, pairs, a.cfg.Xover.Workers, a.cfg.Xover.Seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d of %d crossovers succeeded, father cut %.3f +- %.3f, %.2f swaps on average\n",
			st.Successes, len(pairs), st.CutMean, st.CutStd, st.SwapMean)
		printFailures(cmd, st.Failures)
		for _, r := range results {
			if r.OK() {
				res = r
				break
			}
		}
		if res == nil {
			res = results[0]
		}
	}
	if f.metrics != "" {
		if err := prometheus.WriteToTextfile(f.metrics, reg); err != nil {
			return err
		}
		a.logger.Info("metrics written", zap.String("file", f.metrics))
	}
	if !res.OK() {
		return fmt.Errorf("crossover failed: %s", res.Failure)
	}
	fmt.Fprintf(out, "%s cut: father %.4f, mother %.4f, %d attempts, %d swaps, %d fragments exchanged\n",
		X.Cut().Name(), res.FatherCut, res.MotherCut, res.Attempts, res.Swaps, len(res.Exchanged1))
	if a.cfg.Xover.Refine {
		for i, r := range res.Refinement {
			fmt.Fprintf(out, "child %d refinement: %s, inflation %.3f\n", i+1, r.State, r.Inflation)
		}
	}
	for i, c := range []*cluster.Structure{res.Child1, res.Child2} {
		name := fmt.Sprintf("%s_%d.xyz", f.out, i+1)
		comment := fmt.Sprintf("child %d of %d and %d", c.ID, c.MotherID, c.FatherID)
		if err := cluster.XYZFileWrite(name, c, comment); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", name)
	}
	if f.checkpoint != "" {
		if err := checkpoint.Save(f.checkpoint, res.Child1, res.Child2); err != nil {
			return err
		}
		a.logger.Info("checkpoint saved", zap.String("file", f.checkpoint))
	}
	return nil
}

func printFailures(cmd *cobra.Command, failures map[xover.Failure]int) {
	keys := make([]xover.Failure, 0, len(failures))
	for k := range failures {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", k, failures[k])
	}
}

func newClashCommand(a *app) *cobra.Command {
	var engine string
	var blow float64
	cmd := &cobra.Command{
		Use:   "clash FILE.xyz",
		Short: "Print the clashes of a cluster, and whether it is dissociated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if engine == "" {
				engine = a.cfg.Engine
			}
			if blow <= 0 {
				blow = a.cfg.Blow
			}
			E, err := a.engine(engine)
			if err != nil {
				return err
			}
			S, err := a.readStructure(args[0])
			if err != nil {
				return err
			}
			R, err := collision.Check(E, S, a.props, blow)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s engine, blow %.2f, %d fragments\n", E.Name(), blow, S.NFragments())
			fmt.Fprintln(out, R.String())
			C := S.Cartesian()
			radii, err := C.Radii(a.props)
			if err != nil {
				return err
			}
			if collision.Dissociated(C.Coords, radii, a.cfg.BlowDiss, R) {
				fmt.Fprintln(out, "dissociated")
			} else {
				fmt.Fprintln(out, "bound")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "collision engine (grid or pairwise), overrides the config")
	cmd.Flags().Float64VarP(&blow, "blow", "b", 0, "blow factor for the radii, overrides the config")
	return cmd
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
