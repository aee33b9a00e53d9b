/*
 * radial.go, part of gocluster.
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
	"image/color"
	"math"
	"path/filepath"
	"strings"

	cluster "github.com/rmera/gocluster"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RadialDistances returns the distance of each fragment's COM to the
// center of mass of the whole structure.
func RadialDistances(S *cluster.Structure, props *cluster.Properties) ([]float64, error) {
	com, err := S.COM(props)
	if err != nil {
		return nil, err
	}
	ret := make([]float64, 0, S.NFragments())
	for _, f := range S.Fragments {
		c := f.COM()
		var d2 float64
		for k := range c {
			d2 += (c[k] - com[k]) * (c[k] - com[k])
		}
		ret = append(ret, math.Sqrt(d2))
	}
	return ret, nil
}

var histColors = []color.RGBA{
	{R: 196, G: 40, B: 40, A: 160},
	{R: 40, G: 80, B: 196, A: 160},
	{R: 40, G: 160, B: 60, A: 160},
	{R: 200, G: 140, B: 20, A: 160},
}

// RadialPlot plots, for each structure, a histogram of its radial distances
// with the given number of bins, and saves it to filename. The format is
// taken from the extension.
func RadialPlot(names []string, dists [][]float64, bins int, filename string) error {
	p := plot.New()
	p.Title.Text = "Radial distribution of fragments"
	p.X.Label.Text = "Distance to the center of mass (A)"
	p.Y.Label.Text = "Fragments"
	p.Add(plotter.NewGrid())
	for i, d := range dists {
		if len(d) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(d), bins)
		if err != nil {
			return fmt.Errorf("RadialPlot: %s: %w", names[i], err)
		}
		h.FillColor = histColors[i%len(histColors)]
		p.Add(h)
		p.Legend.Add(names[i], h)
	}
	p.Legend.Top = true
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

func newRadialCommand(a *app) *cobra.Command {
	var out string
	var bins int
	cmd := &cobra.Command{
		Use:   "radial FILE.xyz...",
		Short: "Plot the radial distribution of the fragments of one or more clusters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(args))
			dists := make([][]float64, 0, len(args))
			for _, v := range args {
				S, err := a.readStructure(v)
				if err != nil {
					return err
				}
				d, err := RadialDistances(S, a.props)
				if err != nil {
					return err
				}
				name := strings.TrimSuffix(filepath.Base(v), filepath.Ext(v))
				mean, std := stat.MeanStdDev(d, nil)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fragments, radial distance %.3f +- %.3f\n", name, len(d), mean, std)
				names = append(names, name)
				dists = append(dists, d)
			}
			if out == "" {
				return nil
			}
			if err := RadialPlot(names, dists, bins, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "radial.png", "plot file, nothing is plotted if empty")
	cmd.Flags().IntVar(&bins, "bins", 10, "number of bins")
	return cmd
}
