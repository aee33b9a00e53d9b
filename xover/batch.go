/*
 * batch.go, part of gocluster.
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

package xover

import (
	"context"
	"math/rand"
	"runtime"

	cluster "github.com/rmera/gocluster"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Pair is a couple of parents, and the ID for their children.
type Pair struct {
	Mother, Father *cluster.Structure
	ChildID        int64
}

// BatchStats summarizes the results of a batch.
type BatchStats struct {
	Successes int
	Failures  map[Failure]int
	//mean and standard deviation of the father cuts of the successful crossovers
	CutMean, CutStd float64
	SwapMean        float64
}

// Batch runs the crossovers for all pairs using up to workers goroutines (runtime.NumCPU()
// if workers < 1). Worker w takes the pairs w, w+workers, w+2*workers..., with its own
// random source seeded with seed+w, so the results depend only on seed and workers.
// Results are in the order of pairs. If ctx is canceled, the crossovers not yet started
// are skipped, their results are nil, and ctx's error is returned.
func Batch(ctx context.Context, X *Operator, pairs []Pair, workers int, seed int64) ([]*Result, BatchStats, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	results := make([]*Result, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		op := X.WithRand(rand.New(rand.NewSource(seed + int64(w))))
		w := w
		g.Go(func() error {
			for i := w; i < len(pairs); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = op.Run(pairs[i].Mother, pairs[i].Father, pairs[i].ChildID)
			}
			return nil
		})
	}
	err := g.Wait()
	st := Stats(results)
	X.o.logger.Info("crossover batch", zap.Int("pairs", len(pairs)), zap.Int("workers", workers),
		zap.Int("successes", st.Successes), zap.Float64("cutmean", st.CutMean))
	return results, st, err
}

// Stats summarizes the given results. Nil results are ignored.
func Stats(results []*Result) BatchStats {
	st := BatchStats{Failures: make(map[Failure]int)}
	var cuts, swaps []float64
	for _, r := range results {
		if r == nil {
			continue
		}
		if !r.OK() {
			st.Failures[r.Failure]++
			continue
		}
		st.Successes++
		cuts = append(cuts, r.FatherCut)
		swaps = append(swaps, float64(r.Swaps))
	}
	switch len(cuts) {
	case 0:
	case 1:
		st.CutMean = cuts[0]
		st.SwapMean = swaps[0]
	default:
		st.CutMean, st.CutStd = stat.MeanStdDev(cuts, nil)
		st.SwapMean = stat.Mean(swaps, nil)
	}
	return st
}
