/*
 * metrics.go, part of gocluster.
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
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsPrefix = "gocluster_xover_"

// Metrics are the Prometheus collectors crossovers are recorded in.
// They can be shared by any number of operators and goroutines.
type Metrics struct {
	total    *prometheus.CounterVec
	swaps    prometheus.Histogram
	attempts prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg, or with the
// default registerer if reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	M := &Metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "total",
			Help: "Crossovers performed, by cut primitive and outcome.",
		}, []string{"cut", "outcome"}),
		swaps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricsPrefix + "repair_swaps",
			Help:    "Pose swaps done by the stoichiometry repair of successful crossovers.",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricsPrefix + "cut_attempts",
			Help:    "Father cuts sampled per crossover.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		}),
	}
	for _, c := range []prometheus.Collector{M.total, M.swaps, M.attempts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return M, nil
}

// Outcome returns the counter for crossovers with the cut named cut and the failure f.
func (M *Metrics) Outcome(cut string, f Failure) prometheus.Counter {
	return M.total.WithLabelValues(cut, strings.ReplaceAll(f.String(), " ", "_"))
}

func (M *Metrics) observe(cut string, R *Result) {
	if M == nil {
		return
	}
	M.Outcome(cut, R.Failure).Inc()
	M.attempts.Observe(float64(R.Attempts))
	if R.OK() {
		M.swaps.Observe(float64(R.Swaps))
	}
}
