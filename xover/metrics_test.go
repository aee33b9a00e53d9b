/*
 * metrics_test.go, part of gocluster.
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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/internal/testclusters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(Te *testing.T) {
	reg := prometheus.NewRegistry()
	M, err := NewMetrics(reg)
	require.NoError(Te, err)
	_, err = NewMetrics(reg)
	assert.Error(Te, err, "collectors registered twice")

	O := DefaultOptions()
	O.Metrics(M)
	X := New(Plane{Axis: 2}, nil, O)
	p := pairs(12)
	_, st, err := Batch(context.Background(), X, p, 3, 5)
	require.NoError(Te, err)
	assert.Equal(Te, float64(st.Successes), testutil.ToFloat64(M.Outcome("plane-z", None)))
	for f, n := range st.Failures {
		assert.Equal(Te, float64(n), testutil.ToFloat64(M.Outcome("plane-z", f)), f.String())
	}

	//a deterministic failure is counted under its own label
	props := cluster.DefaultProperties()
	s := testclusters.Argon(rand.New(rand.NewSource(1)), props, 5)
	Y := New(Sphere{}, rand.New(rand.NewSource(1)), O)
	Y.o.mode = Zero
	R := Y.Run(s.Copy(), s, 1)
	require.Equal(Te, NoCut, R.Failure)
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.Outcome("sphere", NoCut)))
	mf, err := reg.Gather()
	require.NoError(Te, err)
	assert.Len(Te, mf, 3)
}
