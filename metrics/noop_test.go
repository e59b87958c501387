// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	prev := metrics
	defer func() { metrics = prev }()
	metrics = defaultNoopMetrics()

	require.Nil(t, HTTPHandler())

	require.NotPanics(t, func() {
		Counter("count1").Add(1)
		CounterVec("countVec1", []string{"zeroOrOne"}).
			AddWithLabel(1, map[string]string{"thisIsNonsense": "butDoesntBreak"})
		Histogram("hist1", nil).Observe(1)
		Gauge("gauge1").Set(2)
	})
}
