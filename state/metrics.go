// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/incensechain/bic/metrics"

var (
	metricCommitCount      = metrics.LazyLoadCounterVec("state_commit_count", []string{"layer", "result"})
	metricCommitEntries    = metrics.LazyLoadCounter("state_commit_entries")
	metricCommitDurationMS = metrics.LazyLoadHistogram("state_commit_duration_ms", metrics.BucketCommitMS)
	metricCacheHitRate     = metrics.LazyLoadGauge("state_cache_hit_rate_permille")
)
