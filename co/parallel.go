// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Parallel runs the works queued by cb on as many goroutines as CPUs.
// The returned channel is closed once all works are done.
func Parallel(cb func(queue chan<- func())) <-chan struct{} {
	var goes Goes
	queue := make(chan func(), runtime.NumCPU()*2)
	for range runtime.NumCPU() {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}
	cb(queue)
	close(queue)
	return goes.Done()
}
