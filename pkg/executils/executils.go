package executils

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// ParallelExec runs fn over vals. Below parallelThreshold it stays on the
// calling goroutine; above it the slice is claimed in chunks of chunkSize
// by one worker per CPU.
func ParallelExec[T any](vals []T, parallelThreshold, chunkSize uint64, fn func(T)) {
	if uint64(len(vals)) < parallelThreshold {
		for _, v := range vals {
			fn(v)
		}
		return
	}

	cursor := atomic.NewUint64(0)
	end := uint64(len(vals))

	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				n := cursor.Add(chunkSize)
				if n >= end+chunkSize {
					return
				}

				for i := n - chunkSize; i < n && i < end; i++ {
					fn(vals[i])
				}
			}
		}()
	}
	wg.Wait()
}
