/*
* Worker pool module
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package parallel runs index-addressed jobs on a fixed pool of goroutines.
package parallel

import (
	"context"
	"sync"
)

type workItem struct {
	index int
}

type workResult[T any] struct {
	index int
	value T
}

// Map evaluates fn(0) .. fn(n-1) on up to workers goroutines and returns the
// values by index. The calling goroutine is the only writer of the result
// slice and the only caller of onDone, which may be nil.
//
// ctx is checked before each job is dispatched. Once it is done no further
// jobs start; jobs already running finish and are recorded. done reports
// which indices ran, and the error is ctx.Err() if any index was skipped.
func Map[T any](ctx context.Context, n, workers int, fn func(i int) T, onDone func(i int, v T)) (results []T, done []bool, err error) {
	results = make([]T, n)
	done = make([]bool, n)
	if n == 0 {
		return results, done, nil
	}
	record := func(i int, v T) {
		results[i] = v
		done[i] = true
		if onDone != nil {
			onDone(i, v)
		}
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return results, done, err
			}
			record(i, fn(i))
		}
		return results, done, nil
	}

	workers = min(workers, n)
	workCh := make(chan workItem, workers)
	doneCh := make(chan workResult[T], workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				doneCh <- workResult[T]{index: item.index, value: fn(item.index)}
			}
		}()
	}

	next, inFlight := 0, 0
	for next < n || inFlight > 0 {
		for inFlight < workers && next < n {
			if ctx.Err() != nil {
				break
			}
			workCh <- workItem{index: next}
			next++
			inFlight++
		}
		if inFlight == 0 {
			break
		}
		r := <-doneCh
		inFlight--
		record(r.index, r.value)
		if ctx.Err() != nil && next < n {
			// Drain what is running, then stop.
			for ; inFlight > 0; inFlight-- {
				r := <-doneCh
				record(r.index, r.value)
			}
			break
		}
	}
	close(workCh)
	wg.Wait()

	if next < n {
		return results, done, ctx.Err()
	}
	return results, done, nil
}
