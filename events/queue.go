// Copyright 2018 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// based on golang.org/x/exp/shiny:
// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"sync"
	"sync/atomic"
)

// Queue is a lock-free FIFO freelist-based queue. Any number of
// goroutines can [Queue.Send] while one goroutine removes items
// with [Queue.Next]. It must be initialized using [Queue.Init] before use.
// It is based on https://github.com/fyne-io/fyne/blob/master/internal/async/queue_canvasobject.go
type Queue[T any] struct {
	head atomic.Pointer[queueItem[T]]
	tail atomic.Pointer[queueItem[T]]
	len  atomic.Uint64
	pool sync.Pool
}

type queueItem[T any] struct {
	next atomic.Pointer[queueItem[T]]
	v    T
}

// Init initializes the queue.
func (q *Queue[T]) Init() {
	head := &queueItem[T]{}
	q.head.Store(head)
	q.tail.Store(head)
	q.pool.New = func() any { return &queueItem[T]{} }
}

// Next removes and returns the next item in the queue.
// It returns false if the queue is empty.
func (q *Queue[T]) Next() (T, bool) {
	var first, last, firstnext *queueItem[T]
	for {
		first = q.head.Load()
		last = q.tail.Load()
		firstnext = first.next.Load()
		if first == q.head.Load() {
			if first == last {
				if firstnext == nil {
					var zero T
					return zero, false
				}

				q.tail.CompareAndSwap(last, firstnext)
			} else {
				v := firstnext.v
				if q.head.CompareAndSwap(first, firstnext) {
					q.len.Add(^uint64(0))
					var zero T
					first.v = zero
					q.pool.Put(first)
					return v, true
				}
			}
		}
	}
}

// Send adds an item to the end of the queue.
func (q *Queue[T]) Send(v T) {
	i := q.pool.Get().(*queueItem[T])
	i.next.Store(nil)
	i.v = v

	var last, lastnext *queueItem[T]
	for {
		last = q.tail.Load()
		lastnext = last.next.Load()
		if q.tail.Load() == last {
			if lastnext == nil {
				if last.next.CompareAndSwap(lastnext, i) {
					q.tail.CompareAndSwap(last, i)
					q.len.Add(1)
					return
				}
			} else {
				q.tail.CompareAndSwap(last, lastnext)
			}
		}
	}
}

// Len returns the length of the queue.
func (q *Queue[T]) Len() uint64 {
	return q.len.Load()
}
