// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	var q Queue[int]
	q.Init()
	_, ok := q.Next()
	assert.False(t, ok)
	for i := 0; i < 5; i++ {
		q.Send(i)
	}
	assert.Equal(t, uint64(5), q.Len())
	for i := 0; i < 5; i++ {
		v, ok := q.Next()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, uint64(0), q.Len())
}

func TestQueueConcurrentSend(t *testing.T) {
	var q Queue[int]
	q.Init()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Send(i)
			}
		}()
	}
	wg.Wait()
	n := 0
	for {
		if _, ok := q.Next(); !ok {
			break
		}
		n++
	}
	assert.Equal(t, 800, n)
}

func TestAfterIdleRunsAfterEvents(t *testing.T) {
	l := NewLoop()
	var log []string
	l.Send(func() {
		log = append(log, "event 1")
		l.Send(func() { log = append(log, "event 1a") })
	})
	l.AfterIdle(func() {
		log = append(log, "idle 1")
		l.Send(func() { log = append(log, "event 2") })
	})
	l.AfterIdle(func() { log = append(log, "idle 2") })
	l.Send(func() { log = append(log, "event 3") })

	assert.Equal(t, 6, l.RunPending())
	assert.Equal(t, []string{"event 1", "event 3", "event 1a", "idle 1", "event 2", "idle 2"}, log)
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, uint64(6), l.Handled())
}

func TestTicker(t *testing.T) {
	l := NewLoop()
	tk := l.NewTicker()
	n := 0
	var tick func()
	tick = func() {
		n++
		if n == 3 {
			tk.Stop()
			return
		}
		tk.Next(tick)
	}
	tk.Next(tick)
	l.RunPending()
	assert.Equal(t, 3, n)
	assert.True(t, tk.Stopped())
	select {
	case <-tk.Done():
	default:
		t.Error("Done not closed")
	}

	// ticks scheduled before Stop are dropped
	tk2 := l.NewTicker()
	ran := false
	tk2.Next(func() { ran = true })
	tk2.Stop()
	tk2.Stop()
	tk2.Next(func() { ran = true })
	l.RunPending()
	assert.False(t, ran)
}

func TestRunStop(t *testing.T) {
	l := NewLoop()
	done := make(chan error)
	go func() { done <- l.Run(context.Background()) }()

	got := make(chan int, 1)
	l.Send(func() { got <- 42 })
	assert.Equal(t, 42, <-got)

	l.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestRunContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}
