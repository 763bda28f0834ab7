package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleCoalescesBursts(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired int32
	for i := 0; i < 10; i++ {
		s.Schedule("save:IF-101", 30*time.Millisecond, func() {
			atomic.AddInt32(&fired, 1)
		})
	}

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.False(t, s.Pending("save:IF-101"))
}

func TestIndependentKeysFireIndependently(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var a, b int32
	s.Schedule("save:IF-101", 20*time.Millisecond, func() { atomic.AddInt32(&a, 1) })
	s.Schedule("save:IF-102", 20*time.Millisecond, func() { atomic.AddInt32(&b, 1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&a))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b))
}

func TestCancelDropsPendingCall(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired int32
	s.Schedule("recompute:IF-101", 30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Cancel("recompute:IF-101")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestStopRejectsFurtherScheduling(t *testing.T) {
	s := NewScheduler()

	var fired int32
	s.Schedule("x", 20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Stop()
	s.Schedule("y", time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
