package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClock_AfterFunc(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	fired := 0
	c.AfterFunc(300*time.Millisecond, func() { fired++ })
	stopped := c.AfterFunc(time.Second, func() { fired += 10 })
	require.Equal(t, 2, c.PendingTimers())

	c.Advance(299 * time.Millisecond)
	assert.Equal(t, 0, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	c.Advance(time.Hour)
	assert.Equal(t, 1, fired)
	assert.Equal(t, start.Add(time.Hour+300*time.Millisecond), c.Now())
	assert.Equal(t, 0, c.PendingTimers())
}

func TestFakeClock_Ticker(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	tk := c.NewTicker(time.Second)

	c.Advance(500 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("tick before period")
	default:
	}

	c.Advance(3 * time.Second)
	got := <-tk.C()
	assert.Equal(t, time.Unix(3, 0), got)
	select {
	case <-tk.C():
		t.Fatal("due ticks must collapse into one")
	default:
	}

	tk.Stop()
	c.Advance(time.Minute)
	select {
	case <-tk.C():
		t.Fatal("tick after stop")
	default:
	}
}

func TestReal(t *testing.T) {
	var c Clock = Real{}
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)

	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })
	<-done

	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()
	<-tk.C()
}
