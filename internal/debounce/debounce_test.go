package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) add(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncer_BurstCommitsOnce(t *testing.T) {
	rec := &recorder{}
	d := New(50*time.Millisecond, rec.add)
	defer d.Stop()

	for _, v := range []string{"b", "ba", "bat", "batm", "batma", "batman"} {
		d.Push(v)
		time.Sleep(10 * time.Millisecond)
	}

	// still typing well inside the window
	assert.Empty(t, rec.snapshot())
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"batman"}, rec.snapshot())
	assert.False(t, d.Pending())
}

func TestDebouncer_OneCommitPerQuietPeriod(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.add)
	defer d.Stop()

	d.Push("first")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	d.Push("second")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.add)

	d.Push("dropped")
	d.Stop()
	d.Push("ignored")

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestDebouncer_DefaultWindow(t *testing.T) {
	d := New(0, func(string) {})
	assert.Equal(t, DefaultWindow, d.window)
}
