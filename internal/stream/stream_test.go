package stream

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a test consumer that records everything it receives.
type recorder struct {
	mu     sync.Mutex
	chunks []string
	closed bool
}

func (r *recorder) OnChunk(chunk string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunk)
}

func (r *recorder) OnClose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recorder) snapshot() ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.chunks))
	copy(out, r.chunks)
	return out, r.closed
}

func waitClosed(t *testing.T, r *recorder) []string {
	t.Helper()
	require.Eventually(t, func() bool {
		_, closed := r.snapshot()
		return closed
	}, 2*time.Second, time.Millisecond)
	chunks, _ := r.snapshot()
	return chunks
}

func TestStream_LateSubscriberReceivesHistoryFirst(t *testing.T) {
	s := New()
	require.NoError(t, s.Emit("one"))
	require.NoError(t, s.Emit("two"))

	r := &recorder{}
	s.Subscribe(r)

	require.NoError(t, s.Emit("three"))
	s.Close()

	chunks := waitClosed(t, r)
	assert.Equal(t, []string{"one", "two", "three"}, chunks)
}

func TestStream_SubscribeAfterClose(t *testing.T) {
	s := New()
	require.NoError(t, s.Emit("only"))
	s.Close()

	r := &recorder{}
	s.Subscribe(r)

	chunks := waitClosed(t, r)
	assert.Equal(t, []string{"only"}, chunks)
}

func TestStream_EmitAfterCloseRejected(t *testing.T) {
	s := New()
	require.NoError(t, s.Emit("ok"))
	s.Close()

	err := s.Emit("too late")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, []string{"ok"}, s.History(), "rejected chunk must not be delivered")
}

func TestStream_CloseIdempotent(t *testing.T) {
	s := New()
	r := &recorder{}
	s.Subscribe(r)

	s.Close()
	s.Close()

	waitClosed(t, r)
	assert.True(t, s.Closed())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}

func TestStream_SlowConsumerDoesNotBlockOthers(t *testing.T) {
	s := New()

	release := make(chan struct{})
	slow := Funcs{Chunk: func(string) { <-release }}
	s.Subscribe(slow)

	fast := &recorder{}
	s.Subscribe(fast)

	for i := range 100 {
		require.NoError(t, s.Emit(fmt.Sprintf("chunk-%d", i)))
	}
	s.Close()

	chunks := waitClosed(t, fast)
	assert.Len(t, chunks, 100)

	close(release)
}

func TestStream_Unsubscribe(t *testing.T) {
	s := New()
	r := &recorder{}
	sub := s.Subscribe(r)

	require.NoError(t, s.Emit("before"))
	require.Eventually(t, func() bool {
		chunks, _ := r.snapshot()
		return len(chunks) == 1
	}, 2*time.Second, time.Millisecond)

	s.Unsubscribe(sub)
	require.NoError(t, s.Emit("after"))
	s.Close()

	time.Sleep(20 * time.Millisecond)
	chunks, closed := r.snapshot()
	assert.Equal(t, []string{"before"}, chunks)
	assert.False(t, closed, "unsubscribed consumer must not get OnClose")
}

func TestStream_ManyConcurrentSubscribers(t *testing.T) {
	s := New()

	const subscribers = 8
	recorders := make([]*recorder, subscribers)
	for i := range recorders {
		recorders[i] = &recorder{}
		s.Subscribe(recorders[i])
	}

	want := make([]string, 0, 50)
	for i := range 50 {
		chunk := fmt.Sprintf("c%d", i)
		want = append(want, chunk)
		require.NoError(t, s.Emit(chunk))
	}
	s.Close()

	for i, r := range recorders {
		chunks := waitClosed(t, r)
		assert.Equal(t, want, chunks, "subscriber %d", i)
	}
}

func TestStream_HistoryIsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Emit("a"))

	h := s.History()
	h[0] = "mutated"

	assert.Equal(t, []string{"a"}, s.History())
}

func TestStream_Text(t *testing.T) {
	s := New()
	require.NoError(t, s.Emit("hello "))
	require.NoError(t, s.Emit("world\n"))

	assert.Equal(t, "hello world\n", s.Text())
}

func TestFuncs_NilCallbacksAreSafe(t *testing.T) {
	s := New()
	s.Subscribe(Funcs{})
	require.NoError(t, s.Emit("ignored"))
	s.Close()
}
