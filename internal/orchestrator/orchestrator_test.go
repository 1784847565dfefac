package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverErr struct{ msg string }

func (e *serverErr) Error() string         { return "server: " + e.msg }
func (e *serverErr) ServerMessage() string { return e.msg }

type recordedCall struct {
	name string
	kind ErrorKind
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordCall(_ context.Context, name string, kind ErrorKind, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{name: name, kind: kind})
}

func TestExecute_Success(t *testing.T) {
	rec := &fakeRecorder{}
	o := New(WithRecorder(rec))

	out := Execute(context.Background(), o, "op", func(ctx context.Context) (string, error) {
		return "payload", nil
	})

	require.True(t, out.OK())
	assert.Equal(t, "payload", out.Value)
	assert.Equal(t, KindNone, out.Kind)
	assert.NoError(t, out.Err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{name: "op", kind: KindNone}, rec.calls[0])
}

func TestExecute_TimeoutReleasesOperation(t *testing.T) {
	o := New(WithTimeout(20 * time.Millisecond))
	released := make(chan struct{})

	start := time.Now()
	out := Execute(context.Background(), o, "slow", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(released)
		return 0, ctx.Err()
	})

	assert.Equal(t, KindTimeout, out.Kind)
	assert.Zero(t, out.Value)
	assert.Less(t, time.Since(start), 2*time.Second)

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("operation context was not cancelled")
	}
}

func TestExecute_TimeoutWhenOperationIgnoresContext(t *testing.T) {
	o := New(WithTimeout(20 * time.Millisecond))
	block := make(chan struct{})
	defer close(block)

	out := Execute(context.Background(), o, "stuck", func(ctx context.Context) (int, error) {
		<-block
		return 1, nil
	})

	assert.Equal(t, KindTimeout, out.Kind)
	assert.Zero(t, out.Value)
}

func TestExecute_ReleasesContextOnSuccess(t *testing.T) {
	o := New()
	var captured context.Context

	Execute(context.Background(), o, "op", func(ctx context.Context) (int, error) {
		captured = ctx
		return 1, nil
	})

	require.NotNil(t, captured)
	assert.ErrorIs(t, captured.Err(), context.Canceled)
}

func TestExecute_ServerError(t *testing.T) {
	o := New()

	out := Execute(context.Background(), o, "op", func(ctx context.Context) (int, error) {
		return 0, fmt.Errorf("wrapped: %w", &serverErr{msg: "Session not found"})
	})

	assert.Equal(t, KindServer, out.Kind)
	assert.Equal(t, "Session not found", out.Message)
	assert.Error(t, out.Err)
}

func TestExecute_NetworkError(t *testing.T) {
	o := New()

	out := Execute(context.Background(), o, "op", func(ctx context.Context) (int, error) {
		return 0, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	})

	assert.Equal(t, KindNetwork, out.Kind)
}

func TestExecute_UnknownError(t *testing.T) {
	o := New()

	out := Execute(context.Background(), o, "op", func(ctx context.Context) (int, error) {
		return 0, errors.New("bad payload")
	})

	assert.Equal(t, KindUnknown, out.Kind)
	assert.Empty(t, out.Message)
}

func TestExecute_PanicBecomesUnknown(t *testing.T) {
	o := New()

	out := Execute(context.Background(), o, "op", func(ctx context.Context) (int, error) {
		panic("boom")
	})

	assert.Equal(t, KindUnknown, out.Kind)
	assert.ErrorIs(t, out.Err, errPanic)
}

func TestExecute_ParentCancelledIsUnknown(t *testing.T) {
	o := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := Execute(ctx, o, "op", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.Equal(t, KindUnknown, out.Kind)
}

func TestExecute_ParentDeadlineIsTimeout(t *testing.T) {
	o := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	out := Execute(ctx, o, "op", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.Equal(t, KindTimeout, out.Kind)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"server", &serverErr{msg: "x"}, KindServer},
		{"refused", syscall.ECONNREFUSED, KindNetwork},
		{"url", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("eof")}, KindNetwork},
		{"dns", &net.DNSError{Err: "no such host", Name: "x"}, KindNetwork},
		{"plain", errors.New("decode"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorKind_Message(t *testing.T) {
	assert.Empty(t, KindNone.Message())
	for _, k := range []ErrorKind{KindNetwork, KindTimeout, KindServer, KindUnknown} {
		assert.NotEmpty(t, k.Message(), k.String())
	}
	assert.Equal(t, "timeout", KindTimeout.String())
}

func TestTimeoutFromEnv(t *testing.T) {
	t.Setenv("MATHDRILL_REQUEST_TIMEOUT", "")
	assert.Equal(t, DefaultTimeout, TimeoutFromEnv())

	t.Setenv("MATHDRILL_REQUEST_TIMEOUT", "5s")
	assert.Equal(t, 5*time.Second, TimeoutFromEnv())

	t.Setenv("MATHDRILL_REQUEST_TIMEOUT", "nonsense")
	assert.Equal(t, DefaultTimeout, TimeoutFromEnv())
}

func TestNew_Defaults(t *testing.T) {
	o := New(WithTimeout(-1))
	assert.Equal(t, DefaultTimeout, o.Timeout())
}
