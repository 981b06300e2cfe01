package lifecycle

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	startErr error
	done     chan struct{}
	err      error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{done: make(chan struct{})}
}

func (f *fakeScheduler) Start(context.Context) error { return f.startErr }
func (f *fakeScheduler) Done() <-chan struct{}       { return f.done }
func (f *fakeScheduler) Err() error                  { return f.err }

// die simulates the refresh loop exiting with err.
func (f *fakeScheduler) die(err error) {
	f.err = err
	close(f.done)
}

type fakeResponder struct {
	called atomic.Bool
	serve  func(ctx context.Context, in io.Reader) error
}

func (f *fakeResponder) Serve(ctx context.Context, in io.Reader, _ io.Writer) error {
	f.called.Store(true)

	if f.serve != nil {
		return f.serve(ctx, in)
	}

	<-ctx.Done()

	return ctx.Err()
}

type fakeService struct {
	startErr error
	stopped  atomic.Bool
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	<-ctx.Done()

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)
	return nil
}

func runAsync(ctx context.Context, opts *ServerOptions) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- RunServer(ctx, opts)
	}()

	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("RunServer did not return")
		return nil
	}
}

func TestRunServer_MissingOptions(t *testing.T) {
	err := RunServer(context.Background(), &ServerOptions{Responder: &fakeResponder{}})
	require.ErrorIs(t, err, ErrMissingOption)

	err = RunServer(context.Background(), &ServerOptions{Scheduler: newFakeScheduler()})
	require.ErrorIs(t, err, ErrMissingOption)
}

func TestRunServer_InitialLoadFailure(t *testing.T) {
	boom := errors.New("no data")
	sched := newFakeScheduler()
	sched.startErr = boom
	resp := &fakeResponder{}

	err := RunServer(context.Background(), &ServerOptions{Scheduler: sched, Responder: resp})

	require.ErrorIs(t, err, boom)
	assert.False(t, resp.called.Load(), "must not serve before the first load succeeds")
}

func TestRunServer_RefreshDeathStopsProcess(t *testing.T) {
	boom := errors.New("update failed")
	sched := newFakeScheduler()
	svc := &fakeService{}

	errCh := runAsync(context.Background(), &ServerOptions{
		Scheduler: sched,
		Responder: &fakeResponder{},
		Services:  []Service{svc},
	})

	sched.die(boom)

	err := waitErr(t, errCh)
	require.ErrorIs(t, err, ErrRefreshStopped)
	require.ErrorIs(t, err, boom)
	assert.True(t, svc.stopped.Load())
}

func TestRunServer_RefreshExitWithoutError(t *testing.T) {
	sched := newFakeScheduler()

	errCh := runAsync(context.Background(), &ServerOptions{
		Scheduler: sched,
		Responder: &fakeResponder{},
	})

	sched.die(nil)

	require.ErrorIs(t, waitErr(t, errCh), ErrRefreshStopped)
}

func TestRunServer_AgentClosesPipe(t *testing.T) {
	resp := &fakeResponder{
		serve: func(context.Context, io.Reader) error { return nil },
	}

	err := waitErr(t, runAsync(context.Background(), &ServerOptions{
		Scheduler: newFakeScheduler(),
		Responder: resp,
	}))

	require.NoError(t, err)
}

func TestRunServer_ResponderError(t *testing.T) {
	broken := errors.New("broken pipe")
	resp := &fakeResponder{
		serve: func(context.Context, io.Reader) error { return broken },
	}

	err := waitErr(t, runAsync(context.Background(), &ServerOptions{
		Scheduler: newFakeScheduler(),
		Responder: resp,
	}))

	require.ErrorIs(t, err, broken)
}

func TestRunServer_ServiceError(t *testing.T) {
	bind := errors.New("address in use")

	err := waitErr(t, runAsync(context.Background(), &ServerOptions{
		Scheduler: newFakeScheduler(),
		Responder: &fakeResponder{},
		Services:  []Service{&fakeService{startErr: bind}},
	}))

	require.ErrorIs(t, err, bind)
}

func TestRunServer_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &fakeService{}

	errCh := runAsync(ctx, &ServerOptions{
		Scheduler: newFakeScheduler(),
		Responder: &fakeResponder{},
		Services:  []Service{svc},
	})

	cancel()

	require.ErrorIs(t, waitErr(t, errCh), context.Canceled)
	assert.True(t, svc.stopped.Load())
}

func TestRefreshStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, refreshStopped(ctx, nil), context.Canceled)
	assert.ErrorIs(t, refreshStopped(context.Background(), nil), ErrRefreshStopped)
}

type panickingService struct{}

func (panickingService) Start(context.Context) error { panic("status server exploded") }
func (panickingService) Stop(context.Context) error  { return nil }

func TestRunServer_ServicePanicIsContained(t *testing.T) {
	resp := &fakeResponder{
		serve: func(context.Context, io.Reader) error {
			// give the service goroutine time to panic
			time.Sleep(20 * time.Millisecond)
			return nil
		},
	}

	err := waitErr(t, runAsync(context.Background(), &ServerOptions{
		Scheduler: newFakeScheduler(),
		Responder: resp,
		Services:  []Service{panickingService{}},
	}))

	require.NoError(t, err)
}

func TestRunServer_WaitsForResponder(t *testing.T) {
	var finished atomic.Bool

	resp := &fakeResponder{
		serve: func(ctx context.Context, _ io.Reader) error {
			<-ctx.Done()
			// an answer still being written when the loop is told to stop
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)

			return ctx.Err()
		},
	}

	sched := newFakeScheduler()

	errCh := runAsync(context.Background(), &ServerOptions{
		Scheduler: sched,
		Responder: resp,
	})

	sched.die(errors.New("update failed"))

	require.ErrorIs(t, waitErr(t, errCh), ErrRefreshStopped)
	assert.True(t, finished.Load(), "RunServer returned before the responder finished")
}
