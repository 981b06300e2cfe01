package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/passpersist/pkg/metrics"
	"github.com/mfreeman451/passpersist/pkg/mib"
)

func waitDone(t *testing.T, s *Scheduler) {
	t.Helper()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
}

func TestNewScheduler_InvalidInterval(t *testing.T) {
	_, err := NewScheduler(mib.NewStore(), UpdaterFunc(func(context.Context, mib.Writer) error { return nil }), 0)
	require.Error(t, err)
}

func TestScheduler_StartPublishesFirstLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mib.NewStore()
	updater := NewMockUpdater(ctrl)

	updater.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w mib.Writer) error {
			w.Upsert("0.1", mib.TypeString, "vm1")
			return nil
		}).
		Times(1)

	s, err := NewScheduler(store, updater, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))

	e, ok := store.Lookup("0.1")
	require.True(t, ok)
	assert.Equal(t, "vm1", e.Value)

	cancel()
	waitDone(t, s)
	assert.NoError(t, s.Err())
}

func TestScheduler_StartTwice(t *testing.T) {
	s, err := NewScheduler(mib.NewStore(), UpdaterFunc(func(context.Context, mib.Writer) error { return nil }), time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyStarted)
}

func TestScheduler_InitialLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mib.NewStore()
	updater := NewMockUpdater(ctrl)
	boom := errors.New("source unavailable")

	updater.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w mib.Writer) error {
			w.Upsert("0.1", mib.TypeString, "partial")
			return boom
		})

	s, err := NewScheduler(store, updater, time.Hour)
	require.NoError(t, err)

	err = s.Start(context.Background())
	require.ErrorIs(t, err, ErrInitialLoad)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, store.Len(), "a failed cycle must not publish")
}

func TestScheduler_LoopStopsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mib.NewStore()
	updater := NewMockUpdater(ctrl)
	boom := errors.New("disk gone")

	gomock.InOrder(
		updater.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w mib.Writer) error {
				w.Upsert("0.1", mib.TypeInteger, "1")
				return nil
			}),
		updater.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w mib.Writer) error {
				w.Upsert("0.1", mib.TypeInteger, "2")
				return boom
			}),
	)

	cycles := metrics.NewBuffer(10)

	s, err := NewScheduler(store, updater, 10*time.Millisecond, WithCycleStore(cycles))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))

	waitDone(t, s)

	require.ErrorIs(t, s.Err(), ErrUpdateFailed)
	require.ErrorIs(t, s.Err(), boom)

	// the last published snapshot keeps serving
	e, ok := store.Lookup("0.1")
	require.True(t, ok)
	assert.Equal(t, "1", e.Value)

	got := s.Cycles()
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Error)
	assert.Equal(t, 1, got[0].Entries)
	assert.Equal(t, boom.Error(), got[1].Error)
	assert.Equal(t, got[1], *s.LastCycle())
}

func TestScheduler_PanicIsAnError(t *testing.T) {
	calls := 0

	updater := UpdaterFunc(func(context.Context, mib.Writer) error {
		calls++
		if calls > 1 {
			panic("bad row")
		}

		return nil
	})

	s, err := NewScheduler(mib.NewStore(), updater, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))

	waitDone(t, s)
	require.ErrorIs(t, s.Err(), ErrUpdaterPanic)
}

func TestScheduler_TriggerRunsEarly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mib.NewStore()
	updater := NewMockUpdater(ctrl)
	refreshed := make(chan struct{})

	gomock.InOrder(
		updater.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
		updater.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w mib.Writer) error {
				w.Upsert("0.1", mib.TypeString, "triggered")
				close(refreshed)
				return nil
			}),
	)

	s, err := NewScheduler(store, updater, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))

	s.Trigger()

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not run the updater")
	}

	cancel()
	waitDone(t, s)

	e, ok := store.Lookup("0.1")
	require.True(t, ok)
	assert.Equal(t, "triggered", e.Value)
}

func TestScheduler_TriggerIsRateLimited(t *testing.T) {
	s, err := NewScheduler(mib.NewStore(), UpdaterFunc(func(context.Context, mib.Writer) error { return nil }),
		time.Hour, WithTriggerLimit(time.Hour))
	require.NoError(t, err)

	// nothing drains the channel before Start, so only the first request lands
	s.Trigger()
	s.Trigger()
	s.Trigger()

	assert.Len(t, s.trigger, 1)
	assert.False(t, s.limiter.Allow())
}

func TestScheduler_UpdaterStagesTypedValues(t *testing.T) {
	store := mib.NewStore()

	updater := UpdaterFunc(func(_ context.Context, w mib.Writer) error {
		mib.AddString(w, "0.1", "vm1")
		mib.AddInt(w, "1.1", -4)
		mib.AddCounter(w, "2.1", 99)
		mib.AddGauge(w, "2.2", 7)

		return nil
	})

	s, err := NewScheduler(store, updater, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))

	assert.Equal(t, []mib.Entry{
		{OID: "0.1", Type: mib.TypeString, Value: "vm1"},
		{OID: "1.1", Type: mib.TypeInteger, Value: "-4"},
		{OID: "2.1", Type: mib.TypeCounter, Value: "99"},
		{OID: "2.2", Type: mib.TypeGauge, Value: "7"},
	}, store.Entries())
}
