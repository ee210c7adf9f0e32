package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	closed  int
	closeCh chan struct{}
}

func (c *fakeCloser) Close() error {
	c.closed++
	if c.closeCh != nil {
		close(c.closeCh)
	}
	return nil
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())

	first := errors.New("first")
	errs.Add(first, nil)
	require.Equal(t, first, errs.Aggregate())

	errs.Add(errors.New("second"))
	require.Equal(t, "Multiple errors:\nfirst\nsecond", errs.Aggregate().Error())
}

func TestRunner(t *testing.T) {
	errFailed := errors.New("failed")
	r := NewRunner().Go(
		NamedRun("ok", RunFunc(func(context.Context) error { return nil })),
		RunFunc(func(context.Context) error { return errFailed }),
	)
	require.Len(t, r.Runners, 2)
	require.Equal(t, "ok", r.Runners[0].(Named).Name())
	require.Equal(t, errFailed, r.Wait())
}

func TestRunWithContextCancel(t *testing.T) {
	err := RunWithContextCancel(context.Background(), nil, func() error { return nil })
	require.NoError(t, err)

	closer := &fakeCloser{closeCh: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RunWithContextCancel(ctx, func() { closer.Close() }, func() error {
		<-closer.closeCh
		return errors.New("port closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closer.closed)
}
