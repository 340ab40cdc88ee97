package notification

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCenter(delay time.Duration) *Center {
	return NewCenter(delay, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestShowAndCurrent(t *testing.T) {
	t.Parallel()

	c := newTestCenter(time.Minute)
	assert.Nil(t, c.Current())

	c.Show("Product added successfully", SeveritySuccess)

	n := c.Current()
	require.NotNil(t, n)
	assert.Equal(t, "Product added successfully", n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
}

func TestShowDefaultsToSuccess(t *testing.T) {
	t.Parallel()

	c := newTestCenter(time.Minute)
	c.Show("done", "")

	n := c.Current()
	require.NotNil(t, n)
	assert.Equal(t, SeveritySuccess, n.Severity)
}

func TestShowReplacesActiveNotification(t *testing.T) {
	t.Parallel()

	c := newTestCenter(time.Minute)
	c.Show("first", SeveritySuccess)
	c.Show("second", SeverityError)

	n := c.Current()
	require.NotNil(t, n)
	assert.Equal(t, "second", n.Message)
	assert.Equal(t, SeverityError, n.Severity)
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newTestCenter(time.Minute)
	c.Clear()
	assert.Nil(t, c.Current())

	c.Show("gone soon", SeveritySuccess)
	c.Clear()
	assert.Nil(t, c.Current())
	c.Clear()
	assert.Nil(t, c.Current())
}

func TestAutoClearAfterDelay(t *testing.T) {
	t.Parallel()

	c := newTestCenter(20 * time.Millisecond)
	c.Show("blink", SeveritySuccess)
	require.NotNil(t, c.Current())

	assert.Eventually(t, func() bool {
		return c.Current() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestReplacementRestartsTimer(t *testing.T) {
	t.Parallel()

	c := newTestCenter(60 * time.Millisecond)
	c.Show("first", SeveritySuccess)

	// Replace just before the first timer fires; the stale timer must not
	// clear the replacement.
	time.Sleep(40 * time.Millisecond)
	c.Show("second", SeveritySuccess)
	time.Sleep(40 * time.Millisecond)

	n := c.Current()
	require.NotNil(t, n)
	assert.Equal(t, "second", n.Message)

	assert.Eventually(t, func() bool {
		return c.Current() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestZeroDelayFallsBackToDefault(t *testing.T) {
	t.Parallel()

	c := newTestCenter(0)
	assert.Equal(t, DefaultDelay, c.delay)
}
