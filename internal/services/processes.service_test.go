package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherwatch/internal/models"
)

func TestSelfCollectorCachesSample(t *testing.T) {
	calls := 0
	c := NewSelfCollector(func() (models.ProcessStatus, error) {
		calls++
		return models.ProcessStatus{PID: 7, Name: "gopherwatch", RSSMB: 12.5}, nil
	}, nil)

	_, _, err := c.Cached()
	require.Error(t, err)

	c.Collect()

	status, updated, err := c.Cached()
	require.NoError(t, err)
	assert.Equal(t, int32(7), status.PID)
	assert.False(t, updated.IsZero())
	assert.Equal(t, 1, calls)
}

func TestSelfCollectorKeepsLastGoodSample(t *testing.T) {
	fail := false
	c := NewSelfCollector(func() (models.ProcessStatus, error) {
		if fail {
			return models.ProcessStatus{}, errors.New("boom")
		}
		return models.ProcessStatus{PID: 1}, nil
	}, nil)

	c.Collect()
	fail = true
	c.Collect()

	status, _, err := c.Cached()
	require.NoError(t, err)
	assert.Equal(t, int32(1), status.PID)
}

func TestSelfCollectorReportsFirstError(t *testing.T) {
	c := NewSelfCollector(func() (models.ProcessStatus, error) {
		return models.ProcessStatus{}, errors.New("boom")
	}, nil)

	c.Collect()

	_, _, err := c.Cached()
	assert.EqualError(t, err, "boom")
}

func TestSelfCollectorStart(t *testing.T) {
	c := NewSelfCollector(func() (models.ProcessStatus, error) {
		return models.ProcessStatus{PID: 3}, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx, time.Hour)
	c.Start(ctx, time.Hour)

	_, _, err := c.Cached()
	assert.NoError(t, err)
}

func TestSampleSelf(t *testing.T) {
	status, err := SampleSelf()
	require.NoError(t, err)

	assert.Equal(t, int32(os.Getpid()), status.PID)
	assert.Positive(t, status.Goroutines)
}
