package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, setLogLevel("DEBUG"))
	assert.NoError(t, setLogLevel("info"))
	assert.Error(t, setLogLevel("loud"))
}

func TestWaitReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, wait(ctx, make(chan struct{}), make(chan error), true))
}

func TestWaitReportsServerFailure(t *testing.T) {
	serveErr := make(chan error, 1)
	serveErr <- errors.New("address in use")
	err := wait(context.Background(), make(chan struct{}), serveErr, true)
	assert.ErrorContains(t, err, "address in use")
}

func TestWaitIgnoresProvisionedWithoutAutoShutdown(t *testing.T) {
	provisioned := make(chan struct{})
	close(provisioned)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.NoError(t, wait(ctx, provisioned, make(chan error), false))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
