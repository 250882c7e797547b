package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnections_PingAndClose(t *testing.T) {
	conns := setupTestConnections(t)

	assert.NoError(t, conns.Ping(context.Background()))
	assert.NotSame(t, conns.Cmd, conns.Sub, "command and subscriber connections must be independent")
}

func TestNewConnections_BadURL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	_, err := NewConnections(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestNewConnections_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	_, err := NewConnections(context.Background(), "redis://localhost:1")
	require.Error(t, err)
}
