package app

import (
	"testing"

	"go-leave/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotifier(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("outbox", func(t *testing.T) {
		cfg := &config.Config{Leave: config.LeaveConfig{Notifier: config.NotifierOutbox}}
		n, closers, err := buildNotifier(cfg, db)
		require.NoError(t, err)
		assert.NotNil(t, n)
		assert.Empty(t, closers)
	})

	t.Run("noop", func(t *testing.T) {
		cfg := &config.Config{Leave: config.LeaveConfig{Notifier: config.NotifierNoop}}
		n, _, err := buildNotifier(cfg, db)
		require.NoError(t, err)
		assert.NotNil(t, n)
	})

	t.Run("kafka without broker", func(t *testing.T) {
		cfg := &config.Config{Leave: config.LeaveConfig{Notifier: config.NotifierKafka}}
		_, _, err := buildNotifier(cfg, db)
		assert.EqualError(t, err, "KAFKA_BROKER is required for the kafka notifier")
	})
}
