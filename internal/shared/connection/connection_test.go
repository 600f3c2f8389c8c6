package connection

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter("localhost:9092")
	defer w.Close()

	assert.Equal(t, "localhost:9092", w.Addr.String())
	assert.True(t, w.BatchTimeout > 0 && w.BatchTimeout <= 50*time.Millisecond,
		"batch timeout %s would delay synchronous writes", w.BatchTimeout)
	assert.Equal(t, kafkago.RequireAll, w.RequiredAcks)
	assert.False(t, w.Async)
}
