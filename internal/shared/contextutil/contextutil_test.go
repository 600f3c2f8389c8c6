package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestContextMetadata(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-1")
	ctx = WithUserID(ctx, "user-1")

	md := ExtractMetadata(ctx)

	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "user-1", md.UserID)
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestGetLogger(t *testing.T) {
	fallback := zap.NewExample()
	scoped := zap.NewNop().Named("scoped")

	assert.Same(t, fallback, GetLogger(context.Background(), fallback))
	assert.Same(t, scoped, GetLogger(WithLogger(context.Background(), scoped), fallback))
	assert.NotNil(t, GetLogger(context.Background(), nil))
}
