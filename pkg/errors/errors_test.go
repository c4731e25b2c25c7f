package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: patient P1", NewNotFoundError("patient P1").Error())
	assert.Equal(t, "OFFLINE: backend unreachable: context deadline exceeded",
		NewOfflineError("backend unreachable", context.DeadlineExceeded).Error())
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", NewOfflineError("backend unreachable", nil))

	assert.Equal(t, ErrorTypeOffline, TypeOf(wrapped))
	assert.True(t, IsOffline(wrapped))
	assert.ErrorIs(t, NewExternalError("bad gateway", context.Canceled), context.Canceled)

	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("plain")))
	assert.False(t, IsOffline(nil))
	assert.False(t, IsOffline(NewValidationError("symptoms required")))
}
