package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesClonesByCode(t *testing.T) {
	clone := Clone(ErrSessionReuse, "replayed refresh token")
	assert.True(t, errors.Is(clone, ErrSessionReuse))
	assert.False(t, errors.Is(clone, ErrInvalidToken))

	wrapped := fmt.Errorf("refresh: %w", clone)
	assert.True(t, errors.Is(wrapped, ErrSessionReuse))
}

func TestUnavailableKeepsCauseButHidesIt(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable(cause, "redis get")

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, ErrStoreUnavailable.Message, err.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}
