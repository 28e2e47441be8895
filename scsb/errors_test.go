package scsb

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	t.Run("Error message with body", func(t *testing.T) {
		err := &APIError{
			StatusCode: 404,
			Path:       "/searchService/search",
			Message:    "Not Found",
			Body:       `{"err":"x"}`,
		}
		assert.Equal(t, `SCSB API error: status 404 requesting /searchService/search: {"err":"x"}`, err.Error())
	})

	t.Run("Error message without body", func(t *testing.T) {
		err := &APIError{StatusCode: 502, Path: "/p", Message: "Bad Gateway"}
		assert.Equal(t, "SCSB API error: status 502 requesting /p: Bad Gateway", err.Error())
	})

	t.Run("Transport error", func(t *testing.T) {
		err := &APIError{Path: "/p", Message: "request failed", Err: syscall.ECONNREFUSED}
		assert.Contains(t, err.Error(), "request failed /p")
		assert.True(t, err.IsTransport())
		assert.ErrorIs(t, err, ErrUpstream)
		assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{401, true},
			{403, true},
			{404, false},
			{500, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			assert.Equal(t, tt.expected, err.IsUnauthorized())
		}
	})
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &DecodeError{Path: "/p", Body: "", Err: cause}

	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "failed to parse SCSB API response from /p: unexpected end of JSON input", err.Error())
}

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", &APIError{StatusCode: 500})
	assert.Equal(t, 500, StatusCode(wrapped))
	assert.Equal(t, 0, StatusCode(ErrNotConfigured))
	assert.Equal(t, 0, StatusCode(nil))
}
