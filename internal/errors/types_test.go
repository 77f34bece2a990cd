package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "bad request", err: BadRequest("Invalid video ID"), want: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("Couldn't find JWT"), want: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("not yours"), want: http.StatusForbidden},
		{name: "not found", err: NotFound("Video not found"), want: http.StatusNotFound},
		{name: "wrapped", err: fmt.Errorf("upload: %w", NotFound("gone")), want: http.StatusNotFound},
		{name: "plain error is internal", err: io.ErrUnexpectedEOF, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorKeepsCauseReachable(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := BadRequest("Unable to parse form", cause)

	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Unable to parse form: unexpected EOF", err.Error())
	assert.Equal(t, "Unable to parse form", Message(err))
}

func TestMessageOfUnclassifiedError(t *testing.T) {
	assert.Empty(t, Message(errors.New("disk full")))
	assert.False(t, IsClientError(errors.New("disk full")))
	assert.True(t, IsClientError(Forbidden("nope")))
}
