package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeMissingJob, "job 7 not found"),
			expected: "[MISSING_JOB] job 7 not found",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeInvalidConfig, "bad depth", errors.New("out of range")),
			expected: "[INVALID_CONFIG] bad depth: out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeStaleEvent, "stale", underlying)
	assert.Equal(t, underlying, err.Unwrap())
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeDuplicateJob, "error 1")
	err2 := New(CodeDuplicateJob, "error 2")
	err3 := New(CodeMissingJob, "error 3")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsDuplicateJob(t *testing.T) {
	assert.True(t, IsDuplicateJob(ErrDuplicateJob))
	assert.True(t, IsDuplicateJob(Wrap(CodeDuplicateJob, "dup", nil)))
	assert.False(t, IsDuplicateJob(ErrMissingJob))
	assert.False(t, IsDuplicateJob(nil))
}

func TestIsMissingJob(t *testing.T) {
	assert.True(t, IsMissingJob(ErrMissingJob))
	assert.False(t, IsMissingJob(ErrDuplicateJob))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"app error", New(CodeDuplicateJob, "dup"), CodeDuplicateJob},
		{"wrapped app error", Wrap(CodeMissingJob, "missing", errors.New("inner")), CodeMissingJob},
		{"standard error", errors.New("plain"), "UNKNOWN_ERROR"},
		{"nil error", nil, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCode(tt.err))
		})
	}
}
