package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("printing %d", 42)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrQuery))
	assert.Equal(t, "printing 42", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("remove: %w", ConstraintViolation("quantity would go below zero"))

	assert.True(t, errors.Is(err, ErrConstraintViolation))
	assert.Equal(t, CodeConstraintViolation, CodeOf(err))
}

func TestError_WithCause(t *testing.T) {
	err := Schema("create tables").WithCause(io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, ErrSchema))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "create tables: unexpected EOF", err.Error())
}

func TestError_AmbiguousMatchCarriesCandidates(t *testing.T) {
	err := fmt.Errorf("add: %w", AmbiguousMatch("2 candidates", []int{1, 2}))

	var domainErr *Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, []int{1, 2}, domainErr.Details)
}

func TestVersionMismatch(t *testing.T) {
	err := VersionMismatch(5, 2)

	assert.True(t, errors.Is(err, ErrVersionMismatch))
	assert.Contains(t, err.Error(), "5")
	assert.True(t, err.Code.Fatal())
}

func TestCode_ExitCodesAreDistinct(t *testing.T) {
	codes := []Code{
		CodeConnection, CodeSchema, CodeVersionMismatch, CodeAmbiguousMatch,
		CodeNotFound, CodeConstraintViolation, CodeQuery,
	}
	seen := make(map[int]Code)
	for _, c := range codes {
		exit := c.ExitCode()
		assert.NotEqual(t, 0, exit)
		assert.NotEqual(t, 1, exit, "code %s uses the generic exit code", c)
		_, dup := seen[exit]
		assert.False(t, dup, "exit code %d reused by %s", exit, c)
		seen[exit] = c
	}
	assert.Equal(t, 1, Code("").ExitCode())
	assert.Equal(t, Code(""), CodeOf(io.EOF))
}
