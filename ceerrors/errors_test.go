package ceerrors

import (
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/assert"
)

func TestWrapNilCausePassesThrough(t *testing.T) {
	assert.Nil(t, Wrap(KindFatal, nil, "anything"))
}

func TestIsMatchesWrappedKind(t *testing.T) {
	err := ParseError(stderrors.New("eof"), "main.go")
	assert.True(t, Is(err, KindParseError))
	assert.False(t, Is(err, KindCycleDetected))
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(stderrors.New("plain"), KindFatal))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := IndexUnavailable(stderrors.New("connection refused"), "lexical")
	assert.Equal(t, "lexical index unavailable: connection refused", err.Error())
}

func TestCycleDetectedJoinsCycleWithArrows(t *testing.T) {
	err := CycleDetected([]string{"a.go", "b.go", "a.go"})
	assert.Equal(t, "dependency cycle: a.go -> b.go -> a.go", err.Error())
	assert.True(t, Is(err, KindCycleDetected))
}

func TestUnwrapExposesUnderlyingCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := ResolutionFailure(cause, "import foo")

	var ce *Error
	assert.True(t, stderrors.As(err, &ce))
	assert.NotNil(t, stderrors.Unwrap(ce))
}
