package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
)

func TestParseIncompleteError(t *testing.T) {
	underlying := errors.New("unexpected token")
	err := NewParseIncompleteError(model.FileID(7), "src/a.ts", underlying)

	require.Equal(t, KindParseIncomplete, err.Kind())
	require.ErrorIs(t, err, underlying)
	require.Contains(t, err.Error(), "src/a.ts")
}

func TestResolverUnresolvedError(t *testing.T) {
	err := NewResolverUnresolvedError(model.FileID(1), "./lazy", model.UnresolvedReasonDynamicPath)

	require.Equal(t, KindResolverUnresolved, err.Kind())
	require.Contains(t, err.Error(), "./lazy")
}

func TestPersistenceIOError(t *testing.T) {
	underlying := errors.New("disk full")
	err := NewPersistenceIOError("replace file", underlying)

	require.Equal(t, KindPersistenceIO, err.Kind())
	require.ErrorIs(t, err, underlying)
}

func TestConfigInvalidError(t *testing.T) {
	underlying := errors.New("unknown rule kind")
	err := NewConfigInvalidError("statik.toml", "rules[0].kind", 12, underlying)

	require.Equal(t, KindConfigInvalid, err.Kind())
	require.Contains(t, err.Error(), "statik.toml:12")
}

func TestFileNotFoundInIndexError(t *testing.T) {
	err := NewFileNotFoundInIndexError("deps", "src/missing.ts")

	require.Equal(t, KindFileNotFoundInIndex, err.Kind())
	require.Contains(t, err.Error(), "src/missing.ts")
}

func TestCancelledError(t *testing.T) {
	err := NewCancelledError("indexing")

	require.Equal(t, KindCancelled, err.Kind())
	require.Contains(t, err.Error(), "indexing")
}

func TestMultiErrorFiltersNil(t *testing.T) {
	e1 := errors.New("a")
	e2 := errors.New("b")

	merged := NewMultiError([]error{nil, e1, nil, e2})
	require.Error(t, merged)
	require.Len(t, merged.Errors, 2)
	require.Contains(t, merged.Error(), "2 errors")
}

func TestMultiErrorEmptyIsNil(t *testing.T) {
	require.Nil(t, NewMultiError([]error{nil, nil}))
}

func TestMultiErrorSingleUnwrapsDirectly(t *testing.T) {
	e1 := errors.New("solo")
	merged := NewMultiError([]error{e1})
	require.Equal(t, "solo", merged.Error())
}
