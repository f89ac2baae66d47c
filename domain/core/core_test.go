package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID_ParsesBack(t *testing.T) {
	id := NewRunID()
	parsed, err := ParseRunID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseRunID("  ")
	assert.Error(t, err)
	_, err = ParseRunID("not-a-uuid")
	assert.Error(t, err)
}

func TestSourceFingerprint_OrderIndependent(t *testing.T) {
	a := SourceFingerprint(map[string][]byte{"a.csv": []byte("x"), "b.csv": []byte("y")})
	b := SourceFingerprint(map[string][]byte{"b.csv": []byte("y"), "a.csv": []byte("x")})
	c := SourceFingerprint(map[string][]byte{"a.csv": []byte("x"), "b.csv": []byte("z")})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsEmpty())
}

func TestErrorClasses(t *testing.T) {
	err := NewUnsupportedMetricError("Both", "Heartbeat")
	assert.True(t, IsNoData(err))
	assert.True(t, errors.Is(err, ErrUnsupportedMetric))
	assert.True(t, IsNoData(ErrUnknownSlice))

	srcErr := NewMissingKeyError("who.csv", "Year")
	assert.True(t, IsSourceError(srcErr))
	assert.False(t, IsNoData(srcErr))

	assert.False(t, IsNoData(NewInvalidFilterError("year", "not an integer")))
}
