package fixed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendReturnsFixedProbability(t *testing.T) {
	b := New(0.73)
	p, err := b.Predict(make([]float32, 34))
	require.NoError(t, err)
	assert.Equal(t, 0.73, p)
	assert.Equal(t, 1, b.Calls())
	assert.Equal(t, 34, b.LastTensorLen())
	assert.True(t, b.IsLoaded())
}

func TestBackendFailing(t *testing.T) {
	b := NewFailing(errors.New("gpu on fire"))
	_, err := b.Predict(nil)
	assert.EqualError(t, err, "gpu on fire")
}

func TestBackendClosed(t *testing.T) {
	b := New(0.9)
	require.NoError(t, b.Close())
	assert.False(t, b.IsLoaded())
	_, err := b.Predict(nil)
	assert.Error(t, err)
}

func TestParseModelPath(t *testing.T) {
	cases := []struct {
		path    string
		want    float64
		wantErr bool
	}{
		{"fixed://0.73", 0.73, false},
		{"0.2", 0.2, false},
		{"", 0.5, false},
		{"fixed://", 0.5, false},
		{"fixed://abc", 0, true},
		{"fixed://1.5", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseModelPath(tc.path)
		if tc.wantErr {
			assert.Error(t, err, tc.path)
			continue
		}
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}
