package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBack(t *testing.T) {
	primaryErr := errors.New("model file missing")
	fallback := &Mock{}

	a, err := Load(context.Background(), nil,
		Loader{Name: "yolo", Open: func(context.Context) (Adapter, error) { return nil, primaryErr }},
		Loader{Name: "ssd", Open: func(context.Context) (Adapter, error) { return fallback, nil }},
	)
	require.NoError(t, err)
	assert.Same(t, fallback, a)
}

func TestLoadAllFail(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	_, err := Load(context.Background(), nil,
		Loader{Name: "a", Open: func(context.Context) (Adapter, error) { return nil, e1 }},
		Loader{Name: "b", Open: func(context.Context) (Adapter, error) { return nil, e2 }},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAdapter)
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Len(t, le.Errors, 2)
}

func TestLoadNoLoaders(t *testing.T) {
	_, err := Load(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAdapter)
}
