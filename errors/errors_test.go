package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("renders op, kind and cause", func(t *testing.T) {
		err := Errorf("defer", Config, "input %q is missing", "x")
		assert.Equal(t, `defer: invalid configuration: input "x" is missing`, err.Error())
	})

	t.Run("renders without a cause", func(t *testing.T) {
		err := E("materialize", Topology, nil)
		assert.Equal(t, "materialize: unsupported topology", err.Error())
	})

	t.Run("unwraps to the underlying error", func(t *testing.T) {
		cause := New("boom")
		err := E("trigger", Trigger, cause)
		assert.Equal(t, cause, err.(*Error).Unwrap())
	})
}

func TestIs(t *testing.T) {
	t.Run("matches the kind", func(t *testing.T) {
		err := Errorf("defer", Inference, "no rows")
		assert.True(t, Is(Inference, err))
		assert.False(t, Is(Config, err))
	})

	t.Run("searches through wrapped errors", func(t *testing.T) {
		inner := Errorf("fetch", Topology, "branching pipeline")
		wrapped := fmt.Errorf("materialize failed: %w", inner)
		assert.True(t, Is(Topology, wrapped))
	})

	t.Run("plain errors match nothing", func(t *testing.T) {
		assert.False(t, Is(Other, New("plain")))
		assert.False(t, Is(Trigger, nil))
	})
}
