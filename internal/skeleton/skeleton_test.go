package skeleton

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkeletonize_PreservesDocstring(t *testing.T) {
	src := []byte(`def greet(name):
    "Return a greeting."
    line = f"Hello, {name}"
    return line
`)
	out, err := Skeletonize(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Return a greeting."`)
	assert.Contains(t, string(out), "...")
	assert.NotContains(t, string(out), "Hello")
}

func TestSkeletonize_NoDocstring(t *testing.T) {
	src := []byte(`def add(a, b):
    return a + b
`)
	out, err := Skeletonize(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, string(out), "def add(a, b):")
	assert.Contains(t, string(out), "...")
	assert.NotContains(t, string(out), "return a + b")
}

func TestSkeletonize_MethodsInsideClass(t *testing.T) {
	src := []byte(`class Greeter:
    "Says hello."

    def greet(self, name):
        return f"Hello, {name}"
`)
	out, err := Skeletonize(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, string(out), "class Greeter:")
	assert.Contains(t, string(out), `"Says hello."`)
	assert.NotContains(t, string(out), "Hello, {name}")
}
