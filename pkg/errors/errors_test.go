package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("workflow.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "workflow.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "workflow.yaml")
}

func TestValidationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("Vertices[1].UUID", "malformed identifier", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "Vertices[1].UUID", validationErr.Field)
	require.Contains(t, validationErr.Message, "malformed identifier")
}

func TestSchemaErrorEmbedsSample(t *testing.T) {
	t.Parallel()

	err := NewSchemaError("DAG.Vertices", "UUID is required", "- Vertex:\n    UUID: <required>")
	require.Contains(t, err.Error(), "expected schema:")
	require.Contains(t, err.Error(), "UUID: <required>")
}

func TestExecutionErrorIncludesTaskContext(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("stage failed")
	err := NewExecutionError("task-install", underlying)

	var executionErr *ExecutionError
	require.ErrorAs(t, err, &executionErr)
	require.Equal(t, "task-install", executionErr.TaskID)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestPluginErrorIncludesLibraryName(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("not found")
	err := NewPluginError("libstages.so", underlying)

	var pluginErr *PluginError
	require.ErrorAs(t, err, &pluginErr)
	require.Equal(t, "libstages.so", pluginErr.Library)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestCycleErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewCycleError("build-pipeline", "connecting b->a would introduce a cycle")
	require.Contains(t, err.Error(), "build-pipeline")
	require.Contains(t, err.Error(), "cycle")
}

func TestIdentifierErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("invalid UUID length")
	err := NewIdentifierError("not-a-uuid", underlying)

	var idErr *IdentifierError
	require.ErrorAs(t, err, &idErr)
	require.Equal(t, "not-a-uuid", idErr.Value)
	require.True(t, stdErrors.Is(err, underlying))
}
