package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dagscheduler/dagscheduler/internal/logging"
)

func TestLoggerWritesToMemorySink(t *testing.T) {
	sink := logging.NewMemorySink()
	log, err := logging.New(logging.Options{Writer: sink, Level: "debug", Tag: "test"})
	require.NoError(t, err)

	log.Info("hello", "key", "value")
	log.Debug("world")

	require.Equal(t, 2, sink.Len())
	require.Contains(t, sink.Lines()[0], "hello")
	require.Contains(t, sink.Lines()[0], "key=value")
}

func TestLoggerSequenceNumbersAreMonotonic(t *testing.T) {
	sink := logging.NewMemorySink()
	log, err := logging.New(logging.Options{Writer: sink, Level: "debug", Tag: "test"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		log.Info("tick")
	}

	lines := sink.Lines()
	require.Len(t, lines, 5)
	for i, line := range lines {
		require.Contains(t, line, "seq="+itoa(i+1))
	}
}

func TestWithCarriesParentSequenceCounter(t *testing.T) {
	sink := logging.NewMemorySink()
	parent, err := logging.New(logging.Options{Writer: sink, Level: "debug", Tag: "test"})
	require.NoError(t, err)
	child := parent.With("component", "worker")

	parent.Info("a")
	child.Info("b")
	parent.Info("c")

	lines := sink.Lines()
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "seq=1")
	require.Contains(t, lines[1], "seq=2")
	require.Contains(t, lines[1], "component=worker")
	require.Contains(t, lines[2], "seq=3")
}

func TestDiscardLoggerIsSafe(t *testing.T) {
	log := logging.Discard()
	log.Info("noop")
	log.Error("noop")
	log.Trace("noop")
	log.Fatal("noop")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *logging.Logger
	log.Info("noop")
	require.Equal(t, "", log.Tag())
	require.Nil(t, log.With("a", "b"))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := logging.New(logging.Options{Level: "not-a-level"})
	require.Error(t, err)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
