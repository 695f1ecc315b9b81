package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("projected", "count", 3)
	logger.Infof("camera %s", "PINHOLE")
	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.All()[0].Message, test.ShouldEqual, "projected")
	test.That(t, logs.All()[0].ContextMap()["count"], test.ShouldEqual, int64(3))
	test.That(t, logs.All()[1].Message, test.ShouldEqual, "camera PINHOLE")
}

func TestSetLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	test.That(t, logger.GetLevel(), test.ShouldEqual, zapcore.DebugLevel)

	logger.SetLevel(zapcore.WarnLevel)
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].Message, test.ShouldEqual, "kept")

	logger.SetLevel(zapcore.DebugLevel)
	logger.Debug("kept again")
	test.That(t, logs.Len(), test.ShouldEqual, 2)
}

func TestSublogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("camera").Sublogger("config")

	sub.Errorw("bad config", "model", "FOV")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "camera.config")
	test.That(t, logs.All()[0].Level, test.ShouldEqual, zapcore.ErrorLevel)

	// subloggers share their parent's level
	logger.SetLevel(zapcore.ErrorLevel)
	sub.Warn("dropped")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
}

func TestGlobal(t *testing.T) {
	orig := Global()
	defer ReplaceGlobal(orig)

	logger := NewTestLogger(t)
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
}

func TestNewLoggerLevels(t *testing.T) {
	test.That(t, NewLogger("info").GetLevel(), test.ShouldEqual, zapcore.InfoLevel)
	test.That(t, NewDebugLogger("debug").GetLevel(), test.ShouldEqual, zapcore.DebugLevel)
}
