package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	t.Run("json at debug", func(t *testing.T) {
		require.NoError(t, Setup("DEBUG", "json"))
		require.Equal(t, logrus.DebugLevel, logrus.GetLevel())
		require.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
	})

	t.Run("text by default", func(t *testing.T) {
		require.NoError(t, Setup("warn", ""))
		require.Equal(t, logrus.WarnLevel, logrus.GetLevel())
		require.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)
	})

	t.Run("bad level", func(t *testing.T) {
		require.Error(t, Setup("loud", "text"))
	})

	t.Run("bad format", func(t *testing.T) {
		require.Error(t, Setup("info", "xml"))
	})
}
