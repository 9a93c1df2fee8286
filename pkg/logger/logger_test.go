package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "kis.log")

	require.NoError(t, Init(Config{Level: "debug", OutputFile: file, MaxSize: 1, Console: &console}))
	assert.Equal(t, file, GetCurrentLogFile())
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	WithField("tr_id", "HHDFS00000300").Debug("quote")
	Infof("issued %s", "token")

	assert.Contains(t, console.String(), "tr_id=HHDFS00000300")
	assert.Contains(t, console.String(), "issued token")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "issued token")
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var console bytes.Buffer
	require.NoError(t, Init(Config{Level: "loud", Console: &console}))
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	assert.Empty(t, GetCurrentLogFile())

	Debug("hidden")
	Warn("shown")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestWithFields_BeforeInit(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	entry := WithFields(logrus.Fields{"a": 1})
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Data["a"])
	Info("no panic without a logger")
}
