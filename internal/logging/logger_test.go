package logging

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("nonsense"))
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, Output(LoggerSetupParams{}))

	w := Output(LoggerSetupParams{LogFileName: t.TempDir() + "/gym"})
	lj, ok := w.(*lumberjack.Logger)
	if assert.True(t, ok) {
		assert.Equal(t, ".log", lj.Filename[len(lj.Filename)-4:])
	}

	_, isFile := Output(LoggerSetupParams{LogFileName: "x.log", LogToStdout: true}).(*lumberjack.Logger)
	assert.False(t, isFile)
}
