// Package log routes outagefs logging through logrus. The level comes
// from the OUTAGEFS_LOG_LEVEL environment variable (debug, info,
// error); the default is info.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// EnvLevel is the environment variable controlling verbosity.
const EnvLevel = "OUTAGEFS_LOG_LEVEL"

// InitLogging configures the logrus standard logger from the
// environment. Called once before any command runs.
func InitLogging() {
	logrus.SetOutput(os.Stderr)
	switch os.Getenv(EnvLevel) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}

// Infof logs at info level.
func Infof(format string, args ...interface{}) {
	logrus.Infof(format, args...)
}

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}
