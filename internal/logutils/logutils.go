package logutils

import (
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. InitLogger configures it once at startup;
// a default is installed so tests and early startup paths can log before that.
var Log = logrus.New()

func InitLogger(level string) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'", level)
		parsedLevel = logrus.InfoLevel
	}
	Log.SetLevel(parsedLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Log.Infof("Log level set to %v", parsedLevel)
}
