package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared application logger.
var Logger = &logrus.Logger{
	Out: os.Stdout,
	Formatter: &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		FullTimestamp:          true,
	},
	Hooks: make(logrus.LevelHooks),
	Level: logrus.InfoLevel,
}
