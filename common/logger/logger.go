package logger

import (
	glog "github.com/Laisky/go-utils/v6/log"

	"github.com/Laisky/openrouter-mcp/common/config"
)

// Logger is the process-wide structured logger. It is usable from package
// init onward; SetupLogger only adjusts the level afterwards.
var Logger glog.Logger

func init() {
	lgr, err := glog.NewConsoleWithName("openrouter-mcp", glog.LevelInfo)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	Logger = lgr
}

// SetupLogger applies the configured log level to the global logger.
func SetupLogger() {
	level := glog.LevelInfo
	if config.DebugEnabled {
		level = glog.LevelDebug
	}
	lgr, err := glog.NewConsoleWithName("openrouter-mcp", level)
	if err != nil {
		Logger.Error("failed to rebuild logger with configured level")
		return
	}
	Logger = lgr
}
