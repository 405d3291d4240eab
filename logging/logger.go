package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logrus instance used across the service.
var Logger = logrus.New()
var once sync.Once

// CustomFormatter renders log entries as comma-separated key/value pairs
// with a generated event id.
type CustomFormatter struct {
	SystemName string
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	localTime := entry.Time.Local()

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", localTime.Format("2006-01-02"), localTime.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Event ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(", Location: %s:%d", entry.Caller.File, entry.Caller.Line))
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

// InitLogger configures the global logger. Output goes to a rotated file
// under logs/; if the directory cannot be created the logger stays on
// stderr.
func InitLogger() {
	once.Do(func() {
		Logger.SetFormatter(&CustomFormatter{SystemName: "task-manager"})
		Logger.SetLevel(logrus.InfoLevel)
		Logger.SetReportCaller(true)

		if err := os.MkdirAll("logs", 0700); err != nil {
			Logger.Warnf("Event ID: LOG_DIR_CREATE_FAILED, Description: Failed to create log directory, logging to stderr: %v", err)
			return
		}

		Logger.SetOutput(&lumberjack.Logger{
			Filename:   "logs/task-manager.log",
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for task-manager")
	})
}
