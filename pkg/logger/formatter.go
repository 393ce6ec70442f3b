package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// lineFormatter renders entries as `[time] [LEVEL] [prefix]: message`.
type lineFormatter struct {
	colors bool
}

// Format implements logrus.Formatter.
func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := entryLevel(entry)
	name := level.String()
	if f.colors {
		name = level.Color() + name + colorReset
	}
	line := fmt.Sprintf("[%s] [%s] [%s]: %s\n",
		entry.Time.Format(timestampFormat),
		name,
		entryPrefix(entry),
		entry.Message,
	)
	return []byte(line), nil
}
