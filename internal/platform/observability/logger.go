package observability

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ctxLoggerKey = "logger"

// NewLogger returns a logrus logger. release mode logs JSON, dev mode text.
func NewLogger(level string, release bool) *logrus.Logger {
	return newLogger(os.Stdout, level, release)
}

func newLogger(w io.Writer, level string, release bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if release {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Entry returns the request-scoped entry set by RequestLogger, or a bare
// entry on the standard logger when the middleware did not run.
func Entry(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(ctxLoggerKey); ok {
		if e, ok := v.(*logrus.Entry); ok {
			return e
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
