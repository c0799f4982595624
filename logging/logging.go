// Package logging is the single place every other package gets a
// *logrus.Entry from, wired the way the teacher wires its own loggers:
// logrus for structured fields, lfshook to additionally fan level-filtered
// output out to per-level rotated files, and go-file-rotatelogs as the
// rotating writer backing those files.
package logging

import (
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(logrus.InfoLevel)

	dir := os.Getenv("SCRIPTANALYZER_LOG_DIR")
	if dir == "" {
		return
	}

	hook, err := newFileHook(dir)
	if err != nil {
		base.WithError(err).Warn("logging: could not install file hook, logging to stdout only")
		return
	}
	base.AddHook(hook)
}

func newFileHook(dir string) (logrus.Hook, error) {
	writerFor := func(level string) (*rotatelogs.RotateLogs, error) {
		return rotatelogs.New(
			dir+"/"+level+".%Y%m%d.log",
			rotatelogs.WithLinkName(dir+"/"+level+".log"),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
	}

	levels := map[logrus.Level]string{
		logrus.ErrorLevel: "error",
		logrus.WarnLevel:  "warn",
		logrus.InfoLevel:  "info",
		logrus.DebugLevel: "debug",
		logrus.TraceLevel: "trace",
	}

	writerMap := lfshook.WriterMap{}
	for level, name := range levels {
		w, err := writerFor(name)
		if err != nil {
			return nil, err
		}
		writerMap[level] = w
	}

	return lfshook.NewHook(writerMap, &logrus.TextFormatter{FullTimestamp: true}), nil
}

// SetLevel adjusts the base logger's minimum level; cmd/scriptanalyzer
// calls this from its --verbose flag.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// New returns a *logrus.Entry tagged with component, the handle every
// package stores as its "log" field.
func New(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// TraceState dumps a value's full structure at Trace level using go-spew,
// the idiom hsk81-btcscript's Script.Execute uses for per-opcode stack
// tracing (log.Tracef + spew.Sdump), adapted to logrus's lazy-field
// evaluation so the dump is skipped entirely when Trace isn't enabled.
func TraceState(log *logrus.Entry, label string, v interface{}) {
	if !log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	log.WithField(label, spew.Sdump(v)).Trace(label)
}
