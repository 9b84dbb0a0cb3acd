package logsvc

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/masomo-records/core"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelNames = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
	levelFatal: "FATAL",
}

// RollbarLogger reports events to Rollbar and mirrors them to a std logger.
// Debug events are only printed in debug mode and never leave the process.
type RollbarLogger struct {
	std      *log.Logger
	minLevel level
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{std: std, minLevel: levelInfo}
	if conf.Debug {
		l.minLevel = levelDebug
	}
	return l
}

// Enable toggles reporting to Rollbar. Without a token it stays off.
func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && rollbar.Token() != "")
}

// expected args: error | *http.Request | map[string]interface{} | any value worth printing
func (l *RollbarLogger) report(lvl level, msg string, args []interface{}) {
	if lvl < levelInfo {
		return
	}
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if arg != nil {
			newArgs = append(newArgs, arg)
		}
	}

	switch lvl {
	case levelInfo:
		rollbar.Info(newArgs...)
	case levelWarn:
		rollbar.Warning(newArgs...)
	case levelError:
		rollbar.Error(newArgs...)
	case levelFatal:
		rollbar.Critical(newArgs...)
		rollbar.Wait()
	}
}

func (l *RollbarLogger) print(lvl level, msg string, args []interface{}) {
	if lvl < l.minLevel {
		return
	}
	l.std.Printf("[%s] %s", levelNames[lvl], msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case nil:
		case *http.Request:
			l.std.Printf("\trequest: %s %s", a.Method, a.URL.RequestURI())
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, fmt.Sprintf("%s=%v", k, a[k]))
			}
			l.std.Printf("\t%s", strings.Join(pairs, " "))
		default:
			l.std.Printf("\t%+v", a)
		}
	}
}

func (l *RollbarLogger) log(lvl level, msg string, args []interface{}) {
	l.report(lvl, msg, args)
	l.print(lvl, msg, args)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(levelDebug, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(levelInfo, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(levelWarn, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(levelError, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	l.std.Fatal(msg)
}
