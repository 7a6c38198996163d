// Package log provides one named sub-logger per pipeline stage
// (lexer/parser/rewrite/eval), all sharing a single logrus.Logger whose
// level the CLI raises from Info to Debug under -v (see internal/config).
package log

import "github.com/sirupsen/logrus"

// Base is the shared logger every stage's sub-logger derives from. Its
// level is the single knob -v/--verbose controls.
var Base = logrus.New()

func init() {
	Base.SetLevel(logrus.InfoLevel)
}

// ForStage returns a new sub-logger tagged with a pipeline stage's name,
// e.g. ForStage("lexer"), ForStage("parser"), ForStage("rewrite"),
// ForStage("eval").
func ForStage(name string) *logrus.Entry {
	return Base.WithField("stage", name)
}

// SetVerbose raises every stage's effective level to Debug, or restores it
// to Info.
func SetVerbose(v bool) {
	if v {
		Base.SetLevel(logrus.DebugLevel)
		return
	}
	Base.SetLevel(logrus.InfoLevel)
}
