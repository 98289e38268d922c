// Package logging configures the zerolog logger used for build output.
//
// Buildpack output is read by humans in a deploy log, so lines carry no
// timestamp and use the conventional arrows:
//
//	-----> Installing Rustup.
//	 !     Defaulting to the nightly channel.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const (
	stepPrefix   = "----->"
	warnPrefix   = " !    "
	detailPrefix = "      "
)

// New returns a logger writing buildpack-style lines to w
func New(w io.Writer, verbose bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     true,
		PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: formatLevel,
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level)
}

func formatLevel(i interface{}) string {
	level, _ := i.(string)

	switch strings.ToLower(level) {
	case zerolog.LevelInfoValue:
		return stepPrefix
	case zerolog.LevelWarnValue, zerolog.LevelErrorValue, zerolog.LevelFatalValue:
		return warnPrefix
	default:
		return detailPrefix
	}
}
