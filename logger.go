package main

import (
	"fmt"
	"os"
)

// Logger writes leveled, printf-style diagnostics to stderr. Stdout is
// reserved for the per-attempt report lines, which are the generator's
// only real output.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Fatal(format string, v ...interface{})
}

type logger struct {
	level int
}

func NewLogger(level int) Logger {
	return &logger{level: level}
}

func (l *logger) printAt(level int, format string, v ...interface{}) {
	if l.level >= level {
		fmt.Fprintf(os.Stderr, format, v...)
	}
}

func (l *logger) Debug(format string, v ...interface{}) {
	l.printAt(3, format, v...)
}

func (l *logger) Info(format string, v ...interface{}) {
	l.printAt(2, format, v...)
}

func (l *logger) Warn(format string, v ...interface{}) {
	l.printAt(1, format, v...)
}

func (l *logger) Error(format string, v ...interface{}) {
	l.printAt(0, format, v...)
}

func (l *logger) Fatal(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(1)
}
