package mocks

import (
	"fmt"

	"github.com/eyedl/cvat-reader/pkg/ports"
)

// Logger is a mock implementation of ports.Logger that records every
// formatted message by level.
type Logger struct {
	DebugMessages []string
	InfoMessages  []string
	WarnMessages  []string
	ErrorMessages []string
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.DebugMessages = append(l.DebugMessages, fmt.Sprintf(msg, args...))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.InfoMessages = append(l.InfoMessages, fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.WarnMessages = append(l.WarnMessages, fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.ErrorMessages = append(l.ErrorMessages, fmt.Sprintf(msg, args...))
}

func (l *Logger) WithComponent(component string) ports.Logger {
	return l
}

var _ ports.Logger = (*Logger)(nil)
