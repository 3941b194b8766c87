package service

import (
	"log"
)

// Notifier receives reminder messages. Implementations decide how they reach
// the user.
type Notifier interface {
	Notify(title, message string) error
}

// LogNotifier writes every notification as a log line.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(title, message string) error {
	n.logger.Printf("[%s] %s", title, message)
	return nil
}
