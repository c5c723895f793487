package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrNothingToSend is returned by LogNotifier.Send for blank messages.
var ErrNothingToSend = errors.New("empty message")

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	logger *logrus.Entry
}

func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, text string) error {
	if text == "" {
		return ErrNothingToSend
	}
	n.logger.WithField("message", text).Info("Dry run: reminder not delivered")
	return nil
}
