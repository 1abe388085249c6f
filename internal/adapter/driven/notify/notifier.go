// Package notify implements the Notifier port.
package notify

import (
	"log/slog"

	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*LogNotifier)(nil)

// LogNotifier reports sync completions through the structured log. A GUI
// front end would replace this with a toast/notification implementation.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// SyncCompleted logs how many queued items were applied remotely.
func (n *LogNotifier) SyncCompleted(count int) {
	n.logger.Info("offline changes synced", "items", count)
}
