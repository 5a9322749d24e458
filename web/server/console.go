package server

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ConsoleMessage is one log line forwarded to a render's event stream
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// WebLogger implements core.Logger by copying messages to a server log and a console channel
type WebLogger struct {
	renderID    string
	serverLog   io.Writer
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for one render. Either destination may be nil.
func NewWebLogger(renderID string, serverLog io.Writer, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		serverLog:   serverLog,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.serverLog != nil {
		fmt.Fprintf(wl.serverLog, "[%s] %s", wl.renderID, message)
		if !strings.HasSuffix(message, "\n") {
			fmt.Fprintln(wl.serverLog)
		}
	}

	if wl.consoleChan == nil {
		return
	}

	// Never block the render on a slow client
	select {
	case wl.consoleChan <- ConsoleMessage{RenderID: wl.renderID, Message: message, Timestamp: time.Now()}:
	default:
	}
}
