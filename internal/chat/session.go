package chat

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ReadLoop reads lines from the client and forwards them to the hub until the
// stream ends or errors. Every exit path emits exactly one disconnect event
// with its cause; the hub's teardown guard makes duplicates harmless anyway.
func ReadLoop(c *Client, events chan<- Event, done <-chan struct{}, logger *slog.Logger) {
	reader := bufio.NewReader(c.Conn)
	for {
		line, err := readLine(reader)
		if err != nil {
			cause := CauseStreamError
			if err == io.EOF {
				cause = CauseStreamEnd
			}
			select {
			case events <- Event{Type: EventDisconnect, Client: c, Cause: cause}:
			case <-done:
			}
			return
		}

		if !c.limiter.Allow() {
			logger.Debug("rate limit exceeded, dropping line", "conn_id", c.ID)
			continue
		}

		select {
		case events <- Event{Type: EventLine, Client: c, Line: line}:
		case <-done:
			return
		}
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
