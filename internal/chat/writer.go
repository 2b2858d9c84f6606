package chat

import (
	"bufio"
	"net"
)

// StartOutboundWriter drains the out channel onto the connection. Closing the
// channel stops it after the remaining buffered lines are written; the writer
// then closes the connection. A broken connection stops it immediately.
func StartOutboundWriter(conn net.Conn, out <-chan string) {
	go func() {
		defer conn.Close()
		w := bufio.NewWriter(conn)
		for msg := range out {
			// Best-effort. If the connection breaks, just stop the writer.
			if _, err := w.WriteString(msg + "\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}()
}
