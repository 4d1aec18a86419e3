package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Frame deadlines. The read deadline is generous because a monitor client
// legitimately idles between attempt events; the write deadline is short
// so a stalled client frees the relay quickly.
const (
	writeTimeout = 10 * time.Second
	readTimeout  = 5 * time.Minute
)

// WriteTyped marshals v as one JSON frame under the write deadline.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// WriteError sends a typed error frame.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON decodes one client frame under the read deadline, so abandoned
// connections eventually fail out of the read loop.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	return conn.ReadJSON(v)
}
