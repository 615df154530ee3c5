// Package wsstream implements the websocket stream source. It dials the
// ordering backend once per turn, sends the turn request as the first
// message, and adapts the socket's messages into the byte stream the engine
// reads. Message boundaries carry no meaning; lines do.
package wsstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dinetab/chat-core/core/protocol"
)

type Option func(*Client)

// WithAPIKey sets the token sent on the websocket handshake.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithDialer overrides the default websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = dialer }
}

// Client opens one websocket connection per turn.
type Client struct {
	url    string
	apiKey string
	dialer *websocket.Dialer
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open dials the backend, writes the turn request as the opening message and
// returns a reader over every subsequent message. Closing the reader closes
// the socket, which is also how cancellation reaches a blocked read.
func (c *Client) Open(ctx context.Context, request protocol.TurnRequest) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "open turn socket")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.session_id", request.SessionID),
		attribute.String("request.turn_id", request.TurnID),
	)

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Token "+c.apiKey)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		err = fmt.Errorf("failed to open socket connection: %w", err)
		span.RecordError(err)
		return nil, err
	}

	if err := conn.WriteJSON(request); err != nil {
		conn.Close()
		err = fmt.Errorf("failed to send turn request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	return &messageStream{conn: conn}, nil
}

// messageStream flattens a sequence of websocket messages into one byte
// stream. A normal close from the server surfaces as io.EOF.
type messageStream struct {
	conn      *websocket.Conn
	current   io.Reader
	closeOnce sync.Once
	closeErr  error
}

func (s *messageStream) Read(p []byte) (int, error) {
	for {
		if s.current == nil {
			_, reader, err := s.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, fmt.Errorf("failed to read socket message: %w", err)
			}
			s.current = reader
		}

		n, err := s.current.Read(p)
		if err == io.EOF {
			s.current = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (s *messageStream) Close() error {
	s.closeOnce.Do(func() {
		closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := s.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
			logger.Debug("failed to send close message", "error", err)
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
