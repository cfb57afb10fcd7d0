package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// eventStream writes server-sent events to one response.
type eventStream struct {
	c       echo.Context
	started bool
}

func newEventStream(c echo.Context) *eventStream {
	return &eventStream{c: c}
}

func (s *eventStream) start() {
	if s.started {
		return
	}
	s.started = true

	h := s.c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.c.Response().WriteHeader(http.StatusOK)
	s.c.Response().Flush()
}

// send writes one event. Multi-line payloads become consecutive data lines.
func (s *eventStream) send(data string) error {
	s.start()

	var b strings.Builder
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimSuffix(line, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if _, err := s.c.Response().Write([]byte(b.String())); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.c.Response().Flush()
	return nil
}

// StreamUnauthorized answers a rejected stream request with a single error event.
func StreamUnauthorized(c echo.Context, reason string) error {
	return newEventStream(c).send("ERROR|Unauthorized: " + reason)
}

// StreamRateLimited answers an over-limit stream request with a single error event.
func StreamRateLimited(c echo.Context) error {
	return newEventStream(c).send("ERROR|profile generation rate limit exceeded, try again later")
}
