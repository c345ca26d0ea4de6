// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package elastic

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/poiesic/searchflow/query"
	"github.com/poiesic/searchflow/transport"
)

const closeWriteTimeout = time.Second

// SearchStream opens a websocket subscription for req.
func (c *Client) SearchStream(ctx context.Context, req *transport.Request) (transport.Stream, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	scheme := "ws"
	if c.baseURL.Scheme == "https" {
		scheme = "wss"
	}
	endpoint, err := c.endpoint(req, c.streamPath, scheme)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	headers := c.currentHeaders()
	for k, v := range headers {
		header.Set(k, v)
	}

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, readAPIError(resp)
		}
		return nil, err
	}

	id := uuid.NewString()
	subscribe := clientFrame{
		Type:       frameSubscribe,
		ID:         id,
		Preference: req.Preference,
		Headers:    headers,
		Body:       query.WithMatchAll(req.Body),
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrStreamRejected, err)
	}

	s := &stream{
		id:     id,
		conn:   conn,
		client: c,
		events: make(chan transport.StreamEvent),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return nil, transport.ErrClosed
	}
	c.streams[s] = struct{}{}
	c.mu.Unlock()

	go s.readLoop()

	c.logger.Debug("stream opened", "component", req.Component, "subscription", id)
	return s, nil
}

// stream is a websocket subscription.
type stream struct {
	id     string
	conn   *websocket.Conn
	client *Client

	events   chan transport.StreamEvent
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	writeMu  sync.Mutex
}

var _ transport.Stream = (*stream)(nil)

func (s *stream) Events() <-chan transport.StreamEvent {
	return s.events
}

// Stop unsubscribes, closes the connection and waits for the reader to exit.
func (s *stream) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)

		s.writeMu.Lock()
		_ = s.conn.WriteJSON(clientFrame{Type: frameUnsubscribe, ID: s.id})
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		s.writeMu.Unlock()
		s.conn.Close()

		s.client.mu.Lock()
		delete(s.client.streams, s)
		s.client.mu.Unlock()
	})
	<-s.done
}

func (s *stream) readLoop() {
	defer close(s.done)
	defer close(s.events)

	for {
		var frame serverFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			select {
			case <-s.stop:
				return
			default:
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.client.logger.Warn("stream read failed", "subscription", s.id, "error", err)
				s.send(transport.StreamEvent{Err: err})
			}
			return
		}
		if frame.ID != "" && frame.ID != s.id {
			continue
		}

		var ev transport.StreamEvent
		switch {
		case frame.Error != "":
			ev.Err = fmt.Errorf("%w: %s", ErrStreamRejected, frame.Error)
		case frame.Hit != nil:
			hit := frame.Hit.hit()
			ev.Hit = &hit
		case frame.Response != nil:
			stamp := s.client.now()
			if frame.Timestamp > 0 {
				stamp = time.UnixMilli(frame.Timestamp)
			}
			ev.Response = frame.Response.response(stamp)
		default:
			continue
		}
		if !s.send(ev) {
			return
		}
	}
}

// send delivers ev unless the stream is stopping.
func (s *stream) send(ev transport.StreamEvent) bool {
	select {
	case <-s.stop:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	case <-s.stop:
		return false
	}
}
