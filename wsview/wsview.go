// seehuhn.de/go/roadview - a top-down viewer for traffic simulations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package wsview shows rendered frames in a web browser.  A [Server]
// implements [roadview.Window]; every presented frame is encoded as PNG
// once and pushed to all connected browsers over a websocket.
package wsview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"seehuhn.de/go/roadview"
)

const (
	writeTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second

	// closeCommand is the text message a viewer sends to close the window.
	closeCommand = "close"
)

// Server serves the viewer page and the frame stream.
type Server struct {
	log      *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu           sync.Mutex
	clients      map[string]*client
	width        int
	height       int
	frame        []byte // latest frame, PNG encoded
	hash         uint64
	sent         int
	viewerClosed bool
}

type client struct {
	id   string
	conn *websocket.Conn
	wmu  sync.Mutex
}

// write sends one message, with a deadline.
func (c *client) write(messageType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.writeLocked(messageType, data)
}

// writeLocked is like write, but the caller must hold c.wmu.
func (c *client) writeLocked(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// New returns a server without clients.  If logger is nil, nothing is
// logged.
func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
		clients: make(map[string]*client),
	}

	r := chi.NewRouter()
	r.Get("/", s.servePage)
	r.Get("/ws", s.serveWS)
	r.Get("/frame.png", s.serveFrame)
	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves HTTP on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("viewer listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.dropClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

// Factory returns a [roadview.WindowFactory] which presents frames
// through s.  The server supports one renderer at a time.
func (s *Server) Factory() roadview.WindowFactory {
	return func(width, height int) (roadview.Window, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.width, s.height = width, height
		s.viewerClosed = false
		return s, nil
	}
}

// PollEvents implements [roadview.Window].  After a viewer has sent the
// close command, it returns [roadview.ErrWindowClosed].
func (s *Server) PollEvents() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewerClosed {
		return roadview.ErrWindowClosed
	}
	return nil
}

// Present implements [roadview.Window].  Frames identical to the previous
// one are not sent again.
func (s *Server) Present(img image.Image) error {
	var data []byte
	var h uint64
	if f, ok := img.(*roadview.Frame); ok {
		h = xxhash.Sum64(f.Pix)
		if s.sameAsLast(h) {
			return nil
		}
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return err
	}
	data = buf.Bytes()
	if _, ok := img.(*roadview.Frame); !ok {
		h = xxhash.Sum64(data)
		if s.sameAsLast(h) {
			return nil
		}
	}

	s.mu.Lock()
	s.frame = data
	s.hash = h
	s.sent++
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.write(websocket.BinaryMessage, data); err != nil {
			s.log.Debug("dropping viewer", "id", c.id, "err", err)
			s.removeClient(c)
		}
	}
	return nil
}

func (s *Server) sameAsLast(h uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame != nil && s.hash == h
}

// Close implements [roadview.Window].  Connected viewers are
// disconnected; the HTTP server keeps running.
func (s *Server) Close() error {
	s.dropClients()
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
	return nil
}

func (s *Server) dropClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	for _, c := range clients {
		c.wmu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "renderer closed")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		c.wmu.Unlock()
		c.conn.Close()
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{id: uuid.New().String(), conn: conn}

	// Frames presented after registration queue up on c.wmu until the
	// greeting and the current frame have been sent.
	c.wmu.Lock()
	s.mu.Lock()
	s.clients[c.id] = c
	hello := helloMessage(c.id, s.width, s.height)
	last := s.frame
	s.mu.Unlock()

	err = c.writeLocked(websocket.TextMessage, hello)
	if err == nil && last != nil {
		err = c.writeLocked(websocket.BinaryMessage, last)
	}
	c.wmu.Unlock()
	if err != nil {
		s.removeClient(c)
		return
	}
	s.log.Info("viewer connected", "id", c.id, "remote", r.RemoteAddr)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType == websocket.TextMessage && string(data) == closeCommand {
			s.log.Info("viewer closed the window", "id", c.id)
			s.mu.Lock()
			s.viewerClosed = true
			s.mu.Unlock()
		}
	}
	s.removeClient(c)
	s.log.Debug("viewer disconnected", "id", c.id)
}

func (s *Server) serveFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	frame := s.frame
	s.mu.Unlock()
	if frame == nil {
		http.Error(w, "no frame rendered yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(frame)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, viewerPage)
}
