// Package tcpserver owns the plain-TCP listener lifecycle: bind once,
// accept in a loop, hand each accepted connection to a handler on its
// own goroutine. Protocol behavior lives entirely in the handler.
package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
)

// Handler processes one accepted connection. It owns the connection and
// is responsible for closing it.
type Handler func(conn net.Conn)

// Server wraps the TCP listener lifecycle.
type Server struct {
	Addr string

	logger *log.Logger
}

// New creates a Server listening on addr once ListenAndServe is called.
func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Addr:   addr,
		logger: logger,
	}
}

// ListenAndServe binds s.Addr and serves until the context is
// cancelled or the accept call fails.
func (s *Server) ListenAndServe(ctx context.Context, handler Handler) error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("tcpserver: listen %q: %w", s.Addr, err)
	}
	return s.Serve(ctx, listener, handler)
}

// Serve accepts from an existing listener until the context is
// cancelled or the accept call fails. An accept failure is fatal: the
// error is returned and the loop does not resume. Handlers already
// running are unaffected. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	if handler == nil {
		return errors.New("tcpserver: connection handler required")
	}
	defer listener.Close()

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Printf("tcpserver: listener close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("tcpserver: listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return fmt.Errorf("tcpserver: accept: %w", err)
		}

		go handler(conn)
	}
}
