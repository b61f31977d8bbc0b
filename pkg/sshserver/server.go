// Package sshserver exposes the chat protocol over SSH session
// channels: any ssh client gets the same line-oriented handshake and
// commands as a raw TCP client. Only the transport differs; accepted
// channels are handed to the same stream handler the TCP listener uses.
package sshserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"golang.org/x/crypto/ssh"
)

// StreamHandler processes one accepted session channel as a plain
// line-oriented stream. It owns the stream and must close it.
type StreamHandler func(stream io.ReadWriteCloser)

// Server wraps the SSH listener lifecycle.
type Server struct {
	Addr   string
	Config *ssh.ServerConfig

	logger *log.Logger
}

// New creates a Server with the provided host signer. Client
// authentication is disabled; usernames come from the chat handshake,
// not the SSH layer.
func New(addr string, signer ssh.Signer, logger *log.Logger) *Server {
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	cfg.AddHostKey(signer)

	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		Addr:   addr,
		Config: cfg,
		logger: logger,
	}
}

// ListenAndServe starts the SSH server until the context is cancelled
// or the accept call fails.
func (s *Server) ListenAndServe(ctx context.Context, handler StreamHandler) error {
	if handler == nil {
		return errors.New("sshserver: stream handler required")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("sshserver: listen %q: %w", s.Addr, err)
	}
	defer listener.Close()

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Printf("sshserver: listener close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("sshserver: listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return fmt.Errorf("sshserver: accept: %w", err)
		}

		go s.handleConn(ctx, conn, handler)
	}
}

func (s *Server) handleConn(ctx context.Context, tcpConn net.Conn, handler StreamHandler) {
	defer tcpConn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(tcpConn, s.Config)
	if err != nil {
		s.logger.Printf("sshserver: handshake failed: %v", err)
		return
	}
	defer sshConn.Close()

	go ssh.DiscardRequests(reqs)

	for {
		select {
		case <-ctx.Done():
			return
		case newChannel, ok := <-chans:
			if !ok {
				return
			}
			if newChannel.ChannelType() != "session" {
				newChannel.Reject(ssh.UnknownChannelType, "only session channels are supported")
				continue
			}

			channel, requests, err := newChannel.Accept()
			if err != nil {
				s.logger.Printf("sshserver: channel accept failed: %v", err)
				continue
			}

			go acknowledgeRequests(requests)
			go handler(channel)
		}
	}
}

// acknowledgeRequests grants the session requests an interactive client
// sends (shell, pty) so its stream starts flowing; everything else is
// refused.
func acknowledgeRequests(requests <-chan *ssh.Request) {
	for req := range requests {
		switch req.Type {
		case "shell", "pty-req", "env", "window-change":
			req.Reply(true, nil)
		default:
			req.Reply(false, nil)
		}
	}
}
