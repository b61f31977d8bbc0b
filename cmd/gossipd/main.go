package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/thetrick/gossip/internal/chat"
	"github.com/thetrick/gossip/pkg/sshserver"
	"github.com/thetrick/gossip/pkg/tcpserver"
)

func main() {
	addr := flag.String("addr", ":25252", "TCP address for the chat server")
	sshAddr := flag.String("ssh-addr", "", "optional SSH address serving the same protocol (disabled when empty)")
	hostKeyPath := flag.String("host-key", "configs/ssh_host_key", "path to the SSH host private key (auto-generated if missing)")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	users := chat.NewRoster("users")
	registry := chat.NewRegistry(users)

	handle := func(stream io.ReadWriteCloser) {
		chat.HandleSession(users, registry, stream, logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errs := make(chan error, 2)

	tcp := tcpserver.New(*addr, logger)
	go func() {
		errs <- tcp.ListenAndServe(ctx, func(conn net.Conn) {
			handle(conn)
		})
	}()

	if *sshAddr != "" {
		signer, err := sshserver.LoadOrGenerateSigner(*hostKeyPath)
		if err != nil {
			logger.Fatalf("failed to prepare host key: %v", err)
		}

		ssh := sshserver.New(*sshAddr, signer, logger)
		go func() {
			errs <- ssh.ListenAndServe(ctx, handle)
		}()
	}

	err := <-errs
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("server stopped with error: %v", err)
	}
}
