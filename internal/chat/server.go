package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
)

const readBufferSize = 16 * 1024

// Options tune the chat server. Zero values pick the defaults.
type Options struct {
	Addr             string
	EventBuffer      int
	MaxPendingInput  int // bytes of unterminated input per session, 0 = unlimited
	MaxOutboundBytes int // queued output per session, 0 = unlimited
}

func (o Options) withDefaults() Options {
	if o.EventBuffer <= 0 {
		o.EventBuffer = 128
	}
	return o
}

type Server struct {
	opts     Options
	logger   *zerolog.Logger
	reactor  *Reactor
	listener net.Listener
}

func NewServer(opts Options, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	opts = opts.withDefaults()
	return &Server{
		opts:    opts,
		logger:  logger,
		reactor: NewReactor(opts, logger),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.listener = ln

	go s.reactor.Run()
	go s.acceptLoop(ln)

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("chat server started")
	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Addr is the bound listen address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats reports the current sessions and rooms.
func (s *Server) Stats(ctx context.Context) (Stats, error) {
	return s.reactor.Stats(ctx)
}

func (s *Server) Stop() {
	s.logger.Info().Msg("shutting down chat server")

	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.reactor.Stop()
	s.reactor.Wait()

	s.logger.Info().Msg("chat server shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			time.Sleep(50 * time.Millisecond)
			continue
		}

		sess := newSession(conn, s.opts.MaxOutboundBytes, *s.logger)
		if !s.reactor.Post(Event{Type: EventAccept, Session: sess}) {
			_ = conn.Close()
			return
		}
		go readLoop(sess, s.reactor)
	}
}
