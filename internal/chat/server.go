package chat

import (
	"log/slog"
	"net"
	"time"
)

type Server struct {
	cfg      Config
	logger   *slog.Logger
	hub      *Hub
	listener net.Listener
}

func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		hub:    NewHub(cfg, logger),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.hub.Run()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", s.cfg.Addr)
	return nil
}

// Addr reports the listener's actual address, useful when the configured
// port is 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener, drains the hub, and waits at most the configured
// grace period. The caller may exit as soon as Stop returns; stragglers are
// abandoned rather than allowed to hold the process open.
func (s *Server) Stop() {
	s.logger.Info("shutting down")

	if s.listener != nil {
		s.listener.Close()
	}

	s.hub.Stop()
	select {
	case <-s.hub.Done():
		s.logger.Info("shutdown complete")
	case <-time.After(s.cfg.ShutdownGrace.Std()):
		s.logger.Error("shutdown deadline exceeded, abandoning remaining work")
	}
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed: normal shutdown.
			return
		}

		c := NewClient(conn, s.cfg)
		s.logger.Info("client connected", "addr", conn.RemoteAddr().String(), "conn_id", c.ID)

		select {
		case s.hub.Events() <- Event{Type: EventConnect, Client: c}:
		case <-s.hub.Done():
			_ = conn.Close()
			return
		}

		StartOutboundWriter(c.Conn, c.Out)
		go ReadLoop(c, s.hub.Events(), s.hub.Done(), s.logger)
	}
}
