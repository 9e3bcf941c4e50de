package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/muurk/wsrecv/internal/config"
	"github.com/muurk/wsrecv/internal/discovery"
	"github.com/muurk/wsrecv/internal/logging"
	"github.com/muurk/wsrecv/internal/protocol"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Start waits for connections to finish
const shutdownTimeout = 10 * time.Second

// MessageHandler receives every message decoded on any connection.
// It is called from the connection's goroutine.
type MessageHandler func(remoteAddr string, msg protocol.Message)

// Option configures a Server
type Option func(*Server)

// WithMessageHandler registers a consumer for decoded messages
func WithMessageHandler(fn MessageHandler) Option {
	return func(s *Server) {
		s.onMessage = fn
	}
}

// Server accepts TCP connections, performs the WebSocket upgrade handshake
// and decodes the frames each client sends
type Server struct {
	config      *config.ServerConfig
	validator   *protocol.Validator
	capture     *Capture
	onMessage   MessageHandler
	listener    net.Listener
	advertiser  *discovery.Advertiser
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]net.Conn
}

// New creates a new Server instance
func New(cfg *config.ServerConfig, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Server{
		config:      cfg,
		validator:   protocol.NewValidator(cfg.AllowedOrigins),
		activeConns: make(map[string]net.Conn),
	}

	if cfg.AnalysisDir != "" {
		capture, err := NewCapture(cfg.AnalysisDir)
		if err != nil {
			return nil, fmt.Errorf("failed to set up message capture: %w", err)
		}
		s.capture = capture
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Listen opens the TCP listener without accepting connections yet
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
		zap.Strings("allowed_origins", s.config.AllowedOrigins),
	)
	return nil
}

// Addr returns the listener address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens, optionally advertises the server over mDNS, and serves
// until SIGINT/SIGTERM or a fatal listener error
func (s *Server) Start() error {
	logging.Info("Starting WebSocket server",
		zap.String("addr", s.config.Addr()),
		zap.String("log_level", s.config.LogLevel),
		zap.String("analysis_dir", s.config.AnalysisDir),
		zap.Int("max_message_size", s.config.MaxMessageSize),
		zap.Duration("idle_timeout", s.config.IdleTimeout),
	)

	if err := s.Listen(); err != nil {
		return err
	}

	if s.config.Advertise {
		port := s.listener.Addr().(*net.TCPAddr).Port
		advertiser, err := discovery.Advertise(s.config.InstanceName, port)
		if err != nil {
			// Not fatal: the server is still reachable by address
			logging.Warn("Failed to advertise server over mDNS", zap.Error(err))
		} else {
			s.advertiser = advertiser
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections until the listener is closed
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection runs one client from HTTP request to WebSocket close
func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")

	// The reader may buffer bytes past the request; they belong to the
	// WebSocket stream and are fed to the parser first
	reader := bufio.NewReader(conn)

	req, err := ReadHTTPRequest(reader)
	if err != nil {
		logging.Error("Failed to read HTTP request",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	LogHTTPRequestDetails(req, remoteAddr)

	if !IsUpgradeRequest(req) {
		if err := WritePlainResponse(conn, remoteAddr); err != nil {
			logging.Error("Failed to send plain HTTP response",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
		}
		return
	}

	decision := s.validator.Check(req.Method, req.Header, req.Header.Get("Origin"))
	logging.LogHandshake(remoteAddr, decision.OK, decision.Err)

	if !decision.OK {
		if err := WriteHTTP400Response(conn, remoteAddr); err != nil {
			logging.Error("Failed to send HTTP 400 response",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
		}
		return
	}

	if err := WriteHTTP101Response(conn, remoteAddr, protocol.AcceptKey(decision.ClientKey)); err != nil {
		logging.Error("Failed to send HTTP 101 response",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	if err := s.HandleWebSocketConnection(conn, reader, remoteAddr); err != nil {
		logging.Warn("WebSocket connection error",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
	}
}

// Shutdown stops accepting connections, closes active ones and waits for
// their goroutines until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.advertiser != nil {
		s.advertiser.Shutdown()
	}

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
		err = ctx.Err()
	}

	logging.Sync()
	return err
}

// GetActiveConnections returns the number of active connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
