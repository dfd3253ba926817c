package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mdlayher/vsock"
	"go.uber.org/zap"

	"github.com/cloudx-io/secondprice/resolverapi"
)

// Server accepts one JSON request per connection and answers it
type Server struct {
	cfg    Config
	signer *Signer
	logger *zap.Logger
}

// NewServer creates a server. signer may be nil to disable result signing.
func NewServer(cfg Config, signer *Signer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	return &Server{cfg: cfg, signer: signer, logger: logger}
}

// Listen opens the configured listener: vsock when VsockPort is set, TCP otherwise.
func (s *Server) Listen() (net.Listener, error) {
	if s.cfg.VsockPort > 0 {
		listener, err := vsock.Listen(s.cfg.VsockPort, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create vsock listener: %w", err)
		}
		s.logger.Info("Resolver listening on vsock", zap.Uint32("port", s.cfg.VsockPort))
		return listener, nil
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create tcp listener: %w", err)
	}
	s.logger.Info("Resolver listening on tcp", zap.String("addr", listener.Addr().String()))
	return listener, nil
}

// ListenAndServe opens the configured listener and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then closes
// the listener and waits for in-flight connections to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	semaphore := make(chan struct{}, s.cfg.MaxWorkers)
	s.logger.Info("Worker pool initialized", zap.Int("max_workers", s.cfg.MaxWorkers))

	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("Failed to close listener", zap.Error(err))
		}
	}()

	var acceptDelay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			acceptDelay = nextAcceptDelay(acceptDelay)
			s.logger.Error("Failed to accept connection", zap.Error(err), zap.Duration("retry_in", acceptDelay))
			select {
			case <-time.After(acceptDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		acceptDelay = 0

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			wg.Add(1)
			go func(c net.Conn) {
				defer wg.Done()
				defer func() { <-semaphore }() // Release worker slot
				s.handleConnection(c)
			}(conn)
		default:
			s.logger.Info("No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				s.logger.Error("Failed to close rejected connection", zap.Error(err))
			}
		}
	}
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// nextAcceptDelay doubles the wait after consecutive Accept failures, capped at maxAcceptDelay
func nextAcceptDelay(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptDelay
	}
	return min(prev*2, maxAcceptDelay)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in handleConnection", zap.Any("panic", r))
		}
		if err := conn.Close(); err != nil {
			s.logger.Debug("Failed to close connection", zap.Error(err))
		}
	}()

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}

	var raw json.RawMessage
	if err := json.NewDecoder(conn).Decode(&raw); err != nil {
		s.logger.Error("Failed to read request", zap.Error(err))
		s.writeResponse(conn, "", errorResponse(fmt.Sprintf("Failed to read request: %v", err)))
		return
	}

	response, requestType := s.dispatch(raw)
	s.writeResponse(conn, requestType, response)
}

// dispatch routes a raw request by its "type" field.
func (s *Server) dispatch(raw []byte) (any, string) {
	var baseReq struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &baseReq); err != nil {
		s.logger.Error("Failed to decode base request", zap.Error(err))
		return errorResponse(fmt.Sprintf("Failed to decode request: %v", err)), ""
	}

	s.logger.Debug("Received request", zap.String("type", baseReq.Type))

	switch baseReq.Type {
	case resolverapi.TypePing:
		return resolverapi.PongResponse{
			Type:      resolverapi.TypePong,
			Message:   "Resolver is healthy",
			Timestamp: time.Now().Unix(),
		}, baseReq.Type

	case resolverapi.TypeKeyRequest:
		keyResp, err := HandleKeyRequest(s.signer)
		if err != nil {
			s.logger.Error("Key request failed", zap.Error(err))
			return errorResponse(fmt.Sprintf("Key request failed: %v", err)), baseReq.Type
		}
		return keyResp, baseReq.Type

	case resolverapi.TypeAuctionRequest:
		var auctionReq resolverapi.AuctionRequest
		if err := json.Unmarshal(raw, &auctionReq); err != nil {
			s.logger.Error("Failed to decode auction request", zap.Error(err))
			return errorResponse(fmt.Sprintf("Failed to decode auction request: %v", err)), baseReq.Type
		}
		var signer ResultSigner
		if s.signer != nil {
			signer = s.signer
		}
		return ProcessAuction(s.logger, signer, auctionReq), baseReq.Type

	default:
		return errorResponse(fmt.Sprintf("Unknown request type: %s", baseReq.Type)), baseReq.Type
	}
}

func (s *Server) writeResponse(conn net.Conn, requestType string, response any) {
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
		return
	}
	s.logger.Debug("Sent response", zap.String("type", requestType))
}

func errorResponse(message string) resolverapi.ErrorResponse {
	return resolverapi.ErrorResponse{
		Type:    resolverapi.TypeError,
		Message: message,
	}
}
