package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargepulse/internal/token"
)

// Replayer supplies the last broadcast projection for a booking so a client
// reconnecting mid-session does not start blind.
type Replayer interface {
	LastUpdate(ctx context.Context, bookingID string) ([]byte, error)
}

// Server upgrades HTTP connections to live-update WebSockets.
type Server struct {
	manager      *Manager
	tokens       *token.Service
	replayer     Replayer
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds the ws server. tokens may be nil, in which case clients
// identify themselves with a connection_id query parameter; replayer may be
// nil to disable replay.
func NewServer(manager *Manager, tokens *token.Service, replayer Replayer, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		manager:      manager,
		tokens:       tokens,
		replayer:     replayer,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleLive is the HTTP handler for the /ws/live endpoint.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	connectionID, bookingID, ok := s.identify(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(connectionID, conn, s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		cancel()
	})
	s.manager.Add(connection)

	if s.replayer != nil && bookingID != "" {
		if last, err := s.replayer.LastUpdate(ctx, bookingID); err == nil && len(last) > 0 {
			_ = connection.Enqueue(last)
		}
	}

	go connection.Start(ctx)
	s.logger.Info("live client connected",
		zap.String("connection_id", connectionID),
		zap.String("booking_id", bookingID))
}

func (s *Server) identify(w http.ResponseWriter, r *http.Request) (connectionID, bookingID string, ok bool) {
	if s.tokens != nil {
		claims, err := s.tokens.Validate(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return "", "", false
		}
		return claims.ConnectionID, claims.BookingID, true
	}

	connectionID = r.URL.Query().Get("connection_id")
	if connectionID == "" {
		http.Error(w, "connection_id is required", http.StatusBadRequest)
		return "", "", false
	}
	return connectionID, r.URL.Query().Get("booking_id"), true
}
