package dashboard

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves the dashboard WebSocket feed and the admin shutdown control.
type Server struct {
	hub   *Hub
	admin *AdminControl
	addr  string
	srv   *http.Server
}

// NewServer wires the WebSocket upgrade endpoint and the admin control onto
// one HTTP server.
func NewServer(addr string, hub *Hub, admin *AdminControl) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[dashboard] ws upgrade failed: %v", err)
			return
		}
		hub.Register(conn)
	})
	mux.Handle("/admin/shutdown", admin)

	return &Server{
		hub:   hub,
		admin: admin,
		addr:  addr,
		srv:   &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[dashboard] listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[dashboard] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
