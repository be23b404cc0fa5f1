// Package telemetry expõe um endpoint WebSocket com métricas do
// visualizador. Ferramentas externas conectam em /ws e recebem
// snapshots JSON periódicos.
package telemetry

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Snapshot é o payload enviado a cada tick de telemetria.
type Snapshot struct {
	Timestamp   int64      `json:"timestamp"`
	FPS         int32      `json:"fps"`
	CameraPos   [3]float32 `json:"camera_pos"`
	ChunkCount  int        `json:"chunk_count"`
	PendingGen  int        `json:"pending_gen"`
	InFlightGen int        `json:"in_flight_gen"`
	PendingLux  int        `json:"pending_light"`
	PendingMesh int        `json:"pending_mesh"`
	Models      int        `json:"models"`
	DrawnSec    int        `json:"drawn_sections"`
	CulledSec   int        `json:"culled_sections"`
	GPUBytes    int64      `json:"gpu_bytes"`
	Daylight    float32    `json:"daylight"`
}

// Client é uma conexão inscrita no hub. O mutex serializa escritas,
// já que gorilla/websocket não permite writers concorrentes.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) writeSafe(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Hub mantém o conjunto de clientes e distribui snapshots.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[Telemetry] cliente conectado (%d ativos)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.conn.Close()
				log.Printf("[Telemetry] cliente desconectado (%d ativos)", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				if err := client.writeSafe(websocket.TextMessage, message); err != nil {
					delete(h.clients, client)
					client.conn.Close()
				}
			}

		case <-h.done:
			for client := range h.clients {
				client.conn.Close()
			}
			return
		}
	}
}

// Server publica snapshots para clientes WebSocket. Desativado quando
// o endereço é vazio.
type Server struct {
	hub      *Hub
	http     *http.Server
	interval time.Duration
	lastSend time.Time
	enabled  bool
}

// NewServer sobe o endpoint em addr. addr vazio desativa a telemetria.
func NewServer(addr string, interval time.Duration) *Server {
	s := &Server{interval: interval}
	if addr == "" {
		return s
	}

	s.hub = newHub()
	s.enabled = true

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.http = &http.Server{Addr: addr, Handler: mux}

	go s.hub.run()
	go func() {
		log.Printf("[Telemetry] escutando em %s", addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Telemetry] servidor encerrou: %v", err)
		}
	}()
	return s
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Telemetry] falha no upgrade: %v", err)
		return
	}
	client := &Client{conn: conn}
	s.hub.register <- client

	// Drena mensagens de controle até a conexão cair
	go func() {
		defer func() { s.hub.unregister <- client }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish envia um snapshot se o intervalo mínimo passou. Descarta em
// vez de bloquear quando o canal de broadcast está cheio.
func (s *Server) Publish(snap Snapshot) {
	if !s.enabled {
		return
	}
	now := time.Now()
	if now.Sub(s.lastSend) < s.interval {
		return
	}
	s.lastSend = now

	snap.Timestamp = now.UnixMilli()
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[Telemetry] falha ao serializar snapshot: %v", err)
		return
	}
	select {
	case s.hub.broadcast <- data:
	default:
	}
}

// Close encerra o servidor HTTP e derruba os clientes.
func (s *Server) Close() {
	if !s.enabled {
		return
	}
	close(s.hub.done)
	s.http.Close()
}
