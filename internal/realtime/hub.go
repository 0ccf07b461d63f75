// Package realtime fans out per-video stats to websocket subscribers.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"vidtube/internal/models"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

type subscriber struct {
	videoID int64
	send    chan *models.VideoStats
	once    sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub holds the subscribers of each video
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[*subscriber]struct{}
	upgrader    websocket.Upgrader
	logger      *zap.Logger
	active      prometheus.Gauge
	dropped     prometheus.Counter
}

// NewHub creates a hub. An empty allowedOrigins accepts any origin.
func NewHub(allowedOrigins []string, reg prometheus.Registerer, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	h := &Hub{
		subscribers: make(map[int64]map[*subscriber]struct{}),
		logger:      logger,
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vidtube_live_subscribers",
			Help: "Open websocket stats subscriptions.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_live_subscribers_dropped_total",
			Help: "Subscribers disconnected for falling behind.",
		}),
	}
	reg.MustRegister(h.active, h.dropped)

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Publish delivers stats to every subscriber of the video without blocking.
// A subscriber whose buffer is full is dropped.
func (h *Hub) Publish(stats *models.VideoStats) {
	if stats == nil {
		return
	}

	h.mu.RLock()
	var slow []*subscriber
	for sub := range h.subscribers[stats.VideoID] {
		select {
		case sub.send <- stats:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.logger.Warn("Dropping slow live subscriber", zap.Int64("video_id", sub.videoID))
		h.dropped.Inc()
		h.unregister(sub)
	}
}

// Subscribers returns the number of open subscriptions for a video
func (h *Hub) Subscribers(videoID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[videoID])
}

// ServeWS upgrades the request and streams stats for videoID until the peer leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, videoID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.register(videoID)
	h.logger.Debug("Live subscriber connected", zap.Int64("video_id", videoID))

	go h.writePump(conn, sub)
	h.readPump(conn, sub)
}

func (h *Hub) register(videoID int64) *subscriber {
	sub := &subscriber{videoID: videoID, send: make(chan *models.VideoStats, sendBuffer)}

	h.mu.Lock()
	set, ok := h.subscribers[videoID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subscribers[videoID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	h.active.Inc()
	return sub
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	set, ok := h.subscribers[sub.videoID]
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			h.active.Dec()
		} else {
			ok = false
		}
		if len(set) == 0 {
			delete(h.subscribers, sub.videoID)
		}
	}
	h.mu.Unlock()

	if ok {
		sub.close()
	}
}

// readPump discards inbound frames and handles pongs.
func (h *Hub) readPump(conn *websocket.Conn, sub *subscriber) {
	defer func() {
		h.unregister(sub)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case stats, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(stats); err != nil {
				h.logger.Debug("Live write failed", zap.Int64("video_id", sub.videoID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
