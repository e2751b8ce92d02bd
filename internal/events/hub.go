package events

import "sync"

// Progress is one per-record pipeline notification.
type Progress struct {
	CompanyNumber string
	CompanyName   string
	Status        string
	URL           string
	Confidence    float64
	Processed     int
	Total         int
}

// Hub fans progress events out to subscribers. Slow subscribers drop
// events rather than stall the pipeline.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Progress]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Progress]struct{})}
}

func (h *Hub) Subscribe() chan Progress {
	ch := make(chan Progress, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Progress) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Publish(p Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- p:
		default:
			// drop if slow
		}
	}
}
