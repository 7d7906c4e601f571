// Package feed implements a Hub for broadcasting tournament status changes in real time.
// Moderators' dashboards and public listings subscribe (over Server-Sent Events) and see a
// tournament appear or disappear the moment its status changes, without polling the API.
package feed

import (
	"context"
	"sync"
)

// AllTopic is the topic that receives every status change regardless of the new status.
const AllTopic = "all"

// sendBuffer is how many undelivered messages a client may queue before it is dropped.
const sendBuffer = 16

// Client represents a single connected subscriber.
type Client struct {
	Topic string      // A tournament status ("approved", ...) or AllTopic
	Send  chan []byte // Outgoing messages; closed by the Hub when the client is removed
}

// NewClient returns a client subscribed to topic with a buffered Send channel.
func NewClient(topic string) *Client {
	return &Client{Topic: topic, Send: make(chan []byte, sendBuffer)}
}

// Message is one status change to deliver to the subscribers of Topic and of AllTopic.
type Message struct {
	Topic string
	Data  []byte
}

// Hub tracks subscribers grouped by topic.
// All writes to the clients map happen on the Run goroutine; Count takes the read lock.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a Hub. Call Run in its own goroutine before using it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// On exit every remaining client's Send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for topic, clients := range h.clients {
			for client := range clients {
				close(client.Send)
			}
			delete(h.clients, topic)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg.Topic, msg.Data)
			if msg.Topic != AllTopic {
				h.deliver(AllTopic, msg.Data)
			}
		}
	}
}

// deliver sends data to every client of topic. A client whose buffer is full is
// removed on the spot rather than blocking delivery to the rest.
func (h *Hub) deliver(topic string, data []byte) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.Topic]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.Topic)
	}
}

// Publish queues data for the subscribers of topic and of AllTopic.
// It never blocks the caller: if the hub is stopped or its queue is full the message is
// dropped and Publish returns false.
func (h *Hub) Publish(topic string, data []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- &Message{Topic: topic, Data: data}:
		return true
	default:
		return false
	}
}

// Register adds a client. It returns false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its Send channel. Unknown clients are ignored.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns the number of clients subscribed to topic.
func (h *Hub) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
