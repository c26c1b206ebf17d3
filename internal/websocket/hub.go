package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// topicAll is the topic of clients that receive every event.
const topicAll = ""

type publication struct {
	topic string
	data  []byte
}

// Hub maintains the set of active clients and broadcasts activity events to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound publications, fanned out by Run.
	broadcast chan publication

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of topics (event types) to the clients subscribed to them.
	subscriptions map[string]map[*Client]bool

	// Called with the client count after every change, if set.
	OnClientCount func(int)

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan publication, 256),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client, client.Topic)
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
			h.reportCount()
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
				h.reportCount()
			}
		case pub := <-h.broadcast:
			h.deliver(topicAll, pub.data)
			if pub.topic != topicAll {
				h.deliver(pub.topic, pub.data)
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Join registers client. It reports false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters client. It returns immediately once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Publish queues v for every client subscribed to topic and for clients subscribed to
// everything. It never blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(topic string, v any) {
	data, err := json.Marshal(Message{Action: ActionEvent, Payload: v})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode live message")
		return
	}
	select {
	case h.broadcast <- publication{topic: topic, data: data}:
	default:
		log.Warn().Str("topic", topic).Msg("Live feed queue full, dropping message")
	}
}

// deliver sends data to all clients subscribed to topic.
func (h *Hub) deliver(topic string, data []byte) {
	for client := range h.subscriptions[topic] {
		select {
		case client.Send <- data:
		default:
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}

func (h *Hub) reportCount() {
	if h.OnClientCount != nil {
		h.OnClientCount(len(h.clients))
	}
}
