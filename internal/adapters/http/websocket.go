package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/findmypet/internal/adapters/nats"
	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/pkg/geospatial"
	"github.com/samirrijal/findmypet/internal/pkg/metrics"
)

// wsMessage is sent by the client to start or stop watching an area.
type wsMessage struct {
	Action   string  `json:"action"` // "watch" | "unwatch"
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radiusKm"`
}

// wsEvent is relayed to the client for each report change inside its area.
type wsEvent struct {
	Type           domain.PetEventType `json:"type"`
	PetID          int64               `json:"petId"`
	Title          string              `json:"title"`
	Category       domain.PetCategory  `json:"petType"`
	Distance       string              `json:"distance"`
	DistanceMeters float64             `json:"distanceMeters"`
	OccurredAt     time.Time           `json:"occurredAt"`
}

// watchArea is the client's current area of interest.
type watchArea struct {
	center   domain.Coordinate
	radiusKm float64
}

// relay decides whether e belongs to the watched area and builds the
// outgoing message. Only reported and found events are relayed.
func (a watchArea) relay(e *domain.PetEvent) (wsEvent, bool) {
	if e.Type != domain.PetReported && e.Type != domain.PetFound {
		return wsEvent{}, false
	}
	d, ok := geospatial.WithinRadius(a.center, e.Location, a.radiusKm)
	if !ok {
		return wsEvent{}, false
	}
	return wsEvent{
		Type:           e.Type,
		PetID:          e.PetID,
		Title:          e.Title,
		Category:       e.Category,
		Distance:       geospatial.FormatDistance(d),
		DistanceMeters: d,
		OccurredAt:     e.OccurredAt,
	}, true
}

func parseWatch(m wsMessage) (watchArea, bool) {
	c := domain.Coordinate{Lat: m.Lat, Lng: m.Lng}
	if !c.Valid() || m.RadiusKm < domain.MinRadiusKm || m.RadiusKm > domain.MaxRadiusKm {
		return watchArea{}, false
	}
	return watchArea{center: c, radiusKm: m.RadiusKm}, true
}

// WebSocketHandler returns a handler that relays lost-pet events near a
// client-chosen point. Clients send
// {"action":"watch","lat":44.8,"lng":20.4,"radiusKm":5}
// and receive one message per nearby report or found event.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var (
			mu    sync.Mutex // guards writes and area
			area  *watchArea
			write = func(v interface{}) error {
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				return c.WriteMessage(websocket.TextMessage, data)
			}
		)
		writeJSON := func(v interface{}) error {
			mu.Lock()
			defer mu.Unlock()
			return write(v)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		sub, err := nc.Subscribe(natsadapter.SubjectAll, func(msg *nats.Msg) {
			e, err := natsadapter.DecodePetEvent(msg.Data)
			if err != nil {
				log.Debug("ws: skip undecodable event", "subject", msg.Subject, "error", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if area == nil {
				return
			}
			if out, ok := area.relay(e); ok {
				_ = write(out)
			}
		})
		if err != nil {
			log.Error("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "watch":
				a, ok := parseWatch(m)
				if !ok {
					_ = writeJSON(map[string]string{"error": "lat, lng and radiusKm (1-100) are required"})
					continue
				}
				mu.Lock()
				area = &a
				err := write(map[string]interface{}{"status": "watching", "lat": m.Lat, "lng": m.Lng, "radiusKm": m.RadiusKm})
				mu.Unlock()
				if err != nil {
					return
				}

			case "unwatch":
				mu.Lock()
				area = nil
				err := write(map[string]string{"status": "idle"})
				mu.Unlock()
				if err != nil {
					return
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		log.Info("ws client disconnected")
	}
}
