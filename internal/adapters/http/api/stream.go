package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/playback"
	"github.com/okian/dreamxi/pkg/logger"
	"github.com/okian/dreamxi/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Stream message types.
const (
	messageStart = "start"
	messageFrame = "frame"
	messageEnd   = "end"
)

// PlaybackProvider prepares live playback of a completed match.
type PlaybackProvider interface {
	NewPlayback(ctx context.Context, id string, opts ...playback.Option) (*playback.Player, *model.Match, error)
}

// StreamHandler plays matches back over websockets at real-time cadence.
type StreamHandler struct {
	deps     PlaybackProvider
	upgrader websocket.Upgrader
	logger   logger.Logger
}

type streamStart struct {
	MatchID    string `json:"match_id"`
	Home       string `json:"home"`
	Away       string `json:"away"`
	DurationMS int64  `json:"duration_ms"`
	TickMS     int64  `json:"tick_ms"`
}

type streamMessage struct {
	Type     string          `json:"type"`
	ClientID string          `json:"client_id"`
	Start    *streamStart    `json:"start,omitempty"`
	Frame    *playback.Frame `json:"frame,omitempty"`
}

// NewStreamHandler creates a stream handler accepting the given origins.
func NewStreamHandler(deps PlaybackProvider, allowedOrigins []string, l logger.Logger) *StreamHandler {
	return &StreamHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: l,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// HandleStream handles GET /matches/{id}/stream requests.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	id := mux.Vars(r)["id"]
	clientID := uuid.NewString()
	log := h.logger.Named("stream")

	onGoal := func(ev model.MatchEvent) {
		log.Debug(r.Context(), "goal revealed",
			logger.String("client_id", clientID),
			logger.String("match_id", id),
			logger.Int("minute", ev.Minute),
			logger.String("scorer", ev.PlayerName),
		)
	}
	player, m, err := h.deps.NewPlayback(r.Context(), id, playback.WithOnGoal(onGoal))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(r.Context(), "websocket upgrade failed", logger.Error(WrapKind(op, ErrUpgrade, err)))
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.WebsocketConnected()
	defer metrics.WebsocketDisconnected()
	log.Info(r.Context(), "websocket connection established",
		logger.String("client_id", clientID),
		logger.String("match_id", id),
	)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel)

	clock := player.Clock()
	hello := streamMessage{
		Type:     messageStart,
		ClientID: clientID,
		Start: &streamStart{
			MatchID:    m.ID,
			Home:       teamLabel(m.Home),
			Away:       teamLabel(m.Away),
			DurationMS: clock.Duration.Milliseconds(),
			TickMS:     clock.Tick.Milliseconds(),
		},
	}
	if err := writeMessage(conn, hello); err != nil {
		return
	}

	if err := player.Start(ctx); err != nil {
		log.Error(ctx, "playback did not start", logger.String("client_id", clientID), logger.Error(err))
		return
	}
	defer player.Stop()

	h.pump(ctx, conn, player.Frames(), clientID)
}

// pump writes frames until playback ends or the client goes away.
func (h *StreamHandler) pump(ctx context.Context, conn *websocket.Conn, frames <-chan playback.Frame, clientID string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return

		case f, ok := <-frames:
			if !ok {
				_ = writeMessage(conn, streamMessage{Type: messageEnd, ClientID: clientID})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "full time"), time.Now().Add(writeWait))
				return
			}
			if err := writeMessage(conn, streamMessage{Type: messageFrame, ClientID: clientID, Frame: &f}); err != nil {
				h.logger.Debug(ctx, "websocket write failed", logger.String("client_id", clientID), logger.Error(err))
				return
			}
			metrics.RecordFrameSent()

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg streamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump discards client messages and cancels the stream once the peer is
// gone.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
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

func teamLabel(t *model.Team) string {
	if t == nil {
		return ""
	}
	return t.Label
}
