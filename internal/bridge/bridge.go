// Package bridge serves the game core to browser boards over websockets.
// Every connection gets its own session; the board sends gestures and
// receives render states.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"chessbot/internal/core"
	"chessbot/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const (
	pingInterval = 15 * time.Second
	sendBuffer   = 64
)

// Msg is the envelope for both directions
type Msg struct {
	T string          `json:"t"`
	M json.RawMessage `json:"m,omitempty"`
}

type movePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type promotePayload struct {
	Piece string `json:"piece"`
}

type startPayload struct {
	Color string `json:"color"`
}

// ErrorPayload is sent for rejected gestures and bad messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Config struct {
	Mover        session.Mover
	Agent        string
	Timeout      time.Duration
	PlayerColor  core.Color
	AllowOrigins []string
	Logger       zerolog.Logger
}

type Bridge struct {
	cfg            Config
	originPatterns []string
	log            zerolog.Logger

	mu    sync.Mutex
	conns map[string]*conn
}

type conn struct {
	id   string
	ws   *websocket.Conn
	sess *session.Session
	send chan outbound
}

type outbound struct {
	seq  uint64 // zero for non-state messages
	data []byte
}

func New(cfg Config) *Bridge {
	var patterns []string
	for _, a := range cfg.AllowOrigins {
		if a = strings.TrimSpace(a); a != "" {
			patterns = append(patterns, a)
		}
	}
	if cfg.PlayerColor == 0 {
		cfg.PlayerColor = core.ColorWhite
	}
	return &Bridge{
		cfg:            cfg,
		originPatterns: patterns,
		log:            cfg.Logger.With().Str("component", "bridge").Logger(),
		conns:          map[string]*conn{},
	}
}

// Handler routes /ws and /health
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.ServeWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Connections returns the number of open boards
func (b *Bridge) Connections() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

// Close disconnects every board. Their sessions are closed as the read loops
// exit.
func (b *Bridge) Close() {
	b.mu.Lock()
	conns := make([]*conn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		_ = c.ws.Close(websocket.StatusGoingAway, "bridge shutting down")
	}
}

func (b *Bridge) ServeWS(w http.ResponseWriter, r *http.Request) {
	// Cross-origin upgrades are refused with 403 unless the origin host
	// matches one of the patterns
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: b.originPatterns})
	if err != nil {
		b.log.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("websocket accept failed")
		return
	}

	sess, err := session.New(session.Config{
		PlayerColor: b.cfg.PlayerColor,
		Mover:       b.cfg.Mover,
		Agent:       b.cfg.Agent,
		Timeout:     b.cfg.Timeout,
		Logger:      b.cfg.Logger,
	})
	if err != nil {
		b.log.Error().Err(err).Msg("session setup failed")
		_ = ws.Close(websocket.StatusInternalError, "session setup failed")
		return
	}

	c := &conn{id: uuid.NewString(), ws: ws, sess: sess, send: make(chan outbound, sendBuffer)}
	b.mu.Lock()
	b.conns[c.id] = c
	b.mu.Unlock()
	b.log.Info().Str("conn", c.id).Msg("board connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		sess.Close()
		b.mu.Lock()
		delete(b.conns, c.id)
		b.mu.Unlock()
		b.log.Info().Str("conn", c.id).Msg("board disconnected")
	}()

	sess.OnChange(func(rs session.RenderState) {
		c.push(outbound{seq: rs.Seq, data: encode("state", rs)})
	})

	go c.writeLoop(ctx)

	c.pushState()
	sess.Start()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		var m Msg
		if err := json.Unmarshal(data, &m); err != nil {
			c.pushError("bad_message", "message is not valid JSON")
			continue
		}
		b.dispatch(c, m)
	}
}

func (b *Bridge) dispatch(c *conn, m Msg) {
	s := c.sess
	var err error

	switch m.T {
	case "move":
		var p movePayload
		if err = json.Unmarshal(m.M, &p); err == nil {
			_, err = s.AttemptMove(p.From, p.To)
		}
	case "promote":
		var p promotePayload
		if err = json.Unmarshal(m.M, &p); err == nil {
			var kind core.PieceKind
			if kind, err = core.ParsePieceKind(p.Piece); err == nil {
				err = s.ResolvePromotion(kind)
			}
		}
	case "cancel":
		s.CancelPromotion()
	case "reset":
		s.Reset()
	case "retry":
		err = s.Retry()
	case "start":
		var p startPayload
		if err = json.Unmarshal(m.M, &p); err == nil {
			var color core.Color
			if color, err = core.ParseColor(p.Color); err == nil {
				err = s.ResetAs(color)
			}
		}
	case "state":
		c.pushState()
		return
	default:
		c.pushError("unknown_type", "unknown message type "+m.T)
		return
	}

	if err != nil {
		b.log.Debug().Str("conn", c.id).Str("t", m.T).Err(err).Msg("gesture rejected")
		c.pushError(errorCode(err), err.Error())
		// Let the board snap the piece back
		c.pushState()
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, core.ErrNotPlayersTurn):
		return "not_your_turn"
	case errors.Is(err, core.ErrPromotionPending):
		return "promotion_pending"
	case errors.Is(err, core.ErrNoPendingPromotion):
		return "no_pending_promotion"
	case errors.Is(err, core.ErrRequestInFlight):
		return "request_in_flight"
	case errors.Is(err, core.ErrGameOver):
		return "game_over"
	case errors.Is(err, core.ErrInvalidPiece):
		return "invalid_piece"
	case errors.Is(err, core.ErrNoRetry):
		return "no_retry"
	case errors.Is(err, core.ErrSessionClosed):
		return "closed"
	default:
		return "bad_request"
	}
}

func (c *conn) pushState() {
	rs := c.sess.RenderState()
	c.push(outbound{seq: rs.Seq, data: encode("state", rs)})
}

func (c *conn) pushError(code, msg string) {
	c.push(outbound{data: encode("error", ErrorPayload{Code: code, Message: msg})})
}

// push never blocks; a board that stops reading loses messages
func (c *conn) push(o outbound) {
	select {
	case c.send <- o:
	default:
	}
}

// writeLoop serializes writes. State notifications can arrive out of order
// from request goroutines, so older states are skipped.
func (c *conn) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
	}()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-c.send:
			if o.seq != 0 {
				if o.seq < lastSeq {
					continue
				}
				lastSeq = o.seq
			}
			if err := c.ws.Write(ctx, websocket.MessageText, o.data); err != nil {
				return
			}
		case <-ping.C:
			_ = c.ws.Ping(ctx)
		}
	}
}

func encode(t string, payload any) []byte {
	m, _ := json.Marshal(payload)
	data, _ := json.Marshal(Msg{T: t, M: m})
	return data
}
