package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oddsight/oddsight/internal/kalshi"
)

// Config configures a Subscriber.
type Config struct {
	URL                string        // WebSocket URL
	Tickers            []string      // Market tickers to subscribe
	PingInterval       time.Duration // Interval between client pings
	ReadTimeout        time.Duration // Max silence before the read fails
	WriteTimeout       time.Duration // Write deadline for sends
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:       30 * time.Second,
		ReadTimeout:        60 * time.Second,
		WriteTimeout:       5 * time.Second,
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
	}
}

// Subscriber maintains one WebSocket connection subscribed to the ticker
// channel and dispatches updates to the handler.
type Subscriber struct {
	cfg     Config
	creds   *kalshi.Credentials
	handler Handler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connected atomic.Bool
	cmdID     atomic.Int64

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// NewSubscriber creates a subscriber. Credentials may be nil for servers
// that accept unsigned handshakes.
func NewSubscriber(cfg Config, creds *kalshi.Credentials, handler Handler, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		cfg:     cfg,
		creds:   creds,
		handler: handler,
		logger:  logger,
	}
}

// Start connects and begins dispatching updates. The run loop keeps
// reconnecting until Stop is called or the context is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.runLoop()

	s.logger.Info("stream subscriber started",
		"url", s.cfg.URL,
		"tickers", len(s.cfg.Tickers),
	)
	return nil
}

// Stop shuts the subscriber down, waiting up to the context deadline.
func (s *Subscriber) Stop(ctx context.Context) error {
	s.logger.Info("stopping stream subscriber")

	if s.cancel != nil {
		s.cancel()
	}
	s.closeConn()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("stream subscriber stopped")
	case <-ctx.Done():
		s.logger.Warn("stream subscriber stop timed out")
	}
	return nil
}

// IsConnected reports the current connection state.
func (s *Subscriber) IsConnected() bool {
	return s.connected.Load()
}

// runLoop connects, consumes, and reconnects with jittered backoff.
func (s *Subscriber) runLoop() {
	defer s.wg.Done()

	delay := s.cfg.ReconnectBaseDelay
	for {
		if s.ctx.Err() != nil {
			return
		}

		err := s.runOnce()
		s.connected.Store(false)
		if s.ctx.Err() != nil {
			return
		}

		wait := delay/2 + time.Duration(rand.Int63n(int64(delay)))
		s.logger.Warn("stream disconnected, reconnecting",
			"error", err,
			"wait", wait,
		)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(wait):
		}

		delay *= 2
		if delay > s.cfg.ReconnectMaxDelay {
			delay = s.cfg.ReconnectMaxDelay
		}
	}
}

// runOnce dials, subscribes, and reads until the connection fails.
func (s *Subscriber) runOnce() error {
	header := http.Header{}
	if s.creds != nil {
		signed, err := s.creds.SignWebSocket()
		if err != nil {
			return err
		}
		for k, v := range signed {
			header.Set(k, v)
		}
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(s.ctx, s.cfg.URL, header)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	s.conn = conn
	s.writeMu.Unlock()
	s.connected.Store(true)
	s.logger.Debug("websocket connected", "url", s.cfg.URL)

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	if err := s.subscribe(); err != nil {
		s.closeConn()
		return err
	}

	pingDone := make(chan struct{})
	defer close(pingDone)
	s.wg.Add(1)
	go s.pingLoop(conn, pingDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.closeConn()
			return err
		}
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		s.handleMessage(data, time.Now())
	}
}

// subscribe sends the ticker subscribe command. The response is handled
// asynchronously by the read loop.
func (s *Subscriber) subscribe() error {
	cmd := Command{
		ID:  s.cmdID.Add(1),
		Cmd: "subscribe",
		Params: SubscribeParams{
			Channels:      []string{"ticker"},
			MarketTickers: s.cfg.Tickers,
		},
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return s.send(data)
}

func (s *Subscriber) send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Subscriber) closeConn() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn != nil {
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
		s.conn = nil
	}
}

// pingLoop keeps the connection alive until the read loop exits.
func (s *Subscriber) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// handleMessage parses a raw frame and dispatches ticker updates.
func (s *Subscriber) handleMessage(data []byte, receivedAt time.Time) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err == nil && resp.ID != 0 {
		switch resp.Type {
		case "subscribed", "ok":
			s.logger.Debug("subscription confirmed", "id", resp.ID)
			return
		case "error":
			var errMsg ErrorMsg
			json.Unmarshal(resp.Msg, &errMsg)
			s.logger.Error("subscription rejected",
				"code", errMsg.Code,
				"message", errMsg.Message,
			)
			return
		}
	}

	var msg DataMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "ticker" {
		return
	}

	var tk tickerMsg
	if err := json.Unmarshal(msg.Msg, &tk); err != nil {
		s.logger.Warn("bad ticker payload", "error", err)
		return
	}

	s.handler.HandleTicker(TickerUpdate{
		MarketTicker: tk.MarketTicker,
		Price:        kalshi.CentsToProb(tk.Price),
		YesBid:       kalshi.CentsToProb(tk.YesBid),
		YesAsk:       kalshi.CentsToProb(tk.YesAsk),
		Volume:       tk.Volume,
		OpenInterest: tk.OpenInterest,
		Ts:           tk.Ts,
		ReceivedAt:   receivedAt,
	})
}
