package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/bot"
	"github.com/stratushq/stratus/internal/bus"
	"github.com/stratushq/stratus/internal/channel"
	"github.com/stratushq/stratus/internal/config"
	"github.com/stratushq/stratus/internal/dialog"
	"github.com/stratushq/stratus/internal/nlu"
	"github.com/stratushq/stratus/internal/state"
	"github.com/stratushq/stratus/internal/weather"
)

const turnFailedMessage = "Sorry, I encountered an error processing your message."

// Options for creating a Gateway. The zero value wires real collaborators
// from the config; tests inject fakes.
type Options struct {
	Store      state.Store
	Recognizer nlu.Recognizer
	Provider   weather.Provider
	Logger     *zerolog.Logger
	SignalChan chan os.Signal // for testing signal handling
}

// Gateway wires the channels, the turn handler, and the weather refresher
// together and runs the inbound processing loop.
type Gateway struct {
	cfg        *config.Config
	log        zerolog.Logger
	bus        *bus.MessageBus
	bot        *bot.Bot
	store      state.Store
	weather    *weather.Service
	refresher  *weather.Refresher
	channels   *channel.ChannelManager
	signalChan chan os.Signal // for testing
}

// New creates a Gateway with default options
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg}

	if opts.Logger != nil {
		g.log = *opts.Logger
	} else {
		g.log = newLogger(cfg.Log.Level)
	}

	g.bus = bus.NewMessageBus(config.DefaultBufSize)

	store := opts.Store
	if store == nil {
		var err error
		store, err = newStore(cfg)
		if err != nil {
			return nil, err
		}
	}
	g.store = store

	provider := opts.Provider
	if provider == nil {
		var err error
		provider, err = weather.NewClient(cfg.Weather.APIKey, cfg.Weather.CityID, cfg.Weather.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("create weather client: %w", err)
		}
	}

	ttl, err := cfg.WeatherTTL()
	if err != nil {
		return nil, err
	}
	g.weather = weather.NewService(provider, weather.NewCache(ttl), g.log)
	g.refresher = weather.NewRefresher(g.weather, cfg.Weather.Refresh, g.log)

	recognizer := opts.Recognizer
	if recognizer == nil {
		recognizer, err = nlu.NewHTTPRecognizer(cfg.Recognizer.Endpoint, cfg.Recognizer.AppID, cfg.Recognizer.Key)
		if err != nil {
			return nil, fmt.Errorf("create recognizer: %w", err)
		}
	}

	dialogs := dialog.NewSet(dialog.NewGreeting())
	b, err := bot.New(recognizer, g.weather, g.store, dialogs, g.log)
	if err != nil {
		return nil, err
	}
	g.bot = b

	g.signalChan = opts.SignalChan

	chMgr, err := channel.NewChannelManager(cfg.Channels, cfg.Gateway, g.bus, g.log)
	if err != nil {
		return nil, fmt.Errorf("create channel manager: %w", err)
	}
	g.channels = chMgr

	return g, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func newStore(cfg *config.Config) (state.Store, error) {
	switch cfg.State.Backend {
	case "", "memory":
		return state.NewMemoryStore(), nil
	case "sqlite":
		path := cfg.State.Sqlite.Path
		if path == "" {
			path = filepath.Join(config.ConfigDir(), "data", "state.db")
		}
		return state.NewSqliteStore(path)
	case "redis":
		return state.NewRedisStore(cfg.State.Redis.Addr, cfg.State.Redis.Password, cfg.State.Redis.DB, cfg.State.Redis.Prefix)
	case "postgres":
		return state.NewPostgresStore(cfg.State.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	g.log.Info().Strs("channels", g.channels.EnabledChannels()).Msg("channels started")

	if err := g.refresher.Start(ctx); err != nil {
		g.log.Warn().Err(err).Msg("weather refresher not started")
	}

	go g.processLoop(ctx)

	g.log.Info().Str("host", g.cfg.Gateway.Host).Int("port", g.cfg.Gateway.Port).Msg("gateway running")

	// Use injected signal channel for testing, or create default
	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	g.log.Info().Msg("shutting down")
	return g.Shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			g.handleTurn(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) handleTurn(ctx context.Context, msg bus.InboundActivity) {
	act := msg.Activity
	g.log.Info().
		Str("session", msg.SessionKey()).
		Str("type", act.Type).
		Str("text", truncate(act.Text, 80)).
		Msg("inbound activity")

	tc := activity.NewTurnContext(act)
	if err := g.bot.OnTurn(ctx, tc); err != nil {
		g.log.Error().Err(err).Str("session", msg.SessionKey()).Msg("turn failed")
		g.bus.Outbound <- bus.OutboundActivity{
			Channel:  msg.Channel,
			Activity: act.Reply(turnFailedMessage),
		}
		return
	}

	for _, reply := range tc.Responses() {
		g.bus.Outbound <- bus.OutboundActivity{Channel: msg.Channel, Activity: reply}
	}
}

func (g *Gateway) Shutdown() error {
	g.refresher.Stop()
	_ = g.channels.StopAll()
	if closer, ok := g.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			g.log.Warn().Err(err).Msg("close state store")
		}
	}
	g.log.Info().Msg("shutdown complete")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
