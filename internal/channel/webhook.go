package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/bus"
	"github.com/stratushq/stratus/internal/config"
)

const webhookChannelName = "webhook"

var validate = validator.New()

// WebhookChannel accepts Bot Framework style activities over HTTP. Inbound
// turns arrive as POSTed activities and replies are delivered back to the
// caller's serviceUrl.
type WebhookChannel struct {
	BaseChannel
	addr   string
	app    *fiber.App
	client *http.Client
}

func NewWebhookChannel(cfg config.WebhookConfig, gwCfg config.GatewayConfig, b *bus.MessageBus, logger zerolog.Logger) (*WebhookChannel, error) {
	host := gwCfg.Host
	if host == "" {
		host = config.DefaultHost
	}
	port := gwCfg.Port
	if port == 0 {
		port = config.DefaultPort
	}

	ch := &WebhookChannel{
		BaseChannel: NewBaseChannel(webhookChannelName, b, cfg.AllowFrom, logger),
		addr:        fmt.Sprintf("%s:%d", host, port),
		client:      &http.Client{Timeout: 10 * time.Second},
	}
	ch.app = ch.buildApp()
	return ch, nil
}

func (w *WebhookChannel) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "stratus",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "stratus"})
	})
	app.Post("/api/messages", w.handleActivity)
	return app
}

func (w *WebhookChannel) handleActivity(c *fiber.Ctx) error {
	var act activity.Activity
	if err := c.BodyParser(&act); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed activity")
	}
	if err := validate.Struct(&act); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !w.IsAllowed(act.From.ID) {
		w.log.Warn().Str("sender", act.From.ID).Msg("rejected activity from disallowed sender")
		return fiber.NewError(fiber.StatusForbidden, "sender not allowed")
	}

	if act.ChannelID == "" {
		act.ChannelID = webhookChannelName
	}
	w.bus.Inbound <- bus.InboundActivity{Channel: webhookChannelName, Activity: &act}
	return c.SendStatus(fiber.StatusAccepted)
}

func (w *WebhookChannel) Start(ctx context.Context) error {
	go func() {
		if err := w.app.Listen(w.addr); err != nil {
			w.log.Error().Err(err).Msg("server stopped")
		}
	}()
	w.log.Info().Str("addr", w.addr).Msg("listening")
	return nil
}

func (w *WebhookChannel) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown webhook server: %w", err)
	}
	return nil
}

// Send posts a reply activity back to the serviceUrl the inbound activity
// carried.
func (w *WebhookChannel) Send(msg bus.OutboundActivity) error {
	act := msg.Activity
	if act.ServiceURL == "" {
		return fmt.Errorf("activity %s has no service url", act.ID)
	}

	body, err := json.Marshal(act)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	resp, err := w.client.Post(act.ServiceURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post activity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("post activity: unexpected status %d", resp.StatusCode)
	}
	return nil
}
