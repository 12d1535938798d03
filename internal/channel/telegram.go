package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/bus"
	"github.com/stratushq/stratus/internal/config"
)

const telegramChannelName = "telegram"

// TelegramBot interface for mocking telegram bot API
type TelegramBot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

// tgBotWrapper wraps tgbotapi.BotAPI to implement TelegramBot interface
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *tgBotWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory creates TelegramBot instances (allows mocking)
type BotFactory func(token, apiEndpoint string, client *http.Client) (TelegramBot, error)

// defaultBotFactory creates real telegram bot
var defaultBotFactory BotFactory = func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// TelegramChannel receives user turns over Telegram long polling and sends
// the bot's replies back to the chat.
type TelegramChannel struct {
	BaseChannel
	token      string
	bot        TelegramBot
	proxy      string
	cancel     context.CancelFunc
	botFactory BotFactory
}

func NewTelegramChannel(cfg config.TelegramConfig, b *bus.MessageBus, logger zerolog.Logger) (*TelegramChannel, error) {
	return NewTelegramChannelWithFactory(cfg, b, logger, defaultBotFactory)
}

// NewTelegramChannelWithFactory creates a TelegramChannel with a custom bot
// factory (for testing).
func NewTelegramChannelWithFactory(cfg config.TelegramConfig, b *bus.MessageBus, logger zerolog.Logger, factory BotFactory) (*TelegramChannel, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	return &TelegramChannel{
		BaseChannel: NewBaseChannel(telegramChannelName, b, cfg.AllowFrom, logger),
		token:       cfg.Token,
		proxy:       cfg.Proxy,
		botFactory:  factory,
	}, nil
}

func (t *TelegramChannel) initBot() error {
	client := &http.Client{Timeout: 60 * time.Second}
	if t.proxy != "" {
		proxyURL, err := url.Parse(t.proxy)
		if err != nil {
			return fmt.Errorf("parse proxy url: %w", err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	bot, err := t.botFactory(t.token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	t.bot = bot
	t.log.Info().Str("username", bot.GetSelf().UserName).Msg("authorized")
	return nil
}

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.bot == nil {
		if err := t.initBot(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil {
					continue
				}
				t.handleMessage(update.Message)
			}
		}
	}()

	t.log.Info().Msg("polling started")
	return nil
}

// handleMessage maps a Telegram message to an inbound activity. Joins become
// conversationUpdate activities, anything with text becomes a message, and
// everything else is dropped.
func (t *TelegramChannel) handleMessage(msg *tgbotapi.Message) {
	senderID := strconv.FormatInt(msg.From.ID, 10)
	if !t.IsAllowed(senderID) {
		t.log.Warn().Str("sender", senderID).Msg("rejected message from disallowed sender")
		return
	}

	self := t.bot.GetSelf()
	act := &activity.Activity{
		ID:        strconv.Itoa(msg.MessageID),
		Timestamp: time.Unix(int64(msg.Date), 0),
		ChannelID: telegramChannelName,
		Conversation: activity.Account{
			ID:   strconv.FormatInt(msg.Chat.ID, 10),
			Name: msg.Chat.Title,
		},
		From: activity.Account{
			ID:   senderID,
			Name: telegramUserName(msg.From),
		},
		Recipient: activity.Account{
			ID:   strconv.FormatInt(self.ID, 10),
			Name: self.UserName,
		},
	}

	if len(msg.NewChatMembers) > 0 {
		act.Type = activity.TypeConversationUpdate
		for i := range msg.NewChatMembers {
			member := &msg.NewChatMembers[i]
			act.MembersAdded = append(act.MembersAdded, activity.Account{
				ID:   strconv.FormatInt(member.ID, 10),
				Name: telegramUserName(member),
			})
		}
		t.bus.Inbound <- bus.InboundActivity{Channel: telegramChannelName, Activity: act}
		return
	}

	if msg.Text == "" {
		return
	}
	act.Type = activity.TypeMessage
	act.Text = msg.Text
	t.bus.Inbound <- bus.InboundActivity{Channel: telegramChannelName, Activity: act}
}

func telegramUserName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}

func (t *TelegramChannel) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return nil
}

// SetBot sets the bot (for testing)
func (t *TelegramChannel) SetBot(bot TelegramBot) {
	t.bot = bot
}

func (t *TelegramChannel) Send(msg bus.OutboundActivity) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	act := msg.Activity

	chatID, err := strconv.ParseInt(act.Conversation.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", act.Conversation.ID, err)
	}

	if len(act.Attachments) > 0 {
		for i, att := range act.Attachments {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(att.ContentURL))
			if i == 0 {
				photo.Caption = act.Text
			}
			if _, err := t.bot.Send(photo); err != nil {
				return fmt.Errorf("send telegram photo: %w", err)
			}
		}
		return nil
	}

	if act.Text == "" {
		return nil
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, act.Text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
