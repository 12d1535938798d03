package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/bot"
	"github.com/stratushq/stratus/internal/config"
	"github.com/stratushq/stratus/internal/dialog"
	"github.com/stratushq/stratus/internal/gateway"
	"github.com/stratushq/stratus/internal/nlu"
	"github.com/stratushq/stratus/internal/state"
	"github.com/stratushq/stratus/internal/weather"
)

// ChatOptions for running chat with custom dependencies
type ChatOptions struct {
	Recognizer nlu.Recognizer
	Provider   weather.Provider
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "stratus",
	Short: "stratus - weather assistant bot",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in single message or REPL mode",
	RunE:  runChat,
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the full gateway (channels + weather refresh)",
	RunE:  runGateway,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stratus status",
	RunE:  runStatus,
}

var messageFlag string

func init() {
	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	rootCmd.AddCommand(chatCmd, gatewayCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runChat is the command handler that uses default options
func runChat(cmd *cobra.Command, args []string) error {
	return runChatWithOptions(ChatOptions{})
}

// runChatWithOptions runs a local chat session with injectable dependencies
// for testing
func runChatWithOptions(opts ChatOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	recognizer := opts.Recognizer
	if recognizer == nil {
		if cfg.Recognizer.Endpoint == "" || cfg.Recognizer.AppID == "" {
			return fmt.Errorf("recognizer not configured. Run 'stratus onboard' or set STRATUS_RECOGNIZER_ENDPOINT / STRATUS_RECOGNIZER_APP_ID")
		}
		recognizer, err = nlu.NewHTTPRecognizer(cfg.Recognizer.Endpoint, cfg.Recognizer.AppID, cfg.Recognizer.Key)
		if err != nil {
			return fmt.Errorf("create recognizer: %w", err)
		}
	}

	provider := opts.Provider
	if provider == nil {
		if cfg.Weather.APIKey == "" || cfg.Weather.CityID == "" {
			return fmt.Errorf("weather api not configured. Run 'stratus onboard' or set STRATUS_WEATHER_API_KEY / STRATUS_WEATHER_CITY_ID")
		}
		provider, err = weather.NewClient(cfg.Weather.APIKey, cfg.Weather.CityID, cfg.Weather.BaseURL)
		if err != nil {
			return fmt.Errorf("create weather client: %w", err)
		}
	}

	ttl, err := cfg.WeatherTTL()
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	svc := weather.NewService(provider, weather.NewCache(ttl), logger)
	dialogs := dialog.NewSet(dialog.NewGreeting())
	b, err := bot.New(recognizer, svc, state.NewMemoryStore(), dialogs, logger)
	if err != nil {
		return err
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	ctx := context.Background()
	session := &chatSession{bot: b, out: stdout, convID: uuid.NewString()}

	if err := session.join(ctx); err != nil {
		fmt.Fprintf(stderr, "Warning: weather refresh failed: %v\n", err)
	}

	// Single message mode
	if messageFlag != "" {
		if err := session.send(ctx, messageFlag); err != nil {
			return fmt.Errorf("turn error: %w", err)
		}
		return nil
	}

	// REPL mode
	fmt.Fprintln(stdout, "stratus chat (type 'exit' to quit)")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		if err := session.send(ctx, input); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
	}
	return nil
}

// chatSession drives the turn handler directly, printing replies to out.
type chatSession struct {
	bot    *bot.Bot
	out    io.Writer
	convID string
}

func (s *chatSession) baseActivity(actType string) *activity.Activity {
	return &activity.Activity{
		Type:         actType,
		ID:           uuid.NewString(),
		ChannelID:    "cli",
		Conversation: activity.Account{ID: s.convID},
		From:         activity.Account{ID: "user", Name: "You"},
		Recipient:    activity.Account{ID: "bot", Name: "stratus"},
	}
}

func (s *chatSession) join(ctx context.Context) error {
	act := s.baseActivity(activity.TypeConversationUpdate)
	act.MembersAdded = []activity.Account{{ID: "user", Name: "You"}}

	tc := activity.NewTurnContext(act)
	if err := s.bot.OnTurn(ctx, tc); err != nil {
		return err
	}
	s.deliver(tc)
	return nil
}

func (s *chatSession) send(ctx context.Context, text string) error {
	act := s.baseActivity(activity.TypeMessage)
	act.Text = text

	tc := activity.NewTurnContext(act)
	if err := s.bot.OnTurn(ctx, tc); err != nil {
		return err
	}
	s.deliver(tc)
	return nil
}

func (s *chatSession) deliver(tc *activity.TurnContext) {
	for _, reply := range tc.Responses() {
		if reply.Text != "" {
			fmt.Fprintln(s.out, reply.Text)
		}
		for _, att := range reply.Attachments {
			fmt.Fprintf(s.out, "[%s] %s\n", att.Name, att.ContentURL)
		}
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config not ready: %v. Run 'stratus onboard' and edit %s", err, config.ConfigPath())
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your LUIS and OpenWeatherMap credentials\n", cfgPath)
	fmt.Println("  2. Or set STRATUS_RECOGNIZER_* / STRATUS_WEATHER_* environment variables")
	fmt.Println("  3. Run 'stratus chat -m \"what's the weather like today\"' to test")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Recognizer: %s\n", recognizerDisplay(cfg.Recognizer))
	fmt.Printf("Weather API key: %s\n", maskSecret(cfg.Weather.APIKey))
	fmt.Printf("Weather city: %s\n", valueOr(cfg.Weather.CityID, "not set"))
	fmt.Printf("State backend: %s\n", cfg.State.Backend)
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)
	fmt.Printf("Webhook: enabled=%v (%s:%d)\n", cfg.Channels.Webhook.Enabled, cfg.Gateway.Host, cfg.Gateway.Port)

	return nil
}

func recognizerDisplay(cfg config.RecognizerConfig) string {
	if cfg.AppID == "" {
		return "not configured"
	}
	return fmt.Sprintf("%s (app %s)", cfg.Endpoint, cfg.AppID)
}

func maskSecret(s string) string {
	if s == "" {
		return "not set"
	}
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "set"
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
