package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
	"signalscope-go/internal/monitor"
	"signalscope-go/internal/predictor"
)

// Commands maps a bot command (without the slash) to a reply builder that
// receives the command arguments
type Commands map[string]func(args string) string

// TelegramNotifier delivers shift alerts to one chat. A notifier built without
// a token is disabled and every send is a no-op.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token, chatID string) (*TelegramNotifier, error) {
	return newTelegramNotifier(token, chatID, tgbotapi.APIEndpoint)
}

func newTelegramNotifier(token, chatID, endpoint string) (*TelegramNotifier, error) {
	if token == "" || chatID == "" {
		logger.Info("📴 [Telegram] Notifications disabled (no token or chat id)")
		return &TelegramNotifier{}, nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("✅ Telegram bot authorized", zap.String("username", bot.Self.UserName))
	return &TelegramNotifier{bot: bot, chatID: id}, nil
}

func (n *TelegramNotifier) Enabled() bool {
	return n != nil && n.bot != nil
}

// SendMessage sends an HTML message to the configured chat
func (n *TelegramNotifier) SendMessage(message string) error {
	if !n.Enabled() {
		return nil
	}
	return n.send(n.chatID, message)
}

func (n *TelegramNotifier) send(chatID int64, message string) error {
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// NotifyShift sends a market shift alert
func (n *TelegramNotifier) NotifyShift(symbol string, tf model.Timeframe, shift monitor.Shift, next *predictor.Prediction) error {
	if !n.Enabled() {
		return nil
	}

	logger.Info("📤 [Telegram] Sending shift alert", zap.String("symbol", symbol), zap.String("timeframe", tf.String()))
	text := escapeHTML(monitor.FormatShift(symbol, tf, shift, next))
	if header, rest, ok := strings.Cut(text, "\n"); ok {
		text = "<b>" + header + "</b>\n" + rest
	}
	if err := n.SendMessage(text); err != nil {
		return err
	}

	logger.Info("📲 Telegram notification sent", zap.String("symbol", symbol))
	return nil
}

// HandleCommands answers bot commands until ctx is cancelled
func (n *TelegramNotifier) HandleCommands(ctx context.Context, commands Commands) {
	if !n.Enabled() {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := n.bot.GetUpdatesChan(u)

	stop := context.AfterFunc(ctx, n.bot.StopReceivingUpdates)
	defer stop()

	logger.Info("✅ Telegram command handler started")
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		command := update.Message.Command()
		logger.Info("📱 Command executed", zap.String("command", command))

		reply := commands.reply(command, update.Message.CommandArguments())
		if err := n.send(update.Message.Chat.ID, reply); err != nil {
			logger.Warn("⚠️  [Telegram] Reply failed", zap.String("command", command), zap.Error(err))
		}
	}
}

func (c Commands) reply(command, args string) string {
	if command == "help" || command == "start" {
		return c.help()
	}
	fn, ok := c[command]
	if !ok {
		return "Unknown command. Use /help to see available commands."
	}
	return fn(strings.TrimSpace(args))
}

func (c Commands) help() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<b>Commands</b>\n")
	for _, name := range names {
		b.WriteString("/" + name + "\n")
	}
	b.WriteString("/help")
	return b.String()
}

// escapeHTML escapes HTML special characters for Telegram
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
