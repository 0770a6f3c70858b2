// Package telegram delivers signal alerts and operational notices via the
// Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tokoquant/idxradar/internal/models"
	"github.com/tokoquant/idxradar/internal/store"
)

// Client sends alerts to a fixed chat and answers bot commands.
type Client struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	signals *store.Store
}

// NewClient validates the credentials and connects to the bot API. The
// signal store backs the /latest command and may be nil.
func NewClient(botToken, chatID string, signals *store.Store) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Client{
		bot:     bot,
		chatID:  chatIDInt,
		signals: signals,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and
// handles bot commands. It returns immediately; the goroutine stops when ctx
// is cancelled.
func (c *Client) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(update.Message)
				}
			}
		}
	}()
}

func (c *Client) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		c.bot.Send(reply) //nolint:errcheck
	case "latest":
		text := "No signals yet"
		parseMode := ""
		if c.signals != nil {
			if sig, ok := c.signals.Latest(); ok {
				text = formatSignal(sig)
				parseMode = "MarkdownV2"
			}
		}
		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		reply.ParseMode = parseMode
		c.bot.Send(reply) //nolint:errcheck
	}
}

// SendSignal delivers one alert. Delivery is a single attempt: a lost alert
// is acceptable, a scan cycle stalled behind Telegram retries is not.
func (c *Client) SendSignal(sig models.Signal) error {
	return c.sendMarkdownV2(formatSignal(sig))
}

// SendError sends a scan failure notice. Call this only on the first
// occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	text := fmt.Sprintf("⚠️ *Scanner error*\n`%s`", escapeMarkdownV2(cycleErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notice after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Scanner recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// formatSignal renders one alert as a MarkdownV2 message.
func formatSignal(sig models.Signal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 *%s* on *%s*\n\n",
		escapeMarkdownV2(strings.ToUpper(string(sig.Mode))),
		escapeMarkdownV2(strings.ToUpper(sig.Pair)))
	fmt.Fprintf(&b, "🕒 %s UTC\n", escapeMarkdownV2(sig.Time))
	fmt.Fprintf(&b, "💰 Entry: %s\n", escapeMarkdownV2(formatPrice(sig.Entry)))
	fmt.Fprintf(&b, "🎯 TP: %s\n", escapeMarkdownV2(formatPrice(sig.TakeProfit)))
	fmt.Fprintf(&b, "🛑 SL: %s\n", escapeMarkdownV2(formatPrice(sig.StopLoss)))
	fmt.Fprintf(&b, "📊 Priority: %s", escapeMarkdownV2(fmt.Sprintf("%.1f", sig.Priority)))
	if sig.Imbalance != 0 {
		fmt.Fprintf(&b, " \\| Imbalance: %s", escapeMarkdownV2(fmt.Sprintf("%+.1f%%", sig.Imbalance)))
	}
	if sig.News {
		b.WriteString("\n📰 News catalyst")
	}
	return b.String()
}

// formatPrice renders a price without trailing zeros.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
