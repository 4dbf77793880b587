// Package telegram реализует бота-моста: сообщения из Telegram
// пересылаются в командный API трекера, ответ возвращается в чат.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ottmanager/subscription-tracker/internal/config"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
)

// Bot пересылает команды пользователей в HTTP API и отвечает в чат.
type Bot struct {
	api     *tgbotapi.BotAPI
	client  *http.Client
	baseURL string
	log     *slog.Logger
}

// commandRequest тело запроса к командному API.
type commandRequest struct {
	Message  string `json:"message"`
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username"`
	Source   string `json:"source"`
}

// commandResponse ответ командного API.
type commandResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   struct {
		Reply string `json:"reply"`
	} `json:"data"`
}

// New создает бота с long-poll подключением к Telegram.
func New(cfg *config.Config, log *slog.Logger) (*Bot, error) {
	const op = "telegram.New"

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Bot{
		api:     api,
		client:  &http.Client{Timeout: cfg.APITimeout},
		baseURL: cfg.APIBaseURL,
		log:     log,
	}, nil
}

// Run читает обновления из Telegram до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram bot started", slog.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	const op = "telegram.handleMessage"

	log := b.log.With(
		slog.String("op", op),
		slog.Int64("chat_id", msg.Chat.ID),
	)

	reply, err := b.execute(ctx, commandRequest{
		Message:  msg.Text,
		ChatID:   msg.Chat.ID,
		Username: msg.From.UserName,
		Source:   "telegram",
	})
	if err != nil {
		log.Error("failed to execute command", sl.Err(err))
		reply = "Something went wrong, please try again later"
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	if _, err := b.api.Send(out); err != nil {
		log.Error("failed to send reply", sl.Err(err))
	}
}

// execute отправляет команду в HTTP API и возвращает текст ответа.
func (b *Bot) execute(ctx context.Context, reqBody commandRequest) (string, error) {
	const op = "telegram.execute"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/api/v1/command", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var parsed commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if parsed.Status != "OK" {
		return "", fmt.Errorf("%s: api error: %s", op, parsed.Error)
	}
	return parsed.Data.Reply, nil
}
