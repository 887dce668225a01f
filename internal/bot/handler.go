package bot

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"xvidbot/internal/config"
	"xvidbot/internal/domain"
	"xvidbot/internal/download"
	"xvidbot/internal/link"
	"xvidbot/internal/storage"
	"xvidbot/internal/thread"
)

// ArtifactRemover deletes downloaded files once they have been delivered.
type ArtifactRemover interface {
	Remove(path string) error
}

// Deps are the collaborators a Handler drives.
type Deps struct {
	Repo       storage.Repository
	Classifier *link.Classifier
	Expander   thread.Expander
	Downloader download.Downloader
	Artifacts  ArtifactRemover
	Recorder   Recorder
}

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot        *tgbot.Bot
	api        API
	cfg        config.Config
	repo       storage.Repository
	classifier *link.Classifier
	expander   thread.Expander
	downloader download.Downloader
	artifacts  ArtifactRemover
	gate       *Gate
	limiter    *Limiter
	recorder   Recorder
	log        logrus.FieldLogger

	// handleText is the gated link handler used for any non-command text.
	handleText tgbot.HandlerFunc
}

// NewHandler creates the Telegram bot and registers every handler on it.
func NewHandler(cfg config.Config, deps Deps, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	var h *Handler
	b, err := tgbot.New(cfg.TelegramBotToken, tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		h.defaultHandler(ctx, b, update)
	}))
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	h = newHandler(b, cfg, deps, logger)
	h.bot = b
	h.registerHandlers()

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// newHandler wires a Handler around any API implementation.
func newHandler(api API, cfg config.Config, deps Deps, logger logrus.FieldLogger) *Handler {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	expander := deps.Expander
	if expander == nil {
		expander = thread.Single{}
	}
	classifier := deps.Classifier
	if classifier == nil {
		classifier = link.NewClassifier(cfg.AllowedDomains)
	}

	h := &Handler{
		api:        api,
		cfg:        cfg,
		repo:       deps.Repo,
		classifier: classifier,
		expander:   expander,
		downloader: deps.Downloader,
		artifacts:  deps.Artifacts,
		gate:       NewGate(api, cfg.RequiredChannelID, recorder, logger),
		limiter:    NewLimiter(cfg.RateLimitPerMinute),
		recorder:   recorder,
		log:        logger.WithField("component", "bot_handler"),
	}
	h.handleText = h.gate.Require(h.linkHandler)
	return h
}

// commands maps each command name to its handler. Gated commands are wrapped here
// so the same table serves registration and tests.
func (h *Handler) commands() map[string]tgbot.HandlerFunc {
	cmds := map[string]tgbot.HandlerFunc{
		"/start":   h.startHandler,
		"/help":    h.helpHandler,
		"/quality": h.gate.Require(h.qualityHandler),
	}
	for _, q := range domain.Qualities {
		cmds["/quality_"+q.String()] = h.gate.Require(h.setQualityHandler(q))
	}
	return cmds
}

// registerHandlers sets up the command handlers. Plain text goes to the default handler.
func (h *Handler) registerHandlers() {
	for name, fn := range h.commands() {
		h.bot.RegisterHandlerMatchFunc(matchCommand(name), fn)
	}
	h.log.WithField("gate_enabled", h.gate.Enabled()).Info("Registered command handlers")
}

// commandName extracts the command from message text, dropping arguments and the
// @botname suffix Telegram appends in group chats ("/quality@MyBot" -> "/quality").
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}

// matchCommand matches text messages invoking the command name.
func matchCommand(name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		return update.Message != nil && commandName(update.Message.Text) == name
	}
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

// startHandler handles the /start command.
func (h *Handler) startHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.log.WithField("chat_id", update.Message.Chat.ID).Info("Received /start command")
	h.reply(ctx, update.Message.Chat.ID, welcomeMessage)
}

// helpHandler handles the /help command.
func (h *Handler) helpHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.replyMarkdown(ctx, update.Message.Chat.ID, helpMessage)
}

// qualityHandler shows the sender's current quality preference.
func (h *Handler) qualityHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	q := h.quality(ctx, update.Message.From.ID)
	h.replyMarkdown(ctx, update.Message.Chat.ID, fmt.Sprintf(currentQualityMessage, q, q.Description()))
}

// setQualityHandler returns a handler storing q as the sender's preference.
func (h *Handler) setQualityHandler(q domain.Quality) tgbot.HandlerFunc {
	return func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		h.setQuality(ctx, update.Message.From.ID, update.Message.Chat.ID, q)
	}
}

func (h *Handler) setQuality(ctx context.Context, userID, chatID int64, q domain.Quality) {
	log := h.log.WithFields(logrus.Fields{
		"user_id": userID,
		"quality": q.String(),
	})
	if !q.Valid() {
		h.reply(ctx, chatID, invalidQualityMessage)
		return
	}
	if err := h.repo.SetQuality(ctx, userID, q); err != nil {
		log.WithError(err).Error("Failed to store quality preference")
		h.reply(ctx, chatID, qualitySaveFailed)
		return
	}
	log.Info("Quality preference updated")
	h.replyMarkdown(ctx, chatID, fmt.Sprintf(qualitySetMessage, q, q.Description()))
}

// quality reads the user's preference, falling back to the default on storage errors.
func (h *Handler) quality(ctx context.Context, userID int64) domain.Quality {
	q, err := h.repo.GetQuality(ctx, userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("Failed to read quality preference, using default")
		return domain.DefaultQuality
	}
	return q
}

// defaultHandler receives every text message no command handler matched.
func (h *Handler) defaultHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		h.log.WithFields(logrus.Fields{
			"chat_id": update.Message.Chat.ID,
			"text":    update.Message.Text,
		}).Debug("Ignoring unknown command")
		return
	}
	h.handleText(ctx, b, update)
}

// linkHandler builds a Request from the message and runs the download pipeline.
func (h *Handler) linkHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	req := domain.Request{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      strings.TrimSpace(msg.Text),
	}
	req.Quality = h.quality(ctx, req.UserID)
	h.handleLink(ctx, req)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) int {
	return h.send(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
}

func (h *Handler) replyMarkdown(ctx context.Context, chatID int64, text string) int {
	return h.send(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
}

// send returns the ID of the sent message, or 0 when sending failed.
func (h *Handler) send(ctx context.Context, params *tgbot.SendMessageParams) int {
	msg, err := h.api.SendMessage(ctx, params)
	if err != nil {
		h.log.WithError(err).WithField("chat_id", params.ChatID).Error("Failed to send message")
		return 0
	}
	if msg == nil {
		return 0
	}
	return msg.ID
}
