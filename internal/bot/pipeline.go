package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"xvidbot/internal/domain"
)

// Request kinds reported to the Recorder.
const (
	kindInvalid = "invalid"
	kindSingle  = "single"
	kindThread  = "thread"
)

// handleLink classifies the request and hands it to the single or thread pipeline.
func (h *Handler) handleLink(ctx context.Context, req domain.Request) {
	log := h.requestLog(req)

	// --- Link Validation ---
	// Anything that is not a single X/Twitter link gets the format hint and nothing else.
	if !h.classifier.IsAcceptable(req.Text) {
		log.WithError(domain.ErrInvalidLink).Info("Rejected message")
		h.recorder.RecordRequest(kindInvalid)
		h.reply(ctx, req.ChatID, invalidLinkMessage)
		return
	}

	// --- Rate Limit ---
	// Only accepted links count against the user's budget.
	if !h.limiter.Allow(req.UserID) {
		log.Info("Rate limit exceeded")
		h.recorder.RecordRateLimited()
		h.reply(ctx, req.ChatID, rateLimitedMessage)
		return
	}

	// --- Dispatch ---
	if h.classifier.IsThread(req.Text) {
		h.recorder.RecordRequest(kindThread)
		h.handleThread(ctx, req)
		return
	}
	h.recorder.RecordRequest(kindSingle)
	h.handleSingle(ctx, req)
}

// handleSingle downloads and delivers one video. Success is reported through the caption.
func (h *Handler) handleSingle(ctx context.Context, req domain.Request) {
	log := h.requestLog(req)

	// The progress message goes away on every exit path, success or not.
	progressID := h.reply(ctx, req.ChatID, fmt.Sprintf(singleProgressMessage, req.Quality))
	defer h.deleteMessage(ctx, req.ChatID, progressID)

	caption := fmt.Sprintf(singleCaption, req.Quality)
	if err := h.processItem(ctx, req, req.Text, caption); err != nil {
		log.WithError(err).Error("Error processing link")
		h.reply(ctx, req.ChatID, fmt.Sprintf(singleFailedMessage, err))
		return
	}
	log.Info("Video delivered")
}

// handleThread expands the thread and processes every item in order.
// A failed item is reported and the batch continues.
func (h *Handler) handleThread(ctx context.Context, req domain.Request) {
	log := h.requestLog(req)

	progressID := h.reply(ctx, req.ChatID, fmt.Sprintf(threadProgressMessage, req.Quality))
	defer h.deleteMessage(ctx, req.ChatID, progressID)

	// --- Thread Expansion ---
	links, err := h.expander.Expand(ctx, req.Text)
	if err != nil {
		log.WithError(err).Error("Error expanding thread")
		h.reply(ctx, req.ChatID, fmt.Sprintf(threadFailedMessage, err))
		return
	}
	if len(links) == 0 {
		log.WithError(domain.ErrEmptyThread).Info("Thread has no items")
		h.reply(ctx, req.ChatID, threadEmptyMessage)
		return
	}

	// --- Item Processing ---
	// Items run one at a time so videos arrive in thread order.
	total := len(links)
	h.editMessage(ctx, req.ChatID, progressID, fmt.Sprintf(threadFoundMessage, total))

	failed := 0
	for i, item := range links {
		pos := i + 1
		caption := fmt.Sprintf(threadCaption, pos, total)
		if err := h.processItem(ctx, req, item, caption); err != nil {
			failed++
			log.WithError(err).WithFields(logrus.Fields{
				"item":     pos,
				"item_url": item,
			}).Error("Thread item failed")
			h.reply(ctx, req.ChatID, fmt.Sprintf(threadItemFailed, pos, total, err))
		}
	}

	// The completion notice is sent even when every item failed.
	log.WithFields(logrus.Fields{
		"items":  total,
		"failed": failed,
	}).Info("Thread processing completed")
	h.reply(ctx, req.ChatID, threadCompletedMessage)
}

// processItem downloads one link and delivers it with caption.
func (h *Handler) processItem(ctx context.Context, req domain.Request, item, caption string) error {
	path, err := h.downloader.Download(ctx, item, req.Quality)
	if err != nil {
		return err
	}
	return h.deliver(ctx, req.ChatID, path, caption)
}

// deliver uploads the artifact at path and removes it afterwards, whatever the outcome.
func (h *Handler) deliver(ctx context.Context, chatID int64, path, caption string) (err error) {
	// Deferred in this order so the delivery is recorded before the file is removed.
	defer h.removeArtifact(path)
	defer func() { h.recorder.RecordDelivery(err) }()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open downloaded video: %w", err)
	}
	defer f.Close()

	// Streaming lets Telegram clients start playback before the upload is fully fetched.
	_, err = h.api.SendVideo(ctx, &tgbot.SendVideoParams{
		ChatID:            chatID,
		Video:             &models.InputFileUpload{Filename: filepath.Base(path), Data: f},
		Caption:           caption,
		SupportsStreaming: true,
	})
	if err != nil {
		return fmt.Errorf("failed to send video: %w", err)
	}
	return nil
}

func (h *Handler) removeArtifact(path string) {
	if err := h.artifacts.Remove(path); err != nil {
		h.log.WithError(err).WithField("path", path).Error("Failed to clean up artifact")
	}
}

// editMessage and deleteMessage treat a zero ID as "progress message was never sent".
func (h *Handler) editMessage(ctx context.Context, chatID int64, messageID int, text string) {
	if messageID == 0 {
		return
	}
	if _, err := h.api.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}); err != nil {
		h.log.WithError(err).Warn("Failed to edit progress message")
	}
}

func (h *Handler) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := h.api.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	}); err != nil {
		h.log.WithError(err).Warn("Failed to delete progress message")
	}
}

func (h *Handler) requestLog(req domain.Request) logrus.FieldLogger {
	return h.log.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"chat_id": req.ChatID,
		"url":     req.Text,
		"quality": req.Quality.String(),
	})
}
