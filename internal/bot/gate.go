package bot

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"xvidbot/internal/domain"
)

// Gate restricts handlers to members of a required channel.
// Membership is looked up on every call and never cached.
type Gate struct {
	api       API
	channelID string
	recorder  Recorder
	log       logrus.FieldLogger
}

// NewGate creates a gate for channelID. An empty channelID disables the gate.
func NewGate(api API, channelID string, recorder Recorder, logger logrus.FieldLogger) *Gate {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Gate{
		api:       api,
		channelID: channelID,
		recorder:  recorder,
		log:       logger.WithField("component", "access_gate"),
	}
}

// Enabled reports whether a channel is configured.
func (g *Gate) Enabled() bool {
	return g.channelID != ""
}

// authorized reports whether a chat member status grants access.
func authorized(status models.ChatMemberType) bool {
	switch status {
	case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
		return true
	}
	return false
}

func (g *Gate) memberStatus(ctx context.Context, userID int64, channelID string) (models.ChatMemberType, error) {
	member, err := g.api.GetChatMember(ctx, &tgbot.GetChatMemberParams{
		ChatID: channelID,
		UserID: userID,
	})
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", fmt.Errorf("empty chat member response")
	}
	return member.Type, nil
}

// IsMember reports whether userID is a member, administrator or creator of channelID.
// Lookup errors count as not a member.
func (g *Gate) IsMember(ctx context.Context, userID int64, channelID string) bool {
	status, err := g.memberStatus(ctx, userID, channelID)
	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"user_id":    userID,
			"channel_id": channelID,
		}).Warn("Membership lookup failed")
		return false
	}
	return authorized(status)
}

// Require wraps next so it only runs for members of the configured channel.
// Everyone else gets instructions on how to join instead.
func (g *Gate) Require(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if !g.Enabled() {
			next(ctx, b, update)
			return
		}
		if update.Message == nil || update.Message.From == nil {
			return
		}

		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID
		log := g.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"channel_id": g.channelID,
		})

		status, err := g.memberStatus(ctx, userID, g.channelID)
		if err != nil {
			log.WithError(err).Warn("Membership lookup failed, denying access")
			g.recorder.RecordGateDenial()
			g.reply(ctx, chatID, gateFallbackMessage)
			return
		}
		if !authorized(status) {
			log.WithField("status", string(status)).WithError(domain.ErrNotAuthorized).Info("Access denied")
			g.recorder.RecordGateDenial()
			g.reply(ctx, chatID, g.joinInstructions(ctx))
			return
		}

		next(ctx, b, update)
	}
}

// joinInstructions builds the denial text from the channel's title and invite link.
func (g *Gate) joinInstructions(ctx context.Context) string {
	chat, err := g.api.GetChat(ctx, &tgbot.GetChatParams{ChatID: g.channelID})
	if err != nil || chat == nil {
		g.log.WithError(err).Warn("Failed to fetch channel info")
		return gateFallbackMessage
	}

	name := chat.Title
	if name == "" {
		name = g.channelID
	}
	invite := chat.InviteLink
	if invite == "" && chat.Username != "" {
		invite = "https://t.me/" + chat.Username
	}
	if invite == "" {
		return fmt.Sprintf(joinChannelNoLink, name)
	}
	return fmt.Sprintf(joinChannelMessage, name, invite)
}

func (g *Gate) reply(ctx context.Context, chatID int64, text string) {
	if _, err := g.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		g.log.WithError(err).Error("Failed to send gate message")
	}
}
