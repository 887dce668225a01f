package bot

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// API is the part of the Telegram Bot API the handlers call. *tgbot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *tgbot.DeleteMessageParams) (bool, error)
	SendVideo(ctx context.Context, params *tgbot.SendVideoParams) (*models.Message, error)
	GetChatMember(ctx context.Context, params *tgbot.GetChatMemberParams) (*models.ChatMember, error)
	GetChat(ctx context.Context, params *tgbot.GetChatParams) (*models.ChatFullInfo, error)
}

var _ API = (*tgbot.Bot)(nil)

// Recorder receives handler level events for metrics.
type Recorder interface {
	RecordRequest(kind string)
	RecordDelivery(err error)
	RecordGateDenial()
	RecordRateLimited()
}

type noopRecorder struct{}

func (noopRecorder) RecordRequest(string) {}
func (noopRecorder) RecordDelivery(error) {}
func (noopRecorder) RecordGateDenial()    {}
func (noopRecorder) RecordRateLimited()   {}
