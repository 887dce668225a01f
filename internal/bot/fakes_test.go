package bot

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"xvidbot/internal/artifact"
	"xvidbot/internal/config"
	"xvidbot/internal/domain"
	"xvidbot/internal/download"
)

// sentVideo is a video upload captured by fakeAPI.
type sentVideo struct {
	chatID  any
	caption string
	data    string
}

// fakeAPI records every call made to the Telegram API.
type fakeAPI struct {
	mu sync.Mutex

	messages []string
	edits    []string
	deleted  []int
	videos   []sentVideo
	nextID   int

	sendVideoErr error
	memberType   models.ChatMemberType
	memberErr    error
	chat         *models.ChatFullInfo
	chatErr      error
}

func (f *fakeAPI) SendMessage(_ context.Context, params *tgbot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.messages = append(f.messages, params.Text)
	return &models.Message{ID: f.nextID}, nil
}

func (f *fakeAPI) EditMessageText(_ context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, params.Text)
	return &models.Message{ID: params.MessageID}, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, params *tgbot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, params.MessageID)
	return true, nil
}

func (f *fakeAPI) SendVideo(_ context.Context, params *tgbot.SendVideoParams) (*models.Message, error) {
	upload, ok := params.Video.(*models.InputFileUpload)
	if !ok {
		return nil, errors.New("unexpected input file type")
	}
	data, err := io.ReadAll(upload.Data)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendVideoErr != nil {
		return nil, f.sendVideoErr
	}
	f.nextID++
	f.videos = append(f.videos, sentVideo{chatID: params.ChatID, caption: params.Caption, data: string(data)})
	return &models.Message{ID: f.nextID}, nil
}

func (f *fakeAPI) GetChatMember(_ context.Context, _ *tgbot.GetChatMemberParams) (*models.ChatMember, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return &models.ChatMember{Type: f.memberType}, nil
}

func (f *fakeAPI) GetChat(_ context.Context, _ *tgbot.GetChatParams) (*models.ChatFullInfo, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chat, nil
}

// messagesContaining counts sent text messages containing substr.
func (f *fakeAPI) messagesContaining(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

// fakeDownloader writes a small file per link, or fails for links listed in failures.
type fakeDownloader struct {
	store     *artifact.Store
	failures  map[string]error
	calls     []string
	qualities []domain.Quality
	paths     []string
}

func (d *fakeDownloader) Download(_ context.Context, link string, q domain.Quality) (string, error) {
	d.calls = append(d.calls, link)
	d.qualities = append(d.qualities, q)
	if err, ok := d.failures[link]; ok {
		return "", &download.DownloadError{Link: link, Cause: err}
	}
	path := d.store.Allocate()
	if err := os.WriteFile(path, []byte("video:"+link), 0o644); err != nil {
		return "", err
	}
	d.paths = append(d.paths, path)
	return path, nil
}

// fakeExpander returns a fixed result.
type fakeExpander struct {
	links []string
	err   error
}

func (e fakeExpander) Expand(context.Context, string) ([]string, error) {
	return e.links, e.err
}

// memoryRepo keeps preferences in a map.
type memoryRepo struct {
	mu     sync.Mutex
	prefs  map[int64]domain.Quality
	setErr error
}

func (r *memoryRepo) GetQuality(_ context.Context, userID int64) (domain.Quality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.prefs[userID]; ok {
		return q, nil
	}
	return domain.DefaultQuality, nil
}

func (r *memoryRepo) SetQuality(_ context.Context, userID int64, q domain.Quality) error {
	if r.setErr != nil {
		return r.setErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prefs == nil {
		r.prefs = make(map[int64]domain.Quality)
	}
	r.prefs[userID] = q
	return nil
}

func (r *memoryRepo) Close() error { return nil }

// testEnv bundles a handler with its fakes.
type testEnv struct {
	h     *Handler
	api   *fakeAPI
	dl    *fakeDownloader
	repo  *memoryRepo
	store *artifact.Store
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T, cfg config.Config, expander fakeExpander) *testEnv {
	t.Helper()

	store, err := artifact.NewStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	api := &fakeAPI{}
	dl := &fakeDownloader{store: store, failures: map[string]error{}}
	repo := &memoryRepo{}

	deps := Deps{
		Repo:       repo,
		Downloader: dl,
		Artifacts:  store,
	}
	if expander.links != nil || expander.err != nil {
		deps.Expander = expander
	}
	h := newHandler(api, cfg, deps, testLogger())
	return &testEnv{h: h, api: api, dl: dl, repo: repo, store: store}
}

// textUpdate builds an update carrying a text message from userID.
func textUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   100,
			Text: text,
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: userID},
		},
	}
}

// tempDirEntries lists what is left in the artifact directory.
func tempDirEntries(t *testing.T, s *artifact.Store) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	return entries
}
