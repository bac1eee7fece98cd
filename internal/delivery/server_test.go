package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	mobileUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"
	desktopUA = "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0"
	videoBody = "0123456789abcdefghij"
)

type fakeTokens map[string]*model.TokenGrant

func (f fakeTokens) Validate(_ context.Context, token string) (*model.TokenGrant, error) {
	if g, ok := f[token]; ok {
		return g, nil
	}
	return nil, service.ErrNotFound
}

type failingTokens struct{}

func (failingTokens) Validate(context.Context, string) (*model.TokenGrant, error) {
	return nil, errors.New("db down")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, tokens TokenValidator, mobileOnly bool, sources ...Source) http.Handler {
	t.Helper()
	s := NewServer(Config{Addr: ":0", MobileOnly: mobileOnly}, tokens, zap.NewNop(), sources...)
	return s.Handler()
}

func videoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ep1.mp4"), []byte(videoBody), 0o600))
	return dir
}

func do(h http.Handler, path, ua string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVideoInfo(t *testing.T) {
	h := newTestServer(t, fakeTokens{
		"good": {UserID: 7, EpisodeID: 3, VideoRef: "ep1.mp4", Title: "Intro"},
	}, true)

	rec := do(h, "/api/video/good", desktopUA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Intro", body["title"])
	assert.Equal(t, float64(3), body["episode_id"])
	// ссылка на видео наружу не отдаётся
	assert.NotContains(t, rec.Body.String(), "ep1.mp4")

	rec = do(h, "/api/video/missing", desktopUA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestVideoInfoStoreFailure(t *testing.T) {
	h := newTestServer(t, failingTokens{}, true)
	rec := do(h, "/api/video/any", mobileUA, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStreamLocalRange(t *testing.T) {
	h := newTestServer(t, fakeTokens{
		"good": {EpisodeID: 3, VideoRef: "ep1.mp4", Title: "Intro"},
	}, true, NewLocalSource(videoDir(t)))

	rec := do(h, "/api/stream/good", mobileUA, map[string]string{"Range": "bytes=0-4"})
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "01234", rec.Body.String())
	assert.Equal(t, "bytes 0-4/20", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))

	rec = do(h, "/api/stream/good", mobileUA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, videoBody, rec.Body.String())
}

func TestStreamRejectsDesktop(t *testing.T) {
	tokens := fakeTokens{"good": {EpisodeID: 3, VideoRef: "ep1.mp4"}}
	dir := videoDir(t)

	h := newTestServer(t, tokens, true, NewLocalSource(dir))
	assert.Equal(t, http.StatusForbidden, do(h, "/api/stream/good", desktopUA, nil).Code)
	assert.Equal(t, http.StatusOK, do(h, "/api/stream/good", "TelegramBot (like TwitterBot)", nil).Code)

	// неизвестный токен отклоняется до проверки клиента
	assert.Equal(t, http.StatusNotFound, do(h, "/api/stream/nope", desktopUA, nil).Code)

	h = newTestServer(t, tokens, false, NewLocalSource(dir))
	assert.Equal(t, http.StatusOK, do(h, "/api/stream/good", desktopUA, nil).Code)
}

func TestStreamMissingVideo(t *testing.T) {
	h := newTestServer(t, fakeTokens{
		"gone":      {EpisodeID: 3, VideoRef: "missing.mp4"},
		"traversal": {EpisodeID: 4, VideoRef: "../secret.mp4"},
	}, true, NewLocalSource(videoDir(t)))

	assert.Equal(t, http.StatusNotFound, do(h, "/api/stream/gone", mobileUA, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, "/api/stream/traversal", mobileUA, nil).Code)
}

type fakeFiles struct {
	baseURL string
	err     error
}

func (f *fakeFiles) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.File{FileID: params.FileID, FilePath: "videos/" + params.FileID + ".mp4"}, nil
}

func (f *fakeFiles) FileDownloadLink(file *models.File) string {
	return f.baseURL + "/" + file.FilePath
}

func TestStreamTelegramFallback(t *testing.T) {
	var gotRange string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/videos/FILEID.mp4") {
			http.NotFound(w, r)
			return
		}
		gotRange = r.Header.Get("Range")
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeContent(w, r, "v.mp4", time.Time{}, strings.NewReader(videoBody))
	}))
	defer upstream.Close()

	h := newTestServer(t, fakeTokens{
		"tg": {EpisodeID: 5, VideoRef: "FILEID"},
	}, true, NewLocalSource(videoDir(t)), NewTelegramSource(&fakeFiles{baseURL: upstream.URL}, upstream.Client()))

	rec := do(h, "/api/stream/tg", mobileUA, map[string]string{"Range": "bytes=10-"})
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes=10-", gotRange)
	assert.Equal(t, "abcdefghij", rec.Body.String())
	assert.Equal(t, "bytes 10-19/20", rec.Header().Get("Content-Range"))
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
}

func TestStreamTelegramUnavailable(t *testing.T) {
	h := newTestServer(t, fakeTokens{
		"tg": {EpisodeID: 5, VideoRef: "FILEID"},
	}, true, NewTelegramSource(&fakeFiles{err: errors.New("file is too big")}, nil))

	assert.Equal(t, http.StatusBadGateway, do(h, "/api/stream/tg", mobileUA, nil).Code)
}

func TestStreamUnknownReference(t *testing.T) {
	// ни локального файла, ни корректного file_id
	rejected := fmt.Errorf("%w, Bad Request: invalid file_id", bot.ErrorBadRequest)
	h := newTestServer(t, fakeTokens{
		"bad": {EpisodeID: 6, VideoRef: "lost.mp4"},
	}, true, NewLocalSource(videoDir(t)), NewTelegramSource(&fakeFiles{err: rejected}, nil))

	rec := do(h, "/api/stream/bad", mobileUA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "video not found")
}

func TestWatchPageAndHealth(t *testing.T) {
	h := newTestServer(t, fakeTokens{}, true)

	rec := do(h, "/watch?token=abc", desktopUA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/stream/")

	rec = do(h, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsMobileClient(t *testing.T) {
	assert.True(t, IsMobileClient(mobileUA))
	assert.True(t, IsMobileClient("Mozilla/5.0 (Linux; Android 14)"))
	assert.True(t, IsMobileClient("Telegram-Desktop/4.0"))
	assert.False(t, IsMobileClient(desktopUA))
	assert.False(t, IsMobileClient(""))
}
