package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var (
	// ErrVideoNotFound источник не знает такого видео, можно пробовать следующий
	ErrVideoNotFound = errors.New("video not found")
	// ErrVideoUnavailable видео есть, но получить его сейчас нельзя
	ErrVideoUnavailable = errors.New("video unavailable")
)

// Source отдаёт видео по ссылке из эпизода с поддержкой Range
type Source interface {
	Serve(w http.ResponseWriter, r *http.Request, ref string) error
}

// LocalSource файлы из каталога VIDEOS_DIR
type LocalSource struct {
	dir string
}

func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Serve отдаёт файл через http.ServeContent: Range, If-Range и 206 обрабатываются там
func (s *LocalSource) Serve(w http.ResponseWriter, r *http.Request, ref string) error {
	// Ссылка должна указывать внутрь каталога
	if s.dir == "" || !filepath.IsLocal(ref) {
		return ErrVideoNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat video: %w", err)
	}
	if info.IsDir() {
		return ErrVideoNotFound
	}

	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return nil
}

// FileResolver часть Bot API для скачивания файлов, её реализует *bot.Bot
type FileResolver interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// TelegramSource проксирует файл из Bot API, пробрасывая Range.
// Bot API отдаёт файлы только до 20 МБ, большие видео нужно класть в VIDEOS_DIR
type TelegramSource struct {
	files  FileResolver
	client *http.Client
}

func NewTelegramSource(files FileResolver, client *http.Client) *TelegramSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &TelegramSource{files: files, client: client}
}

// Заголовки запроса и ответа, которые пробрасываются через прокси
var (
	forwardRequestHeaders  = []string{"Range", "If-Range"}
	forwardResponseHeaders = []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges", "Last-Modified", "ETag"}
)

// Serve получает путь файла через getFile и отдаёт содержимое клиенту
func (s *TelegramSource) Serve(w http.ResponseWriter, r *http.Request, ref string) error {
	file, err := s.files.GetFile(r.Context(), &bot.GetFileParams{FileID: ref})
	if err != nil {
		// 400 на getFile: ссылка не является file_id
		if errors.Is(err, bot.ErrorBadRequest) || errors.Is(err, bot.ErrorNotFound) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("%w: get file: %v", ErrVideoUnavailable, err)
	}
	if file == nil || file.FilePath == "" {
		return ErrVideoNotFound
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, s.files.FileDownloadLink(file), nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	for _, h := range forwardRequestHeaders {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download: %v", ErrVideoUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrVideoNotFound
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusRequestedRangeNotSatisfiable:
		return fmt.Errorf("%w: telegram responded %d", ErrVideoUnavailable, resp.StatusCode)
	}

	for _, h := range forwardResponseHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	if w.Header().Get("Accept-Ranges") == "" {
		w.Header().Set("Accept-Ranges", "bytes")
	}
	// Telegram отдаёт application/octet-stream, плееру нужен тип видео
	if ct := w.Header().Get("Content-Type"); ct == "" || ct == "application/octet-stream" {
		w.Header().Set("Content-Type", "video/mp4")
	}

	w.WriteHeader(resp.StatusCode)
	// Клиент может закрыть соединение посреди видео, это не ошибка сервера
	_, _ = io.Copy(w, resp.Body)
	return nil
}

// chainSource пробует источники по очереди, пока один не найдёт видео
type chainSource []Source

func (cs chainSource) Serve(w http.ResponseWriter, r *http.Request, ref string) error {
	for _, src := range cs {
		err := src.Serve(w, r, ref)
		if errors.Is(err, ErrVideoNotFound) {
			continue
		}
		return err
	}
	return ErrVideoNotFound
}
