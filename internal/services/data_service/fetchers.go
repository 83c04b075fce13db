package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mpsite/internal/storage"
	"mpsite/internal/storage/filestorage"
)

// Fetcher источник сырых наборов data/<name>.json
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

type FetcherFunc func(ctx context.Context, name string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher тянет наборы с другого хоста (старый статический сайт)
type HTTPFetcher struct {
	baseURL string
	client  HTTPDoer
}

func NewHTTPFetcher(baseURL string, client HTTPDoer) (*HTTPFetcher, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid legacy data base url %q", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTPFetcher{baseURL: strings.TrimRight(u.String(), "/"), client: client}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	endpoint := f.baseURL + "/data/" + url.PathEscape(name) + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// DirFetcher читает наборы из локального каталога
type DirFetcher struct {
	files filestorage.FileStorage
}

func NewDirFetcher(files filestorage.FileStorage) *DirFetcher {
	return &DirFetcher{files: files}
}

func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f.files.Read(ctx, name)
}

// FSFetcher читает наборы из fs.FS, обычно встроенного в бинарник
type FSFetcher struct {
	fsys fs.FS
	dir  string
}

func NewFSFetcher(fsys fs.FS, dir string) *FSFetcher {
	return &FSFetcher{fsys: fsys, dir: dir}
}

func (f *FSFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := name + ".json"
	if f.dir != "" {
		p = f.dir + "/" + p
	}

	data, err := fs.ReadFile(f.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, storage.ErrFileNotFound)
	}
	return data, err
}
