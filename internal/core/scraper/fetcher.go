package scraper

import (
	"context"
	"fmt"
	"io"
	"time"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 5 << 20
	maxRedirects        = 10
)

// Fetcher 下載網頁 HTML
type Fetcher struct {
	client       *resty.Client
	maxBodyBytes int64
}

// NewFetcher 創建網頁下載器
func NewFetcher(cfg config.ScraperConfig) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "it-IT,it;q=0.9,en;q=0.8").
		SetTimeout(cfg.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))

	return &Fetcher{client: client, maxBodyBytes: cfg.MaxBodyBytes}
}

// Fetch 取得頁面內容；非 2xx 或內容過大皆視為失敗。
// 回應主體以串流讀取，超過上限即停止，不會整個載入記憶體。
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", common.ErrFetchFailed.Wrap(err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("HTTP %d from %s", resp.StatusCode(), url))
	}
	if resp.RawResponse.ContentLength > f.maxBodyBytes {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("page larger than %d bytes", f.maxBodyBytes))
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBodyBytes+1))
	if err != nil {
		return "", common.ErrFetchFailed.Wrap(err)
	}
	if int64(len(data)) > f.maxBodyBytes {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("page larger than %d bytes", f.maxBodyBytes))
	}

	common.LogDebug("網頁下載完成",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return string(data), nil
}
