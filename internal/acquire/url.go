// internal/acquire/url.go
package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

const (
	urlFetchTimeout  = 2 * time.Minute
	maxFeedBodyBytes = 100 << 20
)

// URLFetcher pulls a feed file from a source's configured URL.
type URLFetcher struct {
	client *http.Client
}

func NewURLFetcher() *URLFetcher {
	return &URLFetcher{client: &http.Client{Timeout: urlFetchTimeout}}
}

func (f *URLFetcher) Fetch(ctx context.Context, source *domain.Source) (domain.FeedFile, error) {
	if source.URL == "" {
		return domain.FeedFile{}, &domain.ConfigError{SourceID: source.ID, Reason: "url source has no url"}
	}

	file, err := f.download(ctx, source.URL)
	if err != nil {
		return domain.FeedFile{}, &domain.AcquisitionError{SourceID: source.ID, Channel: "url", Err: err}
	}
	return file, nil
}

// download fetches any feed URL; the email adapter reuses it for links
// extracted from message bodies.
func (f *URLFetcher) download(ctx context.Context, rawURL string) (domain.FeedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.FeedFile{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FeedFile{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.FeedFile{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return domain.FeedFile{}, fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	if len(data) == 0 {
		return domain.FeedFile{}, fmt.Errorf("fetch %s: empty body", rawURL)
	}

	return domain.FeedFile{Name: feedFilename(rawURL, resp.Header.Get("Content-Disposition")), Data: data}, nil
}

// feedFilename prefers the Content-Disposition filename, then the URL path
// basename, then a generic fallback.
func feedFilename(rawURL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	return "feed.csv"
}
