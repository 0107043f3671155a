package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Fetcher resolves a URL input to document text.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

const maxDocumentBytes = 10 << 20

var driveIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// HTTPFetcher downloads plain-text documents, retrying transient failures with
// exponential backoff. Google Docs and Drive share links are rewritten to their
// plain-text export URLs.
type HTTPFetcher struct {
	Client          *http.Client
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	Log             logrus.FieldLogger
}

func NewHTTPFetcher(timeout time.Duration, log logrus.FieldLogger) *HTTPFetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTPFetcher{
		Client:          &http.Client{Timeout: timeout},
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  30 * time.Second,
		Log:             log.WithField("component", "url-fetcher"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := ExportURL(rawURL)
	if err != nil {
		return "", err
	}
	log := f.Log.WithField("url", target)

	var text string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			log.WithError(err).Warn("fetch failed")
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			err := fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			log.WithField("http_status", resp.StatusCode).Warn("fetch failed")
			return err
		}
		text = string(body)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.InitialInterval
	b.MaxElapsedTime = f.MaxElapsedTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	log.WithField("bytes", len(text)).Debug("document fetched")
	return text, nil
}

// ExportURL validates rawURL and maps Google share links to plain-text downloads.
func ExportURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid document url %q", rawURL)
	}
	m := driveIDRe.FindStringSubmatch(u.Path)
	switch {
	case m == nil:
		return u.String(), nil
	case u.Host == "docs.google.com" && strings.HasPrefix(u.Path, "/document/"):
		return "https://docs.google.com/document/d/" + m[1] + "/export?format=txt", nil
	case u.Host == "drive.google.com":
		return "https://drive.google.com/uc?export=download&id=" + m[1], nil
	}
	return u.String(), nil
}
