package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrSourceUnavailable is returned when the bulk source cannot be fetched or
// read in time.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrThrottled is returned when min_fetch_interval would delay a remote fetch
// past the timeout. The source itself was never contacted.
var ErrThrottled = errors.New("source fetch throttled")

// maxBodyBytes caps how much of a remote response is read into memory
const maxBodyBytes = 64 << 20

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// fetch reads the whole source into memory, closing it before returning.
// Waiting on the limiter and the fetch itself each get the full timeout.
func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !isRemote(source) {
		ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
		return l.readFile(ctx, strings.TrimPrefix(source, "file://"))
	}

	if err := l.throttle(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting to fetch %s: %v", ErrThrottled, source, err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid source URL %s: %v", ErrSourceUnavailable, source, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %v", ErrSourceUnavailable, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body from %s: %v", ErrSourceUnavailable, source, err)
	}
	return body, nil
}

func (l *Loader) throttle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	return l.limiter.Wait(ctx)
}

func (l *Loader) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return data, nil
}
