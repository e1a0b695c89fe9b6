// internal/adapters/inference/client.go
package inference

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bankreviews/internal/adapters/observability"
	"bankreviews/internal/domain"
)

// Client talks to a text-classification serving endpoint hosting a
// pre-trained binary (positive/negative) sentiment model. Inference is the
// only high-latency step in the pipeline, so the surface is batch-first.
type Client struct {
	base      string
	hc        *http.Client
	rl        *rate.Limiter
	maxTokens int
}

// New builds a client. maxTokens is the model's input budget; longer texts
// are truncated, never rejected.
func New(base string, rps, maxTokens int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("inference base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		hc:        &http.Client{Timeout: 30 * time.Second},
		rl:        rate.NewLimiter(rate.Limit(rps), rps),
		maxTokens: maxTokens,
	}, nil
}

// serving wire shapes: {"inputs": [...]} in,
// [[{"label": "POSITIVE", "score": 0.99}], ...] out (top label per input).
type classifyRequest struct {
	Inputs []string `json:"inputs"`
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ScoreBatch classifies texts in one inference call. Results align with
// the input slice. Any failure maps to domain.ErrUnavailable: the caller's
// policy is to keep the records without a model result, not to abort.
func (c *Client) ScoreBatch(ctx context.Context, texts []string) ([]domain.SentimentResult, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = TruncateTokens(t, c.maxTokens)
	}

	var preds [][]classification
	if err := c.post(ctx, c.base+"/classify", classifyRequest{Inputs: inputs}, &preds); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if len(preds) != len(texts) {
		return nil, fmt.Errorf("%w: got %d predictions for %d inputs", domain.ErrUnavailable, len(preds), len(texts))
	}

	out := make([]domain.SentimentResult, len(preds))
	for i, p := range preds {
		if len(p) == 0 {
			return nil, fmt.Errorf("%w: empty prediction at index %d", domain.ErrUnavailable, i)
		}
		label, err := mapLabel(p[0].Label)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		out[i] = domain.SentimentResult{Label: label, Score: p[0].Score}
	}
	return out, nil
}

// TruncateTokens drops trailing whitespace-delimited tokens beyond limit.
// Deterministic on purpose: the same text must always produce the same
// model input.
func TruncateTokens(text string, limit int) string {
	fields := strings.Fields(text)
	if len(fields) <= limit {
		return text
	}
	return strings.Join(fields[:limit], " ")
}

// mapLabel folds the serving labels onto the domain. The binary model has
// no neutral class.
func mapLabel(l string) (domain.SentimentLabel, error) {
	switch strings.ToUpper(strings.TrimSpace(l)) {
	case "POSITIVE", "LABEL_1":
		return domain.SentimentPositive, nil
	case "NEGATIVE", "LABEL_0":
		return domain.SentimentNegative, nil
	default:
		return "", fmt.Errorf("unknown label %q", l)
	}
}

// post performs a POST with client-side rate limiting, retries on 429 and
// transient 5xx (honoring Retry-After), and JSON decode into out.
func (c *Client) post(ctx context.Context, url string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "bankreviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveExternal("inference", "/classify", 0, time.Since(start))
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("inference", "/classify", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
