// Package fal implements the video generation client for the fal.ai queue
// API. A generation is submit, poll until finished, then download.
package fal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"sceneforge/log"
	"sceneforge/pkg/errors"
)

// Client talks to one fal.ai model endpoint.
type Client struct {
	http         *resty.Client
	baseUrl      string
	apiKey       string
	pollInterval time.Duration
	maxWait      time.Duration
	maxAttempts  int
	clipDuration float64
	costPerSec   float64
	promptMaxLen int
}

// Options carries the generation policy knobs.
type Options struct {
	BaseUrl           string
	ApiKey            string
	PollIntervalSec   int
	MaxWaitSec        int
	MaxAttempts       int
	FixedClipDuration float64
	CostPerSecondUSD  float64
	PromptMaxLen      int
}

func NewClient(opts Options) *Client {
	if opts.PollIntervalSec <= 0 {
		opts.PollIntervalSec = 5
	}
	if opts.MaxWaitSec <= 0 {
		opts.MaxWaitSec = 300
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &Client{
		http:         resty.New().SetTimeout(60 * time.Second),
		baseUrl:      opts.BaseUrl,
		apiKey:       opts.ApiKey,
		pollInterval: time.Duration(opts.PollIntervalSec) * time.Second,
		maxWait:      time.Duration(opts.MaxWaitSec) * time.Second,
		maxAttempts:  opts.MaxAttempts,
		clipDuration: opts.FixedClipDuration,
		costPerSec:   opts.CostPerSecondUSD,
		promptMaxLen: opts.PromptMaxLen,
	}
}

type submitRequest struct {
	Prompt   string `json:"prompt"`
	Duration string `json:"duration"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	StatusURL string `json:"status_url"`
}

type statusResponse struct {
	Status string `json:"status"` // IN_QUEUE | IN_PROGRESS | COMPLETED
	Error  string `json:"error,omitempty"`
	Video  struct {
		URL string `json:"url"`
	} `json:"video"`
}

// GenerateClip runs the full submit/poll/download cycle for one prompt and
// writes the clip to outPath. Transient failures (rate limit, timeout,
// upstream 5xx) are retried with exponential backoff up to the bounded
// attempt count; the last error is returned once attempts are exhausted.
func (c *Client) GenerateClip(ctx context.Context, prompt string, outPath string) error {
	prompt = truncatePrompt(prompt, c.promptMaxLen)

	var lastErr error
	backoff := 2 * time.Second
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.generateOnce(ctx, prompt, outPath)
		if lastErr == nil {
			return nil
		}
		if !errors.IsTransient(lastErr) || attempt == c.maxAttempts {
			break
		}

		log.GetLogger().Warn("generation attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return errors.Wrap(errors.CodeGenerateFailed, "generation cancelled", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string, outPath string) error {
	sub, err := c.submit(ctx, prompt)
	if err != nil {
		return err
	}
	videoURL, err := c.poll(ctx, sub)
	if err != nil {
		return err
	}
	return c.download(ctx, videoURL, outPath)
}

func (c *Client) submit(ctx context.Context, prompt string) (*submitResponse, error) {
	var result submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Key "+c.apiKey).
		SetBody(submitRequest{
			Prompt: prompt,
			// The endpoint only generates fixed-length clips; the duration
			// string is policy, not negotiation.
			Duration: fmt.Sprintf("%.0fs", c.clipDuration),
		}).
		SetResult(&result).
		Post(c.baseUrl)
	if err != nil {
		return nil, errors.Wrap(errors.CodeGenerateFailed, "submit generation request", err)
	}
	if err := classifyStatus(resp.StatusCode()); err != nil {
		return nil, err
	}
	if result.RequestID == "" {
		return nil, errors.New(errors.CodeGenerateFailed, "submit returned no request id")
	}
	return &result, nil
}

func (c *Client) poll(ctx context.Context, sub *submitResponse) (string, error) {
	statusURL := sub.StatusURL
	if statusURL == "" {
		statusURL = fmt.Sprintf("%s/requests/%s/status", c.baseUrl, sub.RequestID)
	}

	deadline := time.Now().Add(c.maxWait)
	for {
		var status statusResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Key "+c.apiKey).
			SetResult(&status).
			Get(statusURL)
		if err != nil {
			return "", errors.Wrap(errors.CodeGenerateFailed, "poll generation status", err)
		}
		if err := classifyStatus(resp.StatusCode()); err != nil {
			return "", err
		}

		switch status.Status {
		case "COMPLETED":
			if status.Video.URL == "" {
				return "", errors.New(errors.CodeGenerateFailed, "completed without video url")
			}
			return status.Video.URL, nil
		case "FAILED", "ERROR":
			return "", errors.WrapWithDetail(errors.CodeGenerateFailed, "generation failed remotely", status.Error, nil)
		}

		if time.Now().After(deadline) {
			return "", errors.WrapWithDetail(errors.CodeGenerateTimeout, "generation polling timed out",
				fmt.Sprintf("waited %s for request %s", c.maxWait, sub.RequestID), nil)
		}
		select {
		case <-ctx.Done():
			return "", errors.Wrap(errors.CodeGenerateFailed, "generation cancelled", ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) download(ctx context.Context, url, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeGenerateDownload, "create clip dir", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetOutput(outPath).
		Get(url)
	if err != nil {
		return errors.Wrap(errors.CodeGenerateDownload, "download generated clip", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return errors.WrapWithDetail(errors.CodeGenerateDownload, "download generated clip",
			fmt.Sprintf("status %d from %s", resp.StatusCode(), url), nil)
	}
	return nil
}

// EstimateCost prices a clip at the configured per-second rate. The remote
// generator bills the full fixed clip length regardless of source duration.
func (c *Client) EstimateCost(durationSec float64) float64 {
	billed := c.clipDuration
	if billed <= 0 {
		billed = durationSec
	}
	return billed * c.costPerSec
}

// truncatePrompt caps the prompt at max bytes, cutting on a rune boundary
// and marking the cut with an ellipsis.
func truncatePrompt(prompt string, max int) string {
	if max <= 0 || len(prompt) <= max {
		return prompt
	}
	const ellipsis = "…"
	cut := max - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(prompt[cut]) {
		cut--
	}
	return prompt[:cut] + ellipsis
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return errors.New(errors.CodeRateLimited, "generation API rate limited")
	case code >= 500:
		return errors.New(errors.CodeUpstreamError, fmt.Sprintf("upstream error %d", code))
	case code >= 400:
		return errors.New(errors.CodeGenerateFailed, fmt.Sprintf("generation API rejected request (%d)", code))
	}
	return nil
}
