// Package fhirclient pushes synthesized bundles to a receiving FHIR server.
package fhirclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/metrics"
)

var ErrRejected = errors.New("receiver rejected bundle")

type Config struct {
	// BaseURL is the receiver's FHIR base. Bundles are POSTed to it directly.
	BaseURL     string
	Timeout     time.Duration
	RetryCount  int
	BearerToken string
}

type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("fhir push base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", fhir.ContentTypeFHIRJSON)
	if cfg.BearerToken != "" {
		rc.SetAuthToken(cfg.BearerToken)
	}
	return &Client{http: rc, logger: logger}, nil
}

// Push POSTs the artifact body and returns the receiver's status code. A
// non-2xx answer is returned as ErrRejected with the receiver's diagnostics.
func (c *Client) Push(ctx context.Context, a *fhir.Artifact) (int, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", a.ContentType).
		SetBody(a.Body).
		Post("")
	if err != nil {
		metrics.RecordPush("error", time.Since(start))
		c.logger.Error().Err(err).Str("artifact", a.Name).Msg("bundle push failed")
		return 0, fmt.Errorf("push %s: %w", a.Name, err)
	}

	status := resp.StatusCode()
	metrics.RecordPush(strconv.Itoa(status), time.Since(start))
	if !resp.IsSuccess() {
		c.logger.Warn().Int("status", status).Str("artifact", a.Name).Msg("receiver rejected bundle")
		return status, fmt.Errorf("%w: %d %s", ErrRejected, status, diagnostics(resp.Body()))
	}

	c.logger.Info().
		Int("status", status).
		Str("artifact", a.Name).
		Str("location", resp.Header().Get("Location")).
		Dur("duration", time.Since(start)).
		Msg("bundle pushed")
	return status, nil
}

// diagnostics extracts the issue texts of an OperationOutcome body, or a
// truncated copy of any other body.
func diagnostics(body []byte) string {
	var oo fhir.OperationOutcome
	if err := json.Unmarshal(body, &oo); err == nil && oo.ResourceType == "OperationOutcome" {
		msgs := make([]string, 0, len(oo.Issue))
		for _, is := range oo.Issue {
			msgs = append(msgs, is.Diagnostics)
		}
		return strings.Join(msgs, "; ")
	}
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
