// Package screening talks to the external background security check service.
// It holds the outbound HTTP client, the worker pool that runs dispatches off
// the request path, and the callback URL provider.
package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

const tracerName = "github.com/mbhbank/account-service/internal/screening"

// Client sends screening requests to the screener. The otelhttp transport
// records the HTTP client span and injects trace headers.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "screening " + r.Method
				}),
			),
		},
	}
}

// Send POSTs the dispatch and waits for the screener to acknowledge it. The
// verdict itself arrives later on the callback URL. Any transport error or
// non-2xx status is reported as sentinel.ErrDispatch.
func (c *Client) Send(ctx context.Context, dispatch models.ScreeningDispatch) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "screening.dispatch",
		trace.WithAttributes(
			attribute.String("account.number", dispatch.AccountNumber.String()),
		),
	)
	defer span.End()

	if err := c.send(ctx, dispatch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, dispatch models.ScreeningDispatch) error {
	body, err := json.Marshal(dispatch)
	if err != nil {
		return fmt.Errorf("marshal screening request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build screening request: %v: %w", err, sentinel.ErrDispatch)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call screener: %v: %w", err, sentinel.ErrDispatch)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("screener responded with status %d: %w", resp.StatusCode, sentinel.ErrDispatch)
	}
	return nil
}
