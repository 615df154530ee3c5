// Package httpstream implements the chunked-HTTP stream source: it POSTs a
// turn request and hands the newline-delimited JSON response body back to
// the engine unread.
package httpstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dinetab/chat-core/core/protocol"
)

type Option func(*Client)

// WithAPIKey sets the bearer token sent with every turn request.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithHTTPClient overrides the default instrumented client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithProposalSchema advertises a JSON schema for cart-proposal lines in the
// request so the server emits well-formed cart_proposal payloads.
func WithProposalSchema(schema *ProposalSchema) Option {
	return func(c *Client) { c.proposalSchema = schema }
}

// Client opens one chunked response stream per turn. The engine consumes the
// body; the client owns request construction and authentication.
type Client struct {
	url            string
	apiKey         string
	httpClient     *http.Client
	proposalSchema *ProposalSchema
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url: url,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestBody struct {
	protocol.TurnRequest
	Stream         bool            `json:"stream"`
	ProposalSchema *ProposalSchema `json:"proposal_schema,omitempty"`
}

// Open sends the turn request and returns the raw response body. The body
// stays open for the lifetime of the turn; cancelling ctx aborts the
// in-flight read.
func (c *Client) Open(ctx context.Context, request protocol.TurnRequest) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "open turn stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.session_id", request.SessionID),
		attribute.String("request.turn_id", request.TurnID),
		attribute.Int("request.history_size", len(request.History)),
	)

	requestBodyBytes, err := json.Marshal(requestBody{
		TurnRequest:    request,
		Stream:         true,
		ProposalSchema: c.proposalSchema,
	})
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	span.SetAttributes(attribute.String("request.url", req.URL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr != nil {
			span.RecordError(fmt.Errorf("error reading error body: %w", readErr))
		} else {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		resp.Body.Close()

		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return nil, err
	}

	return resp.Body, nil
}
