package httpstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dinetab/chat-core/core/protocol"
)

func TestOpenStreamsResponseBody(t *testing.T) {
	payload := "data: {\"type\":\"text\",\"text\":\"Hi\"}\ndata: {\"type\":\"complete\"}\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected method %q, got %q", http.MethodPost, r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", auth)
		}
		if contentType := r.Header.Get("Content-Type"); contentType != "application/json" {
			t.Errorf("expected json content type, got %q", contentType)
		}

		var body struct {
			protocol.TurnRequest
			Stream         bool            `json:"stream"`
			ProposalSchema json.RawMessage `json:"proposal_schema"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("expected decodable body, got %v", err)
		}
		if !body.Stream {
			t.Errorf("expected stream flag set")
		}
		if body.Message != "hi" {
			t.Errorf("expected message %q, got %q", "hi", body.Message)
		}
		if len(body.ProposalSchema) == 0 {
			t.Errorf("expected a proposal schema in the request")
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for _, line := range strings.SplitAfter(payload, "\n") {
			if line == "" {
				continue
			}
			io.WriteString(w, line)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := New(server.URL,
		WithAPIKey("test-key"),
		WithProposalSchema(NewProposalSchema()),
	)

	body, err := client.Open(context.Background(), protocol.TurnRequest{
		SessionID: "s-1",
		TurnID:    "t-1",
		Message:   "hi",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer body.Close()

	received, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(received) != payload {
		t.Fatalf("expected %q, got %q", payload, string(received))
	}
}

func TestOpenRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL)

	body, err := client.Open(context.Background(), protocol.TurnRequest{Message: "hi"})
	if err == nil {
		body.Close()
		t.Fatalf("expected an error for a non-OK status")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %q", err.Error())
	}
}

func TestOpenHonoursContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(server.URL)
	if body, err := client.Open(ctx, protocol.TurnRequest{Message: "hi"}); err == nil {
		body.Close()
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestNewProposalSchema(t *testing.T) {
	schema := NewProposalSchema()

	if schema.Name != "Proposal" {
		t.Fatalf("expected schema name %q, got %q", "Proposal", schema.Name)
	}
	if !schema.Strict {
		t.Fatalf("expected a strict schema")
	}

	encoded, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("expected marshallable schema, got %v", err)
	}
	for _, property := range []string{"lines", "catalog_id", "quantity"} {
		if !strings.Contains(string(encoded), property) {
			t.Fatalf("expected schema to describe %q, got %s", property, encoded)
		}
	}
}
