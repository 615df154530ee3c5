package protocol

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/menus"
	"github.com/dinetab/chat-core/internal/utils"
)

func TestParseFraming(t *testing.T) {
	for _, tc := range []struct {
		name string
		line string
	}{
		{name: "bare", line: "{\"type\":\"text\",\"text\":\"hi\"}"},
		{name: "prefixed", line: "data:{\"type\":\"text\",\"text\":\"hi\"}"},
		{name: "prefixed with space", line: "data: {\"type\":\"text\",\"text\":\"hi\"}"},
		{name: "surrounding whitespace", line: "  {\"type\":\"text\",\"text\":\"hi\"}  "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			envelope, err := Parse(tc.line)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			text, ok := envelope.(TextEnvelope)
			if !ok {
				t.Fatalf("expected TextEnvelope, got %T", envelope)
			}
			if text.Text != "hi" {
				t.Fatalf("expected %q, got %q", "hi", text.Text)
			}
		})
	}
}

func TestParseSentinel(t *testing.T) {
	for _, line := range []string{"[DONE]", "data: [DONE]"} {
		envelope, err := Parse(line)
		if !errors.Is(err, ErrStreamDone) {
			t.Fatalf("expected ErrStreamDone for %q, got %v", line, err)
		}
		if envelope != nil {
			t.Fatalf("expected nil envelope, got %v", envelope)
		}
	}
}

func TestParseEmptyLine(t *testing.T) {
	for _, line := range []string{"", "   ", "data:"} {
		envelope, err := Parse(line)
		if err != nil {
			t.Fatalf("expected no error for %q, got %v", line, err)
		}
		if envelope != nil {
			t.Fatalf("expected nil envelope for %q, got %v", line, envelope)
		}
	}
}

func TestParseMalformedJSON(t *testing.T) {
	envelope, err := Parse("{\"type\":\"text\",")
	if err == nil {
		t.Fatalf("expected an error, got envelope %v", envelope)
	}
	if errors.Is(err, ErrStreamDone) {
		t.Fatalf("expected a decode error, got ErrStreamDone")
	}
}

func TestParseUnknownKind(t *testing.T) {
	envelope, err := Parse("{\"type\":\"telemetry\",\"payload\":42}")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if envelope != nil {
		t.Fatalf("expected unknown kind to be skipped, got %v", envelope)
	}
}

func TestParseEnvelopes(t *testing.T) {
	for _, tc := range []struct {
		name     string
		line     string
		expected Envelope
	}{
		{
			name:     "text via content alias",
			line:     "{\"kind\":\"content\",\"content\":\"hello\"}",
			expected: TextEnvelope{Text: "hello"},
		},
		{
			name:     "text via delta alias",
			line:     "{\"type\":\"text\",\"delta\":\"hel\"}",
			expected: TextEnvelope{Text: "hel"},
		},
		{
			name: "structured data via ui_element alias",
			line: "{\"type\":\"ui_element\",\"elements\":[{\"item_id\":\"m-1\",\"title\":\"Margherita\",\"price\":1250,\"image\":\"https://img/m1\"}]}",
			expected: StructuredDataEnvelope{Items: []menus.Item{{
				ID:         "m-1",
				Name:       "Margherita",
				PriceCents: 1250,
				ImageURL:   "https://img/m1",
			}}},
		},
		{
			name: "cart operation with nested item",
			line: "{\"type\":\"cart_operation\",\"operation\":{\"action\":\"add\",\"item\":{\"item_id\":\"m-2\",\"qty\":2,\"options\":[\"extra cheese\"]}}}",
			expected: CartOperationEnvelope{Operation: carts.Operation{
				Action: carts.ActionAdd,
				Line: carts.Line{
					CatalogID:      "m-2",
					Quantity:       2,
					Customizations: []string{"extra cheese"},
				},
			}},
		},
		{
			name: "cart operation flattened with default quantity",
			line: "{\"type\":\"cart_operation\",\"action\":\"remove\",\"item\":{\"id\":\"m-3\"}}",
			expected: CartOperationEnvelope{Operation: carts.Operation{
				Action: carts.ActionRemove,
				Line:   carts.Line{CatalogID: "m-3", Quantity: 1},
			}},
		},
		{
			name: "menu refs via refs alias",
			line: "{\"type\":\"menu_refs\",\"refs\":[{\"id\":\"m-4\",\"title\":\"Tiramisu\",\"price\":700}]}",
			expected: MenuRefsEnvelope{Refs: []menus.Reference{{
				CatalogID:   "m-4",
				DisplayName: "Tiramisu",
				PriceCents:  700,
			}}},
		},
		{
			name: "suggested actions via suggestions alias",
			line: "{\"type\":\"suggested_actions\",\"suggestions\":[{\"title\":\"Yes please\",\"value\":\"confirm\"}]}",
			expected: SuggestedActionsEnvelope{Actions: []SuggestedAction{{
				Label:   "Yes please",
				Payload: "confirm",
			}}},
		},
		{
			name: "cart proposal via items alias",
			line: "{\"type\":\"cart_proposal\",\"proposal\":{\"proposal_id\":\"p-1\",\"items\":[{\"item_id\":\"m-5\",\"notes\":\"no onion\"}]}}",
			expected: CartProposalEnvelope{Proposal: carts.Proposal{
				ID: "p-1",
				Lines: []carts.ProposalLine{{
					CatalogID: "m-5",
					Quantity:  1,
					Note:      "no onion",
				}},
			}},
		},
		{
			name: "metadata nested with score alias",
			line: "{\"type\":\"metadata\",\"metadata\":{\"message_id\":\"srv-9\",\"intent\":\"order\",\"score\":0.93,\"tools\":[\"menu_lookup\"]}}",
			expected: MetadataEnvelope{
				MessageID:  "srv-9",
				Intent:     "order",
				Confidence: utils.Ptr(0.93),
				ToolsUsed:  []string{"menu_lookup"},
			},
		},
		{
			name:     "metadata flattened without confidence",
			line:     "{\"type\":\"metadata\",\"intent\":\"smalltalk\"}",
			expected: MetadataEnvelope{Intent: "smalltalk"},
		},
		{
			name:     "complete via done alias",
			line:     "{\"type\":\"done\"}",
			expected: CompleteEnvelope{},
		},
		{
			name:     "error recoverable by default",
			line:     "{\"type\":\"error\",\"message\":\"rate limited\"}",
			expected: ErrorEnvelope{Message: "rate limited", Recoverable: true},
		},
		{
			name:     "error via fatal alias",
			line:     "{\"type\":\"error\",\"error\":\"backend down\",\"fatal\":true}",
			expected: ErrorEnvelope{Message: "backend down", Recoverable: false},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			envelope, err := Parse(tc.line)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !reflect.DeepEqual(envelope, tc.expected) {
				t.Fatalf("expected %#v, got %#v", tc.expected, envelope)
			}
		})
	}
}
