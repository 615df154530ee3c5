package protocol

import (
	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/menus"
)

// rawEnvelope is the superset of fields the server has ever put on the wire.
// Older backends used different field names for the same concepts; every
// alias is resolved here, once, so handlers never shape-sniff payloads.
type rawEnvelope struct {
	Type string `json:"type"`
	Kind string `json:"kind"`

	Text    string `json:"text"`
	Content string `json:"content"`
	Delta   string `json:"delta"`

	Items    []rawItem `json:"items"`
	Elements []rawItem `json:"elements"`

	Operation *rawOperation `json:"operation"`
	Action    string        `json:"action"`
	Item      *rawLine      `json:"item"`

	MenuRefs []rawRef `json:"menu_refs"`
	Refs     []rawRef `json:"refs"`

	Actions     []rawAction `json:"actions"`
	Suggestions []rawAction `json:"suggestions"`

	Proposal *rawProposal `json:"proposal"`

	Metadata   *rawMetadata `json:"metadata"`
	MessageID  string       `json:"message_id"`
	Intent     string       `json:"intent"`
	Confidence *float64     `json:"confidence"`
	Score      *float64     `json:"score"`
	ToolsUsed  []string     `json:"tools_used"`
	Tools      []string     `json:"tools"`

	Message     string `json:"message"`
	ErrorText   string `json:"error"`
	Recoverable *bool  `json:"recoverable"`
	Fatal       bool   `json:"fatal"`
}

type rawItem struct {
	ID          string   `json:"id"`
	ItemID      string   `json:"item_id"`
	MenuItemID  string   `json:"menu_item_id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int      `json:"price_cents"`
	Price       int      `json:"price"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"image_url"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

type rawRef struct {
	CatalogID  string `json:"catalog_id"`
	ItemID     string `json:"item_id"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	Image      string `json:"image"`
	PriceCents int    `json:"price_cents"`
	Price      int    `json:"price"`
}

type rawAction struct {
	Label   string `json:"label"`
	Title   string `json:"title"`
	Payload string `json:"payload"`
	Value   string `json:"value"`
}

type rawOperation struct {
	Action string   `json:"action"`
	Item   *rawLine `json:"item"`
}

type rawLine struct {
	CatalogID      string   `json:"catalog_id"`
	ItemID         string   `json:"item_id"`
	ID             string   `json:"id"`
	Variant        string   `json:"variant"`
	Quantity       int      `json:"quantity"`
	Qty            int      `json:"qty"`
	Customizations []string `json:"customizations"`
	Options        []string `json:"options"`
	Note           string   `json:"note"`
	Notes          string   `json:"notes"`
}

type rawProposal struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposal_id"`
	Lines      []rawLine `json:"lines"`
	Items      []rawLine `json:"items"`
}

type rawMetadata struct {
	MessageID  string   `json:"message_id"`
	Intent     string   `json:"intent"`
	Confidence *float64 `json:"confidence"`
	Score      *float64 `json:"score"`
	ToolsUsed  []string `json:"tools_used"`
	Tools      []string `json:"tools"`
}

// envelope resolves the discriminant and aliases into a typed envelope.
// Unknown kinds return nil so server-added event types pass through silently.
func (raw rawEnvelope) envelope() Envelope {
	kind := raw.Type
	if kind == "" {
		kind = raw.Kind
	}

	switch kind {
	case "content", "text":
		return TextEnvelope{Text: firstNonEmpty(raw.Text, raw.Content, raw.Delta)}

	case "structured_data", "ui_element":
		items := raw.Items
		if len(items) == 0 {
			items = raw.Elements
		}
		envelope := StructuredDataEnvelope{}
		for _, item := range items {
			envelope.Items = append(envelope.Items, item.item())
		}
		return envelope

	case "cart_operation":
		operation := raw.Operation
		if operation == nil {
			operation = &rawOperation{Action: raw.Action, Item: raw.Item}
		}
		envelope := CartOperationEnvelope{Operation: carts.Operation{Action: carts.Action(operation.Action)}}
		if operation.Item != nil {
			envelope.Operation.Line = operation.Item.line()
		}
		return envelope

	case "menu_refs":
		refs := raw.MenuRefs
		if len(refs) == 0 {
			refs = raw.Refs
		}
		envelope := MenuRefsEnvelope{}
		for _, ref := range refs {
			envelope.Refs = append(envelope.Refs, ref.reference())
		}
		return envelope

	case "suggested_actions":
		actions := raw.Actions
		if len(actions) == 0 {
			actions = raw.Suggestions
		}
		envelope := SuggestedActionsEnvelope{}
		for _, action := range actions {
			envelope.Actions = append(envelope.Actions, SuggestedAction{
				Label:   firstNonEmpty(action.Label, action.Title),
				Payload: firstNonEmpty(action.Payload, action.Value),
			})
		}
		return envelope

	case "cart_proposal":
		envelope := CartProposalEnvelope{}
		if raw.Proposal != nil {
			envelope.Proposal.ID = firstNonEmpty(raw.Proposal.ID, raw.Proposal.ProposalID)
			lines := raw.Proposal.Lines
			if len(lines) == 0 {
				lines = raw.Proposal.Items
			}
			for _, line := range lines {
				cartLine := line.line()
				envelope.Proposal.Lines = append(envelope.Proposal.Lines, carts.ProposalLine{
					CatalogID:      cartLine.CatalogID,
					Variant:        cartLine.Variant,
					Quantity:       cartLine.Quantity,
					Customizations: cartLine.Customizations,
					Note:           cartLine.Note,
				})
			}
		}
		return envelope

	case "metadata":
		metadata := raw.Metadata
		if metadata == nil {
			metadata = &rawMetadata{
				MessageID:  raw.MessageID,
				Intent:     raw.Intent,
				Confidence: raw.Confidence,
				Score:      raw.Score,
				ToolsUsed:  raw.ToolsUsed,
				Tools:      raw.Tools,
			}
		}
		confidence := metadata.Confidence
		if confidence == nil {
			confidence = metadata.Score
		}
		tools := metadata.ToolsUsed
		if len(tools) == 0 {
			tools = metadata.Tools
		}
		return MetadataEnvelope{
			MessageID:  metadata.MessageID,
			Intent:     metadata.Intent,
			Confidence: confidence,
			ToolsUsed:  tools,
		}

	case "complete", "done":
		return CompleteEnvelope{}

	case "error":
		recoverable := !raw.Fatal
		if raw.Recoverable != nil {
			recoverable = *raw.Recoverable
		}
		return ErrorEnvelope{
			Message:     firstNonEmpty(raw.Message, raw.ErrorText),
			Recoverable: recoverable,
		}

	default:
		return nil
	}
}

func (item rawItem) item() menus.Item {
	price := item.PriceCents
	if price == 0 {
		price = item.Price
	}
	return menus.Item{
		ID:          firstNonEmpty(item.ID, item.ItemID, item.MenuItemID),
		Name:        firstNonEmpty(item.Name, item.Title),
		Description: item.Description,
		PriceCents:  price,
		Currency:    item.Currency,
		ImageURL:    firstNonEmpty(item.ImageURL, item.Image),
		Category:    item.Category,
		Tags:        item.Tags,
	}
}

func (ref rawRef) reference() menus.Reference {
	price := ref.PriceCents
	if price == 0 {
		price = ref.Price
	}
	return menus.Reference{
		CatalogID:   firstNonEmpty(ref.CatalogID, ref.ItemID, ref.ID),
		DisplayName: firstNonEmpty(ref.Name, ref.Title),
		ImageURL:    firstNonEmpty(ref.ImageURL, ref.Image),
		PriceCents:  price,
	}
}

func (line rawLine) line() carts.Line {
	quantity := line.Quantity
	if quantity == 0 {
		quantity = line.Qty
	}
	if quantity == 0 {
		quantity = 1
	}
	customizations := line.Customizations
	if len(customizations) == 0 {
		customizations = line.Options
	}
	return carts.Line{
		CatalogID:      firstNonEmpty(line.CatalogID, line.ItemID, line.ID),
		Variant:        line.Variant,
		Quantity:       quantity,
		Customizations: customizations,
		Note:           firstNonEmpty(line.Note, line.Notes),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
