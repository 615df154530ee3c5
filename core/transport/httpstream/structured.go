package httpstream

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/dinetab/chat-core/core/carts"
)

// ProposalSchema is a structured-output contract advertised with the turn
// request so the server constrains its cart_proposal payloads to the shape
// the engine can parse.
type ProposalSchema struct {
	Name   string            `json:"name"`
	Schema jsonschema.Schema `json:"schema"`
	Strict bool              `json:"strict"`
}

// NewProposalSchema reflects the cart-proposal shape into a JSON schema.
func NewProposalSchema() *ProposalSchema {
	// TODO: Implement a custom reflector that only satisfies the subset of
	// jsonschema the ordering backend validates against
	reflector := jsonschema.Reflector{DoNotReference: true}
	proposalType := reflect.TypeOf(carts.Proposal{})

	return &ProposalSchema{
		Name:   proposalType.Name(),
		Schema: *reflector.ReflectFromType(proposalType),
		Strict: true,
	}
}
