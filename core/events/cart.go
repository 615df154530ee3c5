package events

const (
	// KindCartOperationApplied identifies a delegated imperative cart mutation.
	KindCartOperationApplied Kind = "cart.operation_applied"
	// KindCartOperationFailed identifies a rejected imperative cart mutation.
	KindCartOperationFailed Kind = "cart.operation_failed"
)

// CartOperationApplied signals that an imperative cart operation was applied
// by the cart collaborator.
type CartOperationApplied struct {
	Base
	Action    string
	CatalogID string
}

// NewCartOperationApplied creates a cart operation applied event.
func NewCartOperationApplied(action, catalogID string) CartOperationApplied {
	return CartOperationApplied{Base: NewBase(KindCartOperationApplied), Action: action, CatalogID: catalogID}
}

// CartOperationFailed signals that the cart collaborator rejected an
// imperative operation. The turn itself continues.
type CartOperationFailed struct {
	Base
	Action    string
	CatalogID string
	Err       error
}

// NewCartOperationFailed creates a cart operation failed event.
func NewCartOperationFailed(action, catalogID string, err error) CartOperationFailed {
	return CartOperationFailed{Base: NewBase(KindCartOperationFailed), Action: action, CatalogID: catalogID, Err: err}
}
