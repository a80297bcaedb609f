package plugin

import "context"

// Host is a document that owns native variable collections. Every call is
// one round-trip; implementations must not retain the arguments.
type Host interface {
	// GetMetadata returns host metadata.
	GetMetadata() HostInfo

	// GetCollections lists the variable collections of the document.
	GetCollections(ctx context.Context) ([]Collection, error)

	// GetVariables lists every variable of one collection.
	GetVariables(ctx context.Context, collectionID string) ([]Variable, error)

	// ApplyChanges creates the requested modes, then applies the changes in
	// order. Failures of individual changes are reported in the result, not
	// as an error.
	ApplyChanges(ctx context.Context, req ApplyRequest) (ApplyResult, error)

	// CreateTypography materialises typography variables or text styles.
	// kind is one of the create-* message types.
	CreateTypography(ctx context.Context, kind MessageType, payload TypographyPayload) error

	// GetProject returns a snapshot of every managed collection.
	GetProject(ctx context.Context) (ProjectSnapshot, error)
}
