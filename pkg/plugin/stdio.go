package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ServeJSON answers one json-stdio request: it decodes a Message from r,
// dispatches it against h and encodes the response to w. Requests without
// a response contract write nothing.
func ServeJSON(ctx context.Context, h Host, r io.Reader, w io.Writer) error {
	var msg Message
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	resp, ok := Dispatch(ctx, h, msg)
	if !ok {
		return nil
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}
