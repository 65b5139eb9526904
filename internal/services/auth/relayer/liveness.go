package relayer

import (
	"context"

	"github.com/in-labs/in-server/internal/platform/firebase"
)

const livenessPath = "relayers"

// FirebaseLiveness reads the relayer liveness map from the realtime
// database.
type FirebaseLiveness struct {
	client *firebase.Client
}

// NewFirebaseLiveness wraps a realtime database client as a liveness source.
func NewFirebaseLiveness(client *firebase.Client) *FirebaseLiveness {
	return &FirebaseLiveness{client: client}
}

// ReadLiveness fetches the current liveness map. An absent path yields an
// empty map, not an error.
func (f *FirebaseLiveness) ReadLiveness(ctx context.Context) (map[string]LivenessEntry, error) {
	entries := map[string]LivenessEntry{}
	if _, err := f.client.Read(ctx, livenessPath, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
