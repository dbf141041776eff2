package workspace

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"doc-chat/internal/domain"
)

//go:embed data.json
var defaultBootstrap []byte

// Bootstrap produces the initial state used when the store holds nothing
// usable.
type Bootstrap func(ctx context.Context) (domain.PersistedState, error)

// EmbeddedBootstrap returns the state shipped with the binary.
func EmbeddedBootstrap() Bootstrap {
	return func(context.Context) (domain.PersistedState, error) {
		return parseBootstrap(defaultBootstrap)
	}
}

// FileBootstrap reads the initial state from a JSON file on every call.
func FileBootstrap(path string) Bootstrap {
	return func(context.Context) (domain.PersistedState, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return domain.PersistedState{}, fmt.Errorf("workspace: read bootstrap data: %w", err)
		}
		return parseBootstrap(raw)
	}
}

func parseBootstrap(raw []byte) (domain.PersistedState, error) {
	state, ok := decodeState(raw)
	if !ok {
		return domain.PersistedState{}, errors.New("workspace: bootstrap data is not a valid state")
	}
	return state, nil
}
