package core

import (
	"sync"

	"github.com/google/uuid"
)

var (
	ownersMu sync.Mutex
	owners   = map[uuid.UUID]interface{}{}
)

// IdentifierAquireNewID registers owner under a fresh identifier.
func IdentifierAquireNewID(owner interface{}) uuid.UUID {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	id := uuid.New()
	owners[id] = owner
	return id
}

func IdentifierOwner(id uuid.UUID) (interface{}, bool) {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	o, ok := owners[id]
	return o, ok
}

func IdentifierReleaseID(id uuid.UUID) {
	ownersMu.Lock()
	defer ownersMu.Unlock()
	// Releasing an unknown id is a no-op.
	delete(owners, id)
}

// IdentifierCount is the number of identifiers currently registered.
func IdentifierCount() int {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	return len(owners)
}
