package repo

import "github.com/google/uuid"

// StoredState is the closure data repositories attach to loaded aggregates.
// It pins the open version row so a later save can close it and append the
// next one. A fresh aggregate carries no StoredState until its first save.
type StoredState struct {
	OpenVersionID uuid.UUID
}
