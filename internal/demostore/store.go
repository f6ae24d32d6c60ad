// Package demostore persists the synthetic demo session between runs,
// playing the role browser local storage plays for the web client.
package demostore

import "github.com/khadmahq/khadma/internal/models"

// Store is the persistence port for the demo session. Load must treat a
// corrupt record as absent, not as an error: startup never fails because
// of a bad demo record.
type Store interface {
	// Load returns (nil, nil) when no demo session is stored.
	Load() (*models.Session, error)
	Save(s *models.Session) error
	// Clear is idempotent.
	Clear() error
}
