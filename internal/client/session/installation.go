package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/metadata"
)

// InstallationID returns the id of this local installation, generating and
// storing one on first use. It survives logout.
func InstallationID(ctx context.Context, meta metadata.Repository) (string, error) {
	id, err := meta.Get(ctx, metadata.KeyInstallationID)
	if err != nil {
		return "", fmt.Errorf("read installation id: %w", err)
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := meta.Set(ctx, metadata.KeyInstallationID, id); err != nil {
		return "", fmt.Errorf("store installation id: %w", err)
	}
	return id, nil
}
