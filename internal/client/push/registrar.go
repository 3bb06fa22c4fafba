package push

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

type UIDSender interface {
	UpdatePushUID(ctx context.Context, uid string) error
}

// Registrar remembers the push subscriber id and forwards it once a session
// exists. An id learned before login stays pending until Flush.
type Registrar struct {
	api  UIDSender
	meta metadata.Repository
	log  logging.Logger
}

func NewRegistrar(api UIDSender, meta metadata.Repository, log logging.Logger) *Registrar {
	return &Registrar{api: api, meta: meta, log: log.With("component", "push")}
}

func (r *Registrar) SetSubscriberID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := r.meta.Set(ctx, metadata.KeyPushSubscriberID, id); err != nil {
		return err
	}
	return r.Flush(ctx)
}

// Flush sends a pending id. Without a session it does nothing.
func (r *Registrar) Flush(ctx context.Context) error {
	rows, err := r.meta.Lookup(ctx, metadata.KeyToken, metadata.KeyPushSubscriberID, metadata.KeyPushForwarded)
	if err != nil {
		return err
	}
	id := rows[metadata.KeyPushSubscriberID]
	if id == "" {
		return nil
	}
	if rows[metadata.KeyToken] == "" {
		r.log.Debug(ctx, "no session yet, subscriber id kept pending")
		return nil
	}
	if rows[metadata.KeyPushForwarded] == id {
		return nil
	}

	if err := r.api.UpdatePushUID(ctx, id); err != nil {
		return fmt.Errorf("forward push subscriber id: %w", err)
	}
	r.log.Info(ctx, "push subscriber id forwarded")
	return r.meta.Set(ctx, metadata.KeyPushForwarded, id)
}

func (r *Registrar) Pending(ctx context.Context) (string, bool) {
	rows, _ := r.meta.Lookup(ctx, metadata.KeyPushSubscriberID, metadata.KeyPushForwarded)
	id := rows[metadata.KeyPushSubscriberID]
	return id, id != "" && id != rows[metadata.KeyPushForwarded]
}
