package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/slots"
)

const storeTimeout = 10 * time.Second

// slotDocs backs collaboration rooms with the slot store. A room's session
// id is the slot name.
type slotDocs struct {
	store slots.Store
	now   func() time.Time
}

func (d slotDocs) load(sessionID string) (document.Scene, error) {
	// Background context: this runs on the hub goroutine, not a request.
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entry, err := d.store.Load(ctx, sessionID)
	if errors.Is(err, slots.ErrNotFound) {
		return document.NewEmptyScene(), nil
	}
	if err != nil {
		return document.Scene{}, err
	}
	sc, err := document.Decode(entry.Data)
	if err != nil {
		return document.Scene{}, fmt.Errorf("decode %s: %w", sessionID, err)
	}
	return sc, nil
}

func (d slotDocs) save(sessionID string, sc document.Scene) error {
	data, err := document.Encode(sc, d.now())
	if err != nil {
		return fmt.Errorf("encode %s: %w", sessionID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if _, err := d.store.Save(ctx, sessionID, data); err != nil {
		return err
	}
	return nil
}
