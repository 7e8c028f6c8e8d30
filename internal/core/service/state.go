package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// Keys of the persisted storefront state.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyRole         = "role"
	KeyCart         = "cart"
	KeyClientID     = "clientID"
)

// ClientID returns the persisted id of this storefront client, generating
// and persisting one on first use. Events of one client share the id.
func ClientID(ctx context.Context, s port.StateStore) (string, error) {
	const op = "service.ClientID"

	var id string
	found, err := loadJSON(ctx, s, KeyClientID, &id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if found && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := storeJSON(ctx, s, KeyClientID, id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func loadJSON(ctx context.Context, s port.StateStore, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func storeJSON(ctx context.Context, s port.StateStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}

func deleteKeys(ctx context.Context, s port.StateStore, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
