package client

import (
	"context"
	"net/http"
	"time"

	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/key"
)

// CreateKeyOptions describes a key to create. Name is required.
type CreateKeyOptions struct {
	Name      string            `json:"name"`
	Scopes    []string          `json:"scopes,omitempty"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CreatedKey is a key record plus its secret. The secret is shown once:
// list calls never include it.
type CreatedKey struct {
	key.Key
	Secret string
}

// keyRecord is the wire format for key records.
type keyRecord struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Prefix    string            `json:"prefix"`
	Secret    string            `json:"key,omitempty"` // present only on create/rotate
	Scopes    []string          `json:"scopes,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
	RevokedAt *time.Time        `json:"revokedAt,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	LastUsed  *time.Time        `json:"lastUsedAt,omitempty"`
}

func toKey(r keyRecord) key.Key {
	return key.Key{
		ID:        r.ID,
		Name:      r.Name,
		Prefix:    r.Prefix,
		Scopes:    r.Scopes,
		Metadata:  r.Metadata,
		ExpiresAt: r.ExpiresAt,
		RevokedAt: r.RevokedAt,
		CreatedAt: r.CreatedAt,
		LastUsed:  r.LastUsed,
	}
}

// CreateKey creates a new API key. The returned secret must be saved by
// the caller; it cannot be retrieved again.
func (c *Client) CreateKey(ctx context.Context, opts CreateKeyOptions) (CreatedKey, error) {
	if opts.Name == "" {
		return CreatedKey{}, apierror.SDK(0, "invalid_request", "key name is required")
	}

	var resp keyRecord
	if err := c.do(ctx, "create_key", http.MethodPost, "/v1/api-keys", opts, &resp, nil); err != nil {
		return CreatedKey{}, err
	}
	return CreatedKey{Key: toKey(resp), Secret: resp.Secret}, nil
}

// ListKeys returns all key records visible to the credential. Secrets
// are never included.
func (c *Client) ListKeys(ctx context.Context) ([]key.Key, error) {
	var resp struct {
		Keys []keyRecord `json:"keys"`
	}
	if err := c.do(ctx, "list_keys", http.MethodGet, "/v1/api-keys", nil, &resp, nil); err != nil {
		return nil, err
	}

	keys := make([]key.Key, len(resp.Keys))
	for i, r := range resp.Keys {
		keys[i] = toKey(r)
	}
	return keys, nil
}

// RevokeKey permanently revokes a key.
func (c *Client) RevokeKey(ctx context.Context, id string) error {
	if id == "" {
		return apierror.SDK(0, "invalid_request", "key id is required")
	}
	return c.do(ctx, "revoke_key", http.MethodDelete, "/v1/api-keys/"+id, nil, nil, nil)
}

// RotateKey revokes the key's current secret and issues a fresh one.
func (c *Client) RotateKey(ctx context.Context, id string) (CreatedKey, error) {
	if id == "" {
		return CreatedKey{}, apierror.SDK(0, "invalid_request", "key id is required")
	}

	var resp keyRecord
	if err := c.do(ctx, "rotate_key", http.MethodPost, "/v1/api-keys/"+id+"/rotate", nil, &resp, nil); err != nil {
		return CreatedKey{}, err
	}
	return CreatedKey{Key: toKey(resp), Secret: resp.Secret}, nil
}
