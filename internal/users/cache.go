package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
)

// PrincipalCache keeps resolved principal snapshots in Redis so the principal
// middleware does not hit Postgres on every request. Entries are invalidated
// on any role, sub-role or assignment mutation.
type PrincipalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPrincipalCache constructs the cache. A nil client disables caching.
func NewPrincipalCache(client *redis.Client, ttl time.Duration) *PrincipalCache {
	return &PrincipalCache{client: client, ttl: ttl}
}

func (c *PrincipalCache) key(userID int64) string {
	return fmt.Sprintf("principal:%d", userID)
}

type principalPayload struct {
	UserID      int64    `json:"user_id"`
	RoleName    string   `json:"role_name"`
	RoleActive  bool     `json:"role_active"`
	SubRoleID   *int64   `json:"sub_role_id,omitempty"`
	Permissions []string `json:"permissions"`
}

// Get returns the cached snapshot and whether it was present.
func (c *PrincipalCache) Get(ctx context.Context, userID int64) (rbac.Principal, bool) {
	if c == nil || c.client == nil {
		return rbac.Principal{}, false
	}
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return rbac.Principal{}, false
	}
	var stored principalPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		return rbac.Principal{}, false
	}
	return rbac.Principal{
		UserID:      stored.UserID,
		RoleName:    stored.RoleName,
		RoleActive:  stored.RoleActive,
		SubRoleID:   stored.SubRoleID,
		Permissions: stored.Permissions,
	}, true
}

// Set stores the snapshot for the user.
func (c *PrincipalCache) Set(ctx context.Context, p rbac.Principal) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(principalPayload{
		UserID:      p.UserID,
		RoleName:    p.RoleName,
		RoleActive:  p.RoleActive,
		SubRoleID:   p.SubRoleID,
		Permissions: p.Permissions,
	})
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(p.UserID), data, c.ttl).Err()
}

// Invalidate drops the cached snapshot for the user.
func (c *PrincipalCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, c.key(userID)).Err()
}
