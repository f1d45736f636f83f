// Package session keeps the most recently analyzed product of each user session.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bububa/purecheck/nutrition"
)

// DefaultTTL is how long a session context lives after its last update
const DefaultTTL = 24 * time.Hour

// Context is the product context of a session. A new upload replaces it as a whole.
type Context struct {
	Product   *nutrition.Product     `json:"product_data"`
	Analysis  nutrition.Analysis     `json:"analysis"`
	Result    *nutrition.ScoreResult `json:"inr_result"`
	ImagePath string                 `json:"image_path,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Store holds at most one Context per session id. Implementations are safe for concurrent
// use; concurrent Puts on one id are last writer wins.
type Store interface {
	// Get returns errdefs.ErrNotFound when the session has no context or it expired
	Get(ctx context.Context, id string) (*Context, error)
	// Put replaces the context of id
	Put(ctx context.Context, id string, c *Context) error
	// Clear removes the context of id, clearing a missing id is not an error
	Clear(ctx context.Context, id string) error
	Close() error
}

// NewID returns a random session id
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id returned by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
