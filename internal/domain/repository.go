package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TaskStore holds async task records keyed by id. Implementations must be
// safe for concurrent use; Get returns a copy the caller may retain.
type TaskStore interface {
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*Task, error)
}

// PlatformAdapter is the per-platform product search and price capability.
// Search and price failures are reported as errors; the orchestrator
// absorbs them so one platform's outage never aborts a match.
type PlatformAdapter interface {
	Platform() Platform
	SearchProducts(ctx context.Context, name, brand, category string, criteria map[string]string) ([]ProductRecord, error)
	GetProduct(ctx context.Context, productID string) (*ProductRecord, error)
	GetProductPrice(ctx context.Context, productID string) (*PriceInfo, error)
}

// MatchRepository persists matching outcomes and related read models.
type MatchRepository interface {
	SaveMatchResult(ctx context.Context, result *MatchResult) error
	GetProductByID(ctx context.Context, id string) (*ProductRecord, error)
	GetMatchHistory(ctx context.Context, userID string, limit int) ([]*MatchResult, error)
	GetPriceHistory(ctx context.Context, productID string, platform Platform, since time.Time) ([]PricePoint, error)
	TrackPrice(ctx context.Context, productID string, platform Platform, info PriceInfo) error
	GetAvatar(ctx context.Context, avatarID, userID string) (*Avatar, error)
	ListAvatars(ctx context.Context, userID string) ([]*Avatar, error)
	DeleteAvatar(ctx context.Context, avatarID, userID string) error
	SaveAvatar(ctx context.Context, avatar *Avatar) error
	SaveTryOnResult(ctx context.Context, result *TryOnResult) error
	GetTryOnHistory(ctx context.Context, userID string, limit int) ([]*TryOnResult, error)
}

// BlobStore uploads binary assets and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, container, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, container, name string) error
}

// MLClient is the opaque model-endpoint collaborator. The inference calls
// contribute no logic of their own; each is a single bounded network call.
type MLClient interface {
	GenerateAvatarImage(ctx context.Context, prompt string) ([]byte, error)
	ApplyAvatarFeatures(ctx context.Context, feature string, baseImage []byte, referenceURL string) ([]byte, error)
	TryOn(ctx context.Context, input map[string]any) ([]byte, error)
	AnalyzeFit(ctx context.Context, input map[string]any) (FitPrediction, error)
}
