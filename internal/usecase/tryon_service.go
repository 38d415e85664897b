package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// TryOnService composites products onto user avatars and predicts garment
// fit. Try-on rendering is a tracked background task; fit prediction is a
// single synchronous model call.
type TryOnService struct {
	tracker  *TaskTracker
	ml       domain.MLClient
	blobs    domain.BlobStore
	repo     domain.MatchRepository
	products ProductExtractor
}

// NewTryOnService creates the virtual try-on service. products resolves a
// product URL when the request carries one instead of a stored product id.
func NewTryOnService(tracker *TaskTracker, ml domain.MLClient, blobs domain.BlobStore, repo domain.MatchRepository, products ProductExtractor) *TryOnService {
	return &TryOnService{
		tracker:  tracker,
		ml:       ml,
		blobs:    blobs,
		repo:     repo,
		products: products,
	}
}

// StartTryOn validates the request and schedules the try-on render,
// returning the task id to poll. The avatar must exist and belong to the
// requesting user.
func (s *TryOnService) StartTryOn(ctx context.Context, req *domain.TryOnRequest) (string, error) {
	if req.UserID == "" || req.AvatarID == "" || req.ProductID == "" {
		return "", domain.ErrInvalidRequest
	}

	avatar, err := s.repo.GetAvatar(ctx, req.AvatarID, req.UserID)
	if err != nil {
		return "", fmt.Errorf("load avatar %s: %w", req.AvatarID, err)
	}

	payload := map[string]any{
		"avatar_id":  req.AvatarID,
		"product_id": req.ProductID,
	}

	return s.tracker.Start(ctx, req.UserID, domain.TaskVirtualTryOn, payload,
		func(taskCtx context.Context, taskID string) (map[string]any, error) {
			return s.render(taskCtx, taskID, req, avatar)
		})
}

// render is the background body of one try-on task.
func (s *TryOnService) render(ctx context.Context, taskID string, req *domain.TryOnRequest, avatar *domain.Avatar) (map[string]any, error) {
	s.progress(ctx, taskID, 20, "Loading product")
	product, err := s.loadProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	s.progress(ctx, taskID, 30, "Preparing try-on inputs")
	input := map[string]any{
		"avatar_url":    avatar.AvatarURL,
		"product_name":  product.Name,
		"product_image": product.ImageURL,
	}
	for k, v := range req.Settings {
		input[k] = v
	}

	s.progress(ctx, taskID, 40, "Rendering try-on")
	image, err := s.ml.TryOn(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("render try-on: %w", err)
	}

	s.progress(ctx, taskID, 80, "Uploading result")
	name := fmt.Sprintf("%s/result.png", taskID)
	resultURL, err := s.blobs.Upload(ctx, "tryon", name, image, "image/png")
	if err != nil {
		return nil, fmt.Errorf("upload try-on result: %w", err)
	}

	now := time.Now().UTC()
	result := &domain.TryOnResult{
		ID:        taskID,
		UserID:    req.UserID,
		AvatarID:  req.AvatarID,
		ProductID: req.ProductID,
		ResultURL: resultURL,
		Settings:  req.Settings,
		Status:    domain.TaskCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveTryOnResult(ctx, result); err != nil {
		return nil, fmt.Errorf("save try-on result: %w", err)
	}

	return map[string]any{
		"tryon_id":   result.ID,
		"result_url": resultURL,
	}, nil
}

// loadProduct resolves the garment: stored record first, then the
// product URL when the store has never seen it.
func (s *TryOnService) loadProduct(ctx context.Context, req *domain.TryOnRequest) (*domain.ProductRecord, error) {
	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err == nil {
		return product, nil
	}
	if req.ProductURL == "" {
		return nil, fmt.Errorf("load product %s: %w", req.ProductID, err)
	}

	product, err = s.products.ExtractProduct(ctx, req.ProductURL)
	if err != nil {
		return nil, fmt.Errorf("extract product for try-on: %w", err)
	}
	return product, nil
}

// PredictFit analyzes how a garment would fit the avatar. Synchronous;
// no task is created.
func (s *TryOnService) PredictFit(ctx context.Context, userID, avatarID, productID string) (domain.FitPrediction, error) {
	avatar, err := s.repo.GetAvatar(ctx, avatarID, userID)
	if err != nil {
		return nil, fmt.Errorf("load avatar %s: %w", avatarID, err)
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}

	input := map[string]any{
		"measurements": avatar.Measurements,
		"product_name": product.Name,
		"category":     product.Category,
		"brand":        product.Brand,
	}

	prediction, err := s.ml.AnalyzeFit(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("analyze fit: %w", err)
	}
	return prediction, nil
}

// GetTryOnHistory returns the user's try-on results, newest first.
func (s *TryOnService) GetTryOnHistory(ctx context.Context, userID string, limit int) ([]*domain.TryOnResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.GetTryOnHistory(ctx, userID, limit)
}

func (s *TryOnService) progress(ctx context.Context, taskID string, pct int, msg string) {
	if err := s.tracker.UpdateProgress(ctx, taskID, pct, msg); err != nil {
		log.Printf("[TRYON] Warning: progress update for task %s failed: %v", taskID, err)
	}
}
