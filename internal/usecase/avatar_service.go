package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// AvatarService generates photorealistic user avatars from body
// measurements. Generation runs as a tracked background task; callers
// poll the task id for progress and the final avatar.
type AvatarService struct {
	tracker *TaskTracker
	ml      domain.MLClient
	blobs   domain.BlobStore
	repo    domain.MatchRepository
}

// NewAvatarService creates the avatar generation service.
func NewAvatarService(tracker *TaskTracker, ml domain.MLClient, blobs domain.BlobStore, repo domain.MatchRepository) *AvatarService {
	return &AvatarService{
		tracker: tracker,
		ml:      ml,
		blobs:   blobs,
		repo:    repo,
	}
}

// StartGeneration validates the request and schedules avatar generation,
// returning the task id to poll.
func (s *AvatarService) StartGeneration(ctx context.Context, req *domain.AvatarRequest) (string, error) {
	if req.UserID == "" {
		return "", domain.ErrInvalidRequest
	}
	if req.Measurements.Height <= 0 || req.Measurements.Weight <= 0 {
		return "", fmt.Errorf("%w: height and weight are required", domain.ErrInvalidRequest)
	}

	payload := map[string]any{
		"height": req.Measurements.Height,
		"weight": req.Measurements.Weight,
	}

	return s.tracker.Start(ctx, req.UserID, domain.TaskAvatarGeneration, payload,
		func(taskCtx context.Context, taskID string) (map[string]any, error) {
			return s.generate(taskCtx, taskID, req)
		})
}

// generate is the background body of one avatar generation task.
func (s *AvatarService) generate(ctx context.Context, taskID string, req *domain.AvatarRequest) (map[string]any, error) {
	s.progress(ctx, taskID, 20, "Building avatar prompt")
	prompt := buildAvatarPrompt(&req.Measurements, req.Preferences)

	s.progress(ctx, taskID, 40, "Generating base avatar")
	image, err := s.ml.GenerateAvatarImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate avatar image: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: model returned an empty image", domain.ErrMLAPIFailure)
	}

	if req.FaceImageURL != "" {
		s.progress(ctx, taskID, 60, "Applying face features")
		image = s.applyFeatures(ctx, taskID, "face", image, req.FaceImageURL)
	}
	if req.BodyImageURL != "" {
		s.progress(ctx, taskID, 80, "Applying body features")
		image = s.applyFeatures(ctx, taskID, "body", image, req.BodyImageURL)
	}

	s.progress(ctx, taskID, 90, "Saving avatar")
	name := fmt.Sprintf("%s/avatar.png", taskID)
	avatarURL, err := s.blobs.Upload(ctx, "avatars", name, image, "image/png")
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	avatar := &domain.Avatar{
		ID:           taskID,
		UserID:       req.UserID,
		AvatarURL:    avatarURL,
		Measurements: req.Measurements,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.SaveAvatar(ctx, avatar); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	return map[string]any{
		"avatar_id":         avatar.ID,
		"avatar_url":        avatarURL,
		"preferences":       req.Preferences,
		"body_measurements": req.Measurements,
	}, nil
}

// applyFeatures runs one reference-photo refinement pass. The pass is
// best effort: on failure the prior image is kept so a bad reference
// photo never fails the whole generation.
func (s *AvatarService) applyFeatures(ctx context.Context, taskID, feature string, image []byte, referenceURL string) []byte {
	refined, err := s.ml.ApplyAvatarFeatures(ctx, feature, image, referenceURL)
	if err != nil || len(refined) == 0 {
		log.Printf("[AVATAR] Warning: %s feature pass for task %s failed, keeping prior image: %v", feature, taskID, err)
		return image
	}
	return refined
}

// GetAvatar returns one of the user's avatars.
func (s *AvatarService) GetAvatar(ctx context.Context, avatarID, userID string) (*domain.Avatar, error) {
	return s.repo.GetAvatar(ctx, avatarID, userID)
}

// ListAvatars returns all of the user's avatars, newest first.
func (s *AvatarService) ListAvatars(ctx context.Context, userID string) ([]*domain.Avatar, error) {
	return s.repo.ListAvatars(ctx, userID)
}

// DeleteAvatar removes an avatar and its stored image. A failed blob
// delete is logged, not fatal; the record is gone either way.
func (s *AvatarService) DeleteAvatar(ctx context.Context, avatarID, userID string) error {
	if err := s.repo.DeleteAvatar(ctx, avatarID, userID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, "avatars", fmt.Sprintf("%s/avatar.png", avatarID)); err != nil {
		log.Printf("[AVATAR] Warning: failed to delete blob for avatar %s: %v", avatarID, err)
	}
	return nil
}

func (s *AvatarService) progress(ctx context.Context, taskID string, pct int, msg string) {
	if err := s.tracker.UpdateProgress(ctx, taskID, pct, msg); err != nil {
		log.Printf("[AVATAR] Warning: progress update for task %s failed: %v", taskID, err)
	}
}

// buildAvatarPrompt renders the measurements and styling preferences
// into a generation prompt. Body build is derived from BMI when no
// explicit body type was given.
func buildAvatarPrompt(m *domain.BodyMeasurements, prefs map[string]string) string {
	var parts []string

	parts = append(parts, "full body photorealistic render of an adult person")

	gender := strings.ToLower(strings.TrimSpace(m.Gender))
	if gender != "" && gender != "unspecified" {
		parts = append(parts, gender)
	}

	bodyType := strings.ToLower(strings.TrimSpace(m.BodyType))
	if bodyType == "" {
		bodyType = buildFromBMI(m.Height, m.Weight)
	}
	parts = append(parts, bodyType+" build")

	parts = append(parts, fmt.Sprintf("height %.0f cm", m.Height))

	parts = append(parts, preference(prefs, "style", "casual")+" clothing")
	parts = append(parts, fmt.Sprintf("%s %s hair", preference(prefs, "hairStyle", "natural"), preference(prefs, "hairColor", "brown")))
	parts = append(parts, preference(prefs, "eyeColor", "brown")+" eyes")
	parts = append(parts, preference(prefs, "skinTone", "medium")+" skin tone")

	parts = append(parts, "neutral standing pose, plain studio background")

	return strings.Join(parts, ", ")
}

func preference(prefs map[string]string, key, fallback string) string {
	if v := strings.ToLower(strings.TrimSpace(prefs[key])); v != "" {
		return v
	}
	return fallback
}

// buildFromBMI buckets body mass index into a build descriptor.
func buildFromBMI(heightCm, weightKg float64) string {
	if heightCm <= 0 {
		return "average"
	}
	h := heightCm / 100
	bmi := weightKg / (h * h)

	switch {
	case bmi < 18.5:
		return "slim"
	case bmi < 25:
		return "average"
	case bmi < 30:
		return "athletic"
	default:
		return "heavyset"
	}
}
