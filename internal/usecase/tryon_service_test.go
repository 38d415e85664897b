package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/wyoiwyget/ai-services/internal/domain"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/taskstore"
)

func newTryOnService(ml domain.MLClient, blobs domain.BlobStore, repo domain.MatchRepository, products ProductExtractor) *TryOnService {
	tracker := NewTaskTracker(taskstore.NewMemory(), &syncRunner{})
	return NewTryOnService(tracker, ml, blobs, repo, products)
}

func tryOnRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		product: &domain.ProductRecord{Name: "Acme Jacket", Category: "outerwear", Brand: "Acme"},
		avatars: map[string]*domain.Avatar{
			"a1": {ID: "a1", UserID: "user-1", AvatarURL: "https://blob.example.com/avatars/a1/avatar.png"},
		},
	}
}

func TestStartTryOnCompletes(t *testing.T) {
	ctx := context.Background()
	ml := &fakeML{tryonImage: []byte("render")}
	repo := tryOnRepo()
	svc := newTryOnService(ml, &fakeBlobStore{}, repo, &fakeExtractor{})

	taskID, err := svc.StartTryOn(ctx, &domain.TryOnRequest{
		UserID:    "user-1",
		AvatarID:  "a1",
		ProductID: "p1",
	})
	if err != nil {
		t.Fatalf("StartTryOn() error = %v", err)
	}

	task, err := svc.tracker.GetStatus(ctx, taskID, "user-1")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if task.Status != domain.TaskCompleted {
		t.Fatalf("status = %q, want completed (error: %s)", task.Status, task.Error)
	}
	if len(repo.tryons) != 1 {
		t.Fatalf("expected one persisted try-on, got %d", len(repo.tryons))
	}
	if repo.tryons[0].ResultURL != "https://blob.example.com/tryon/"+taskID+"/result.png" {
		t.Errorf("unexpected result url %q", repo.tryons[0].ResultURL)
	}
	if ml.lastInput["product_name"] != "Acme Jacket" {
		t.Errorf("try-on input product = %v", ml.lastInput["product_name"])
	}
}

func TestStartTryOnUnknownAvatar(t *testing.T) {
	svc := newTryOnService(&fakeML{}, &fakeBlobStore{}, &fakeMatchRepo{}, &fakeExtractor{})

	_, err := svc.StartTryOn(context.Background(), &domain.TryOnRequest{
		UserID:    "user-1",
		AvatarID:  "missing",
		ProductID: "p1",
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}

func TestStartTryOnOtherUsersAvatar(t *testing.T) {
	repo := tryOnRepo()
	svc := newTryOnService(&fakeML{}, &fakeBlobStore{}, repo, &fakeExtractor{})

	_, err := svc.StartTryOn(context.Background(), &domain.TryOnRequest{
		UserID:    "user-2",
		AvatarID:  "a1",
		ProductID: "p1",
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}

func TestStartTryOnValidation(t *testing.T) {
	svc := newTryOnService(&fakeML{}, &fakeBlobStore{}, tryOnRepo(), &fakeExtractor{})

	_, err := svc.StartTryOn(context.Background(), &domain.TryOnRequest{UserID: "user-1"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestStartTryOnExtractsUnknownProduct(t *testing.T) {
	ctx := context.Background()
	repo := tryOnRepo()
	repo.product = nil // store has never seen the product
	extractor := &fakeExtractor{product: &domain.ProductRecord{Name: "Fresh Jacket"}}
	ml := &fakeML{tryonImage: []byte("render")}
	svc := newTryOnService(ml, &fakeBlobStore{}, repo, extractor)

	taskID, err := svc.StartTryOn(ctx, &domain.TryOnRequest{
		UserID:     "user-1",
		AvatarID:   "a1",
		ProductID:  "p-new",
		ProductURL: "https://shop.example.com/p/new",
	})
	if err != nil {
		t.Fatalf("StartTryOn() error = %v", err)
	}

	task, _ := svc.tracker.GetStatus(ctx, taskID, "user-1")
	if task.Status != domain.TaskCompleted {
		t.Fatalf("status = %q, want completed (error: %s)", task.Status, task.Error)
	}
	if ml.lastInput["product_name"] != "Fresh Jacket" {
		t.Errorf("try-on input product = %v", ml.lastInput["product_name"])
	}
}

func TestStartTryOnRenderFailure(t *testing.T) {
	ctx := context.Background()
	repo := tryOnRepo()
	svc := newTryOnService(&fakeML{tryonErr: domain.ErrMLAPIFailure}, &fakeBlobStore{}, repo, &fakeExtractor{})

	taskID, err := svc.StartTryOn(ctx, &domain.TryOnRequest{
		UserID:    "user-1",
		AvatarID:  "a1",
		ProductID: "p1",
	})
	if err != nil {
		t.Fatalf("StartTryOn() error = %v", err)
	}

	task, _ := svc.tracker.GetStatus(ctx, taskID, "user-1")
	if task.Status != domain.TaskFailed {
		t.Fatalf("status = %q, want failed", task.Status)
	}
	if len(repo.tryons) != 0 {
		t.Error("failed render must not persist a result")
	}
}

func TestPredictFit(t *testing.T) {
	repo := tryOnRepo()
	ml := &fakeML{fit: domain.FitPrediction{"recommended_size": "M", "confidence": 0.9}}
	svc := newTryOnService(ml, &fakeBlobStore{}, repo, &fakeExtractor{})

	pred, err := svc.PredictFit(context.Background(), "user-1", "a1", "p1")
	if err != nil {
		t.Fatalf("PredictFit() error = %v", err)
	}
	if pred["recommended_size"] != "M" {
		t.Errorf("recommended_size = %v", pred["recommended_size"])
	}
	if ml.lastInput["product_name"] != "Acme Jacket" {
		t.Errorf("fit input product = %v", ml.lastInput["product_name"])
	}
}

func TestPredictFitUnknownAvatar(t *testing.T) {
	svc := newTryOnService(&fakeML{}, &fakeBlobStore{}, &fakeMatchRepo{}, &fakeExtractor{})

	_, err := svc.PredictFit(context.Background(), "user-1", "missing", "p1")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}
