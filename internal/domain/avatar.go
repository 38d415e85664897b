package domain

import "time"

// BodyMeasurements are the user-supplied measurements an avatar is built
// from. Height and weight are required; everything else is optional.
type BodyMeasurements struct {
	Height        float64  `json:"height" binding:"required,gte=100,lte=250"`
	Weight        float64  `json:"weight" binding:"required,gte=30,lte=300"`
	Chest         *float64 `json:"chest,omitempty" binding:"omitempty,gte=60,lte=150"`
	Waist         *float64 `json:"waist,omitempty" binding:"omitempty,gte=50,lte=150"`
	Hips          *float64 `json:"hips,omitempty" binding:"omitempty,gte=60,lte=150"`
	ShoulderWidth *float64 `json:"shoulder_width,omitempty" binding:"omitempty,gte=30,lte=60"`
	ArmLength     *float64 `json:"arm_length,omitempty" binding:"omitempty,gte=50,lte=100"`
	Inseam        *float64 `json:"inseam,omitempty" binding:"omitempty,gte=50,lte=100"`
	ShoeSize      *float64 `json:"shoe_size,omitempty" binding:"omitempty,gte=30,lte=50"`
	BodyType      string   `json:"body_type,omitempty"`
	Gender        string   `json:"gender,omitempty"`
}

// AvatarRequest starts avatar generation for a user. UserID comes from the
// authenticated request, not the body.
type AvatarRequest struct {
	UserID       string            `json:"user_id"`
	Measurements BodyMeasurements  `json:"body_measurements" binding:"required"`
	FaceImageURL string            `json:"face_image_url,omitempty"`
	BodyImageURL string            `json:"body_image_url,omitempty"`
	Preferences  map[string]string `json:"preferences,omitempty"`
}

// Avatar is a completed avatar generation result.
type Avatar struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	AvatarURL    string           `json:"avatar_url"`
	Measurements BodyMeasurements `json:"body_measurements"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TryOnRequest starts a virtual try-on of a product on an avatar.
type TryOnRequest struct {
	UserID     string            `json:"user_id"`
	AvatarID   string            `json:"avatar_id" binding:"required"`
	ProductID  string            `json:"product_id" binding:"required"`
	ProductURL string            `json:"product_url,omitempty"`
	Settings   map[string]string `json:"try_on_settings,omitempty"`
}

// TryOnResult is a persisted virtual try-on outcome.
type TryOnResult struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	AvatarID  string            `json:"avatar_id"`
	ProductID string            `json:"product_id"`
	ResultURL string            `json:"result_url"`
	Settings  map[string]string `json:"settings,omitempty"`
	Status    TaskStatus        `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FitPrediction is the opaque fit analysis returned by the model endpoint.
type FitPrediction map[string]any
