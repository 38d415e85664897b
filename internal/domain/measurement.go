package domain

// MeasurementEstimateRequest asks for body measurements estimated from
// basic parameters when the user has no tape measure at hand.
type MeasurementEstimateRequest struct {
	Height   float64 `json:"height" binding:"required,gte=100,lte=250"`
	Weight   float64 `json:"weight" binding:"required,gte=30,lte=300"`
	Age      int     `json:"age" binding:"required,gte=13,lte=120"`
	Gender   string  `json:"gender" binding:"required"`
	BodyType string  `json:"body_type,omitempty"`
}

// EstimatedMeasurements are statistically derived body measurements in
// centimeters, with clothing sizes derived from them.
type EstimatedMeasurements struct {
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	Chest         float64 `json:"chest"`
	Waist         float64 `json:"waist"`
	Hips          float64 `json:"hips"`
	ShoulderWidth float64 `json:"shoulder_width"`
	ArmLength     float64 `json:"arm_length"`
	Inseam        float64 `json:"inseam"`
	ShoeSize      float64 `json:"shoe_size"`
	ShirtSize     string  `json:"shirt_size"`
	PantsSize     string  `json:"pants_size"`
	ShoeSizeUS    float64 `json:"shoe_size_us"`
}

// MeasurementEstimate is the full estimation outcome. The confidence
// score is fixed low since nothing was actually measured.
type MeasurementEstimate struct {
	Measurements    EstimatedMeasurements `json:"measurements"`
	ConfidenceScore float64               `json:"confidence_score"`
	Method          string                `json:"method"`
	BMI             float64               `json:"bmi"`
	BodyType        string                `json:"body_type"`
}
