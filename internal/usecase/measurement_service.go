package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

const (
	estimateConfidence = 0.6
	estimateMethod     = "statistical_estimation"
)

// bodyTypeAdjustments scale the chest/waist/hips estimates per declared
// body type. Unknown types fall back to 1.0 across the board.
var bodyTypeAdjustments = map[string][3]float64{
	"slim":      {0.9, 0.85, 0.9},
	"athletic":  {1.1, 0.95, 1.0},
	"average":   {1.0, 1.0, 1.0},
	"curvy":     {1.05, 1.1, 1.15},
	"plus_size": {1.2, 1.25, 1.2},
}

// MeasurementService estimates body measurements from height, weight,
// age and gender using statistical population models. It is a cheap
// substitute for image-based measuring when the user only knows the
// basics.
type MeasurementService struct{}

// NewMeasurementService creates the measurement estimation service.
func NewMeasurementService() *MeasurementService {
	return &MeasurementService{}
}

// Estimate derives a full measurement set from the request parameters.
func (s *MeasurementService) Estimate(req *domain.MeasurementEstimateRequest) (*domain.MeasurementEstimate, error) {
	if req.Height <= 0 || req.Weight <= 0 {
		return nil, fmt.Errorf("%w: height and weight are required", domain.ErrInvalidRequest)
	}

	heightM := req.Height / 100
	bmi := req.Weight / (heightM * heightM)

	m := statisticalMeasurements(req.Height, req.Weight, req.Age, req.Gender, req.BodyType)

	bodyType := strings.ToLower(strings.TrimSpace(req.BodyType))
	if bodyType == "" {
		bodyType = "average"
	}

	return &domain.MeasurementEstimate{
		Measurements:    m,
		ConfidenceScore: estimateConfidence,
		Method:          estimateMethod,
		BMI:             round2(bmi),
		BodyType:        bodyType,
	}, nil
}

// statisticalMeasurements applies per-gender linear models, then the
// body-type and age corrections.
func statisticalMeasurements(height, weight float64, age int, gender, bodyType string) domain.EstimatedMeasurements {
	var chest, waist, hips, shoulder, arm, inseam float64
	if strings.EqualFold(strings.TrimSpace(gender), "male") {
		chest = height*0.55 + weight*0.1
		waist = height*0.45 + weight*0.15
		hips = height*0.52 + weight*0.12
		shoulder = height * 0.26
		arm = height * 0.38
		inseam = height * 0.44
	} else {
		chest = height*0.53 + weight*0.12
		waist = height*0.42 + weight*0.18
		hips = height*0.55 + weight*0.14
		shoulder = height * 0.24
		arm = height * 0.36
		inseam = height * 0.42
	}

	if adj, ok := bodyTypeAdjustments[strings.ToLower(strings.TrimSpace(bodyType))]; ok {
		chest *= adj[0]
		waist *= adj[1]
		hips *= adj[2]
	}

	// Girth drifts up slightly with age.
	ageFactor := 1.0 + float64(age-25)*0.002

	chest = round1(chest * ageFactor)
	waist = round1(waist * ageFactor)
	hips = round1(hips * ageFactor)
	inseam = round1(inseam)
	shoeSize := round1(42 + (height-170)*0.1)

	return domain.EstimatedMeasurements{
		Height:        height,
		Weight:        weight,
		Chest:         chest,
		Waist:         waist,
		Hips:          hips,
		ShoulderWidth: round1(shoulder),
		ArmLength:     round1(arm),
		Inseam:        inseam,
		ShoeSize:      shoeSize,
		ShirtSize:     shirtSize(chest),
		PantsSize:     pantsSize(waist, inseam),
		ShoeSizeUS:    shoeSize - 32,
	}
}

// shirtSize buckets the chest measurement into letter sizes.
func shirtSize(chest float64) string {
	switch {
	case chest < 85:
		return "XS"
	case chest < 90:
		return "S"
	case chest < 95:
		return "M"
	case chest < 100:
		return "L"
	case chest < 105:
		return "XL"
	default:
		return "XXL"
	}
}

// pantsSize renders waist and inseam in inches as a WxL size label.
func pantsSize(waistCm, inseamCm float64) string {
	const cmToInch = 0.3937
	return fmt.Sprintf("%dW x %dL", int(waistCm*cmToInch), int(inseamCm*cmToInch))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
