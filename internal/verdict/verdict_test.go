package verdict

import (
	"math"
	"testing"

	"github.com/andrianta/hoaxcheck/internal/claim"
	"github.com/andrianta/hoaxcheck/internal/detect"
	"github.com/andrianta/hoaxcheck/internal/related"
	"github.com/andrianta/hoaxcheck/internal/search"
	"github.com/andrianta/hoaxcheck/internal/verify"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestArbitrateSilentSourcesOverridesConfidentReal(t *testing.T) {
	// Searchable keywords with zero evidence anywhere: a confident
	// model-Real gets flipped.
	ml := detect.Signal{Prediction: detect.PredictionReal, Confidence: 0.8}
	vr := &verify.Result{Keywords: []string{"presiden", "mengundurkan"}, ClaimType: claim.TypeGeneral}

	got := Arbitrate(ml, vr, &related.Result{})

	if got.Prediction != detect.PredictionFake {
		t.Errorf("prediction = %q, want Fake", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.5) {
		t.Errorf("confidence = %v, want 0.5", got.Confidence)
	}
	if !almostEqual(got.Weight, 0.3) {
		t.Errorf("weight = %v, want 0.3", got.Weight)
	}
	if got.Basis != BasisCombined {
		t.Errorf("basis = %q, want %q", got.Basis, BasisCombined)
	}
}

func TestArbitrateSilentSourcesDampensModelFake(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionFake, Confidence: 0.9}
	vr := &verify.Result{Keywords: []string{"vaksin"}, ClaimType: claim.TypeGeneral}

	got := Arbitrate(ml, vr, &related.Result{})

	if got.Prediction != detect.PredictionFake {
		t.Errorf("prediction = %q, want Fake", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.8) {
		t.Errorf("confidence = %v, want capped 0.8", got.Confidence)
	}
	if !almostEqual(got.Weight, 0.2) {
		t.Errorf("weight = %v, want 0.2", got.Weight)
	}
}

func TestArbitrateModerateCorroboration(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionFake, Confidence: 0.7}
	vr := &verify.Result{
		Keywords:     []string{"banjir", "jakarta"},
		ClaimType:    claim.TypeGeneral,
		SourcesFound: 1,
		Score:        0.3,
	}

	got := Arbitrate(ml, vr, &related.Result{})

	if got.Prediction != detect.PredictionReal {
		t.Errorf("prediction = %q, want Real", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.76) {
		t.Errorf("confidence = %v, want 0.76", got.Confidence)
	}
	if !almostEqual(got.Weight, 0.6) {
		t.Errorf("weight = %v, want 0.6", got.Weight)
	}
	if got.Basis != BasisVerification {
		t.Errorf("basis = %q, want %q", got.Basis, BasisVerification)
	}
}

func TestArbitrateStrongCorroboration(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionFake, Confidence: 0.95}
	vr := &verify.Result{
		Keywords:     []string{"gempa"},
		ClaimType:    claim.TypeGeneral,
		SourcesFound: 4,
		Score:        0.8,
	}

	got := Arbitrate(ml, vr, nil)

	if got.Prediction != detect.PredictionReal {
		t.Errorf("prediction = %q, want Real", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.98) {
		t.Errorf("confidence = %v, want 0.98", got.Confidence)
	}
	if !almostEqual(got.Weight, 0.8) {
		t.Errorf("weight = %v, want 0.8", got.Weight)
	}
}

func TestArbitrateFactCheckCoverage(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionReal, Confidence: 0.6}
	vr := &verify.Result{
		Keywords:   []string{"chip", "vaksin"},
		ClaimType:  claim.TypeGeneral,
		Score:      0.1,
		FactChecks: []search.FactCheck{{Title: "Cek Fakta: klaim chip dalam vaksin", Source: "TurnBackHoax"}},
	}

	got := Arbitrate(ml, vr, &related.Result{})

	if got.Prediction != detect.PredictionFake {
		t.Errorf("prediction = %q, want Fake", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.8) || !almostEqual(got.Weight, 0.7) {
		t.Errorf("got confidence %v weight %v, want 0.8/0.7", got.Confidence, got.Weight)
	}
	if got.Basis != BasisVerification {
		t.Errorf("basis = %q, want %q", got.Basis, BasisVerification)
	}
}

func TestArbitrateSuspiciousClaimDominates(t *testing.T) {
	// Even heavy corroboration and related coverage cannot rescue a claim
	// matching a misinformation pattern.
	ml := detect.Signal{Prediction: detect.PredictionReal, Confidence: 0.99}
	vr := &verify.Result{
		Keywords:     []string{"fact", "check"},
		ClaimType:    "suspicious_geopolitical_claim",
		SourcesFound: 5,
		Score:        1,
	}
	rn := &related.Result{TotalFound: 3}

	got := Arbitrate(ml, vr, rn)

	if got.Prediction != detect.PredictionFake {
		t.Errorf("prediction = %q, want Fake", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.9) || !almostEqual(got.Weight, 0.9) {
		t.Errorf("got confidence %v weight %v, want 0.9/0.9", got.Confidence, got.Weight)
	}
	if got.Basis != BasisVerification {
		t.Errorf("basis = %q, want %q", got.Basis, BasisVerification)
	}
}

func TestArbitrateRelatedNewsLiftsLowWeightVerdict(t *testing.T) {
	// No keywords survived extraction, so no table rule fires and the
	// model signal passes through with zero weight. Related coverage then
	// lifts it.
	ml := detect.Signal{Prediction: detect.PredictionFake, Confidence: 0.7}
	vr := &verify.Result{ClaimType: claim.TypeGeneral}
	rn := &related.Result{TotalFound: 3}

	got := Arbitrate(ml, vr, rn)

	if got.Prediction != detect.PredictionReal {
		t.Errorf("prediction = %q, want Real", got.Prediction)
	}
	if !almostEqual(got.Confidence, 0.9) {
		t.Errorf("confidence = %v, want 0.9", got.Confidence)
	}
	if !almostEqual(got.Weight, 0.5) {
		t.Errorf("weight = %v, want 0.5", got.Weight)
	}
	if got.Basis != BasisFactChecker {
		t.Errorf("basis = %q, want %q", got.Basis, BasisFactChecker)
	}
}

func TestArbitrateRelatedNewsDoesNotTouchHighWeight(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionFake, Confidence: 0.7}
	vr := &verify.Result{
		Keywords:     []string{"pemilu"},
		ClaimType:    claim.TypeGeneral,
		SourcesFound: 1,
		Score:        0.3,
	}
	rn := &related.Result{TotalFound: 5}

	got := Arbitrate(ml, vr, rn)

	if !almostEqual(got.Confidence, 0.76) || !almostEqual(got.Weight, 0.6) {
		t.Errorf("related pass should not modify weight >= 0.6, got %v/%v", got.Confidence, got.Weight)
	}
}

func TestArbitrateModelPassthrough(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionReal, Confidence: 0.55}
	vr := &verify.Result{ClaimType: claim.TypeGeneral}

	got := Arbitrate(ml, vr, nil)

	if got.Prediction != detect.PredictionReal || !almostEqual(got.Confidence, 0.55) {
		t.Errorf("got %v/%v, want passthrough Real/0.55", got.Prediction, got.Confidence)
	}
	if got.Weight != 0 {
		t.Errorf("weight = %v, want 0", got.Weight)
	}
	if got.Basis != BasisModelOnly {
		t.Errorf("basis = %q, want %q", got.Basis, BasisModelOnly)
	}
}

func TestArbitrateClampsConfidence(t *testing.T) {
	ml := detect.Signal{Prediction: detect.PredictionFake, Confidence: 0.5}
	vr := &verify.Result{
		Keywords:     []string{"harga"},
		ClaimType:    claim.TypeGeneral,
		SourcesFound: 3,
		Score:        1.5, // out-of-range input still yields a valid verdict
	}

	got := Arbitrate(ml, vr, nil)

	if got.Confidence > 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
	}
}
