// Package verdict arbitrates between the machine-learned signal and the
// corroboration evidence. The policy is an ordered rule table evaluated
// top-down: the first matching rule sets the verdict, then an independent
// related-news pass may lift a low-weight decision. Keeping the rules as a
// declarative slice makes the precedence auditable and testable without
// any network behavior.
package verdict

import (
	"github.com/andrianta/hoaxcheck/internal/claim"
	"github.com/andrianta/hoaxcheck/internal/detect"
	"github.com/andrianta/hoaxcheck/internal/related"
	"github.com/andrianta/hoaxcheck/internal/verify"
)

// Decision basis labels name which evidence category dominated.
const (
	BasisVerification = "verification"
	BasisFactChecker  = "fact-checker"
	BasisCombined     = "combined"
	BasisModelOnly    = "model-only"
)

// Verdict is the terminal output of an analysis.
type Verdict struct {
	Prediction string  `json:"final_prediction"`
	Confidence float64 `json:"final_confidence"`
	Weight     float64 `json:"verification_weight"`
	Basis      string  `json:"decision_basis"`
}

// rule is one row of the arbitration table. when inspects the evidence;
// apply rewrites the working verdict. Rules are mutually exclusive: the
// first match wins.
type rule struct {
	name  string
	when  func(e evidence) bool
	apply func(e evidence, v *Verdict)
}

type evidence struct {
	ml detect.Signal
	v  *verify.Result
	r  *related.Result
}

var rules = []rule{
	{
		// A recognized misinformation pattern outweighs everything else.
		name: "suspicious-claim",
		when: func(e evidence) bool { return e.v.ClaimType != "" && e.v.ClaimType != claim.TypeGeneral },
		apply: func(e evidence, v *Verdict) {
			v.Prediction = detect.PredictionFake
			v.Confidence = 0.9
			v.Weight = 0.9
		},
	},
	{
		name: "strong-corroboration",
		when: func(e evidence) bool { return e.v.SourcesFound >= 3 },
		apply: func(e evidence, v *Verdict) {
			v.Prediction = detect.PredictionReal
			v.Confidence = 0.9 + 0.1*e.v.Score
			v.Weight = 0.8
		},
	},
	{
		name: "moderate-corroboration",
		when: func(e evidence) bool { return e.v.SourcesFound >= 1 },
		apply: func(e evidence, v *Verdict) {
			v.Prediction = detect.PredictionReal
			v.Confidence = 0.7 + 0.2*e.v.Score
			v.Weight = 0.6
		},
	},
	{
		// Fact-checkers covering a claim without news corroboration are
		// usually debunking it.
		name: "fact-check-coverage",
		when: func(e evidence) bool { return len(e.v.FactChecks) > 0 },
		apply: func(e evidence, v *Verdict) {
			v.Prediction = detect.PredictionFake
			v.Confidence = 0.8
			v.Weight = 0.7
		},
	},
	{
		// Searchable keywords with zero evidence anywhere is itself a
		// signal: genuine news leaves traces.
		name: "silent-sources",
		when: func(e evidence) bool { return e.v.Score == 0 && len(e.v.Keywords) > 0 },
		apply: func(e evidence, v *Verdict) {
			if e.ml.Prediction == detect.PredictionReal {
				v.Prediction = detect.PredictionFake
				v.Confidence = max(0.4, e.ml.Confidence-0.3)
				v.Weight = 0.3
			} else {
				v.Confidence = min(0.8, e.ml.Confidence+0.2)
				v.Weight = 0.2
			}
		},
	},
}

// Arbitrate produces the final verdict from the ML signal and the
// corroboration evidence. Pure and deterministic.
func Arbitrate(ml detect.Signal, vr *verify.Result, rn *related.Result) Verdict {
	e := evidence{ml: ml, v: vr, r: rn}

	out := Verdict{
		Prediction: ml.Prediction,
		Confidence: ml.Confidence,
	}

	for _, r := range rules {
		if r.when(e) {
			r.apply(e, &out)
			break
		}
	}

	// Independent adjustment: multiple related authentic articles lift a
	// low-weight verdict but never override a confident one.
	if rn != nil && rn.TotalFound >= 2 && out.Weight < 0.6 {
		out.Prediction = detect.PredictionReal
		out.Confidence = min(0.95, out.Confidence+0.2)
		out.Weight = max(out.Weight, 0.5)
	}

	out.Confidence = clamp(out.Confidence)
	out.Weight = clamp(out.Weight)
	out.Basis = basisFor(out.Weight)
	return out
}

func basisFor(weight float64) string {
	switch {
	case weight >= 0.6:
		return BasisVerification
	case weight >= 0.4:
		return BasisFactChecker
	case weight >= 0.2:
		return BasisCombined
	default:
		return BasisModelOnly
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
