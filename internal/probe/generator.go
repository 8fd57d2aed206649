package probe

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/glyco/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileDivisor     = 4
)

// Generation ranges. Values stay inside the service's validation bounds so
// every generated submission must score, never 400.
const (
	heightMin   = 150.0
	heightRange = 45.0
	weightMin   = 50.0
	weightRange = 80.0

	// Heavy profile skews toward high-risk answers.
	heavyWeightMin   = 95.0
	heavyWeightRange = 60.0
)

// Constants for answer profile cases.
const (
	caseHealthy = 0
	caseAverage = 1
	caseAtRisk  = 2
	caseElderly = 3
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [min, max].
func randomInt(minVal, maxVal int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(maxVal-minVal+1)))
	return minVal + int(n.Int64())
}

// coin returns 0 or 1 with probability p of returning 1.
func coin(p float64) int {
	if getRandomFloat() < p {
		return 1
	}
	return 0
}

// generateSubmissions creates the specified number of valid survey payloads.
func generateSubmissions(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating survey submissions", logger.Int("count", config.NumSubmissions))

	subs := make([]Submission, config.NumSubmissions)
	for i := range subs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		subs[i] = Submission{
			ProbeID: uuid.New().String(),
			Fields:  generateAnswers(),
		}
	}

	stats.Generated = len(subs)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(subs)))
	return subs, nil
}

// generateAnswers builds one set of survey answers drawn from a risk profile,
// mirroring the population mix seen in screening traffic.
func generateAnswers() map[string]float64 {
	profile, _ := rand.Int(rand.Reader, big.NewInt(profileDivisor))

	height := heightMin + getRandomFloat()*heightRange
	weight := weightMin + getRandomFloat()*weightRange

	answers := map[string]float64{
		"height_cm": float64(int(height*10)) / 10,
		"Gender":    float64(coin(0.5)),
	}

	switch profile.Int64() {
	case caseHealthy:
		answers["weight_kg"] = float64(int(weight*10)) / 10
		answers["HighBP"] = 0
		answers["HighChol"] = float64(coin(0.1))
		answers["GenHlth"] = float64(randomInt(1, 2))
		answers["PhysHlth"] = float64(randomInt(0, 3))
		answers["DiffWalk"] = 0
		answers["HeartDiseaseorAttack"] = 0
		answers["PhysActivity"] = 1
		answers["Age"] = float64(randomInt(1, 6))
	case caseAtRisk:
		heavy := heavyWeightMin + getRandomFloat()*heavyWeightRange
		answers["weight_kg"] = float64(int(heavy*10)) / 10
		answers["HighBP"] = 1
		answers["HighChol"] = float64(coin(0.7))
		answers["GenHlth"] = float64(randomInt(4, 5))
		answers["PhysHlth"] = float64(randomInt(10, 30))
		answers["DiffWalk"] = float64(coin(0.6))
		answers["HeartDiseaseorAttack"] = float64(coin(0.4))
		answers["PhysActivity"] = float64(coin(0.3))
		answers["Age"] = float64(randomInt(8, 13))
	case caseElderly:
		answers["weight_kg"] = float64(int(weight*10)) / 10
		answers["HighBP"] = float64(coin(0.6))
		answers["HighChol"] = float64(coin(0.5))
		answers["GenHlth"] = float64(randomInt(2, 4))
		answers["PhysHlth"] = float64(randomInt(0, 15))
		answers["DiffWalk"] = float64(coin(0.4))
		answers["HeartDiseaseorAttack"] = float64(coin(0.2))
		answers["PhysActivity"] = float64(coin(0.5))
		answers["Age"] = float64(randomInt(10, 13))
	default: // caseAverage
		answers["weight_kg"] = float64(int(weight*10)) / 10
		answers["HighBP"] = float64(coin(0.3))
		answers["HighChol"] = float64(coin(0.3))
		answers["GenHlth"] = 3
		answers["PhysHlth"] = float64(randomInt(0, 10))
		answers["DiffWalk"] = float64(coin(0.1))
		answers["HeartDiseaseorAttack"] = float64(coin(0.05))
		answers["PhysActivity"] = float64(coin(0.7))
		answers["Age"] = float64(randomInt(4, 10))
	}

	return answers
}
