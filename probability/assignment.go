// Package probability estimates the chance a short call finishes in the
// money, both in closed form and by Monte Carlo simulation.
package probability

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"covcall/models"
)

const (
	numSimulations = 10000
	timeSteps      = 252
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

var rngPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(uint64(rand.Int63())))
	},
}

// ITMProbability is the risk-neutral probability N(d2) that the
// underlying finishes above the strike at expiration.
func ITMProbability(S, K, T, r, sigma float64) (float64, error) {
	if S <= 0 || K <= 0 || T <= 0 || sigma <= 0 {
		return 0, fmt.Errorf("%w: S=%.4f K=%.4f T=%.6f sigma=%.4f", models.ErrInvalidInput, S, K, T, sigma)
	}
	d2 := (math.Log(S/K) + (r-0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return stdNormal.CDF(d2), nil
}

// MonteCarloAssignment simulates geometric Brownian motion paths and
// returns the fraction finishing above the strike. It cross-checks the
// closed form and survives extension to path-dependent variants.
func MonteCarloAssignment(S, K, T, r, sigma float64, seed uint64) (float64, error) {
	if S <= 0 || K <= 0 || T <= 0 || sigma <= 0 {
		return 0, fmt.Errorf("%w: S=%.4f K=%.4f T=%.6f sigma=%.4f", models.ErrInvalidInput, S, K, T, sigma)
	}

	numWorkers := runtime.NumCPU()
	perWorker := numSimulations / numWorkers
	if perWorker == 0 {
		numWorkers, perWorker = 1, numSimulations
	}

	var itm int64
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerSeed uint64) {
			defer wg.Done()

			var rng *rand.Rand
			if workerSeed != 0 {
				rng = rand.New(rand.NewSource(workerSeed))
			} else {
				rng = rngPool.Get().(*rand.Rand)
				defer rngPool.Put(rng)
			}

			steps := int(math.Max(1, T*timeSteps))
			dt := T / float64(steps)
			drift := (r - 0.5*sigma*sigma) * dt
			diffusion := sigma * math.Sqrt(dt)

			var hits int64
			for i := 0; i < perWorker; i++ {
				logS := math.Log(S)
				for s := 0; s < steps; s++ {
					logS += drift + diffusion*rng.NormFloat64()
				}
				if math.Exp(logS) > K {
					hits++
				}
			}
			atomic.AddInt64(&itm, hits)
		}(deriveSeed(seed, w))
	}
	wg.Wait()

	return float64(itm) / float64(numWorkers*perWorker), nil
}

func deriveSeed(seed uint64, worker int) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + uint64(worker)*0x9e3779b9
}
