package positions

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"covcall/greeks"
	"covcall/logging"
	"covcall/models"
	"covcall/probability"
)

const (
	// Liquidity floor below which candidates are excluded outright.
	defaultMinVolume       = 100
	defaultMinOpenInterest = 500

	// Candidates expiring sooner than this are never sold.
	minDTE = 7

	// Decay scales for the delta and OTM-distance factors.
	deltaDecayScale    = 0.10
	distanceDecayScale = 0.03
)

// Scorer ranks candidate call contracts against a risk profile.
type Scorer struct {
	Profile         models.RiskProfile
	MinVolume       int
	MinOpenInterest int
	RiskFreeRate    float64
}

func NewScorer(profile models.RiskProfile, riskFreeRate float64) *Scorer {
	return &Scorer{
		Profile:         profile,
		MinVolume:       defaultMinVolume,
		MinOpenInterest: defaultMinOpenInterest,
		RiskFreeRate:    riskFreeRate,
	}
}

// FindBestStrikes filters, scores and ranks the candidate set, returning
// at most topN results in descending score order. Ties break on higher
// premium, then on delta closest to the profile's target midpoint.
// Malformed or illiquid candidates are dropped, never scored as zero,
// and one bad candidate does not abort the rest.
func (s *Scorer) FindBestStrikes(candidates []models.OptionContract, currentPrice float64, sharesAvailable, topN int, now time.Time) ([]models.ScoreResult, error) {
	if currentPrice <= 0 {
		return nil, fmt.Errorf("%w: current price %.4f", models.ErrInvalidInput, currentPrice)
	}
	if sharesAvailable < 100 {
		return nil, fmt.Errorf("%w: %d shares cannot cover a contract", models.ErrInsufficientShares, sharesAvailable)
	}
	if topN <= 0 {
		topN = 5
	}

	peers := s.eligible(candidates, currentPrice, now)
	if len(peers) == 0 {
		return nil, nil
	}

	results := s.scoreAll(peers, currentPrice, now)

	mid := s.Profile.TargetDeltaMid()
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		pi, pj := results[i].Contract.MidPrice(), results[j].Contract.MidPrice()
		if pi != pj {
			return pi > pj
		}
		return math.Abs(results[i].Contract.Greeks.Delta-mid) < math.Abs(results[j].Contract.Greeks.Delta-mid)
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// CalculateScore scores a single contract against its peer candidate
// set. Each factor is normalized to [0,100] independently before
// weighting and the final score is clipped to [0,100].
func (s *Scorer) CalculateScore(contract models.OptionContract, currentPrice float64, peers []models.OptionContract, now time.Time) (models.ScoreResult, error) {
	if currentPrice <= 0 {
		return models.ScoreResult{}, fmt.Errorf("%w: current price %.4f", models.ErrInvalidInput, currentPrice)
	}
	if contract.Strike <= 0 || contract.MidPrice() <= 0 {
		return models.ScoreResult{}, fmt.Errorf("%w: contract %s %.2f has no usable quote",
			models.ErrInvalidInput, contract.Underlying, contract.Strike)
	}

	premiums, ivs := peerDistributions(peers)
	w := s.Profile.Weights

	deltaScore := bandScore(contract.Greeks.Delta, s.Profile.TargetDeltaLow, s.Profile.TargetDeltaHi, deltaDecayScale)
	premiumScore := minMaxScore(contract.MidPrice(), premiums)
	ivScore := minMaxScore(contract.ImpliedVolatility, ivs)
	distScore := bandScore(contract.OTMPercent(currentPrice), s.Profile.OTMBandLow, s.Profile.OTMBandHigh, distanceDecayScale)

	factors := []models.FactorScore{
		{Name: "delta", Raw: deltaScore, Weight: w.Delta, Weighted: deltaScore * w.Delta},
		{Name: "premium", Raw: premiumScore, Weight: w.Premium, Weighted: premiumScore * w.Premium},
		{Name: "iv", Raw: ivScore, Weight: w.IV, Weighted: ivScore * w.IV},
		{Name: "distance", Raw: distScore, Weight: w.Distance, Weighted: distScore * w.Distance},
	}

	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}
	total = math.Min(100, math.Max(0, total))

	result := models.ScoreResult{Contract: contract, Score: total, Factors: factors}
	if T := contract.TimeToExpiration(now); T > 0 && contract.ImpliedVolatility > 0 {
		if p, err := probability.ITMProbability(currentPrice, contract.Strike, T, s.RiskFreeRate, contract.ImpliedVolatility); err == nil {
			result.AssignmentProbability = p
		}
	}
	return result, nil
}

// eligible applies the malformed-candidate and liquidity filters and
// fills in missing IV (from the mid quote) and delta (from the engine).
func (s *Scorer) eligible(candidates []models.OptionContract, currentPrice float64, now time.Time) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(candidates))
	for _, c := range candidates {
		if c.Type != models.Call || c.Strike <= 0 || c.Bid < 0 || c.Ask < 0 || c.MidPrice() <= 0 {
			continue
		}
		dte := c.DaysToExpiration(now)
		if dte < minDTE || (s.Profile.MaxDTE > 0 && dte > s.Profile.MaxDTE) {
			continue
		}
		if c.Volume < s.MinVolume || c.OpenInterest < s.MinOpenInterest {
			continue
		}

		T := c.TimeToExpiration(now)
		if c.ImpliedVolatility <= 0 {
			iv, err := greeks.ImpliedVolatility(c.MidPrice(), currentPrice, c.Strike, T, s.RiskFreeRate, models.Call)
			if err != nil {
				logging.L().Debugw("dropping candidate without solvable IV",
					"strike", c.Strike, "expiration", c.Expiration.Format("2006-01-02"), "err", err)
				continue
			}
			c.ImpliedVolatility = iv
		}
		if c.Greeks.Delta == 0 {
			delta, err := greeks.Delta(currentPrice, c.Strike, T, s.RiskFreeRate, c.ImpliedVolatility, models.Call)
			if err != nil {
				continue
			}
			c.Greeks.Delta = delta
		}
		out = append(out, c)
	}
	return out
}

// scoreAll evaluates candidates on a worker pool; per-candidate scoring
// shares no mutable state.
func (s *Scorer) scoreAll(peers []models.OptionContract, currentPrice float64, now time.Time) []models.ScoreResult {
	numWorkers := runtime.NumCPU()
	if numWorkers > len(peers) {
		numWorkers = len(peers)
	}

	jobs := make(chan models.OptionContract, len(peers))
	resultChan := make(chan models.ScoreResult, len(peers))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				result, err := s.CalculateScore(c, currentPrice, peers, now)
				if err != nil {
					continue
				}
				resultChan <- result
			}
		}()
	}

	for _, c := range peers {
		jobs <- c
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []models.ScoreResult
	for r := range resultChan {
		results = append(results, r)
	}
	return results
}

func peerDistributions(peers []models.OptionContract) (premiums, ivs []float64) {
	for _, p := range peers {
		if mid := p.MidPrice(); mid > 0 {
			premiums = append(premiums, mid)
		}
		if p.ImpliedVolatility > 0 {
			ivs = append(ivs, p.ImpliedVolatility)
		}
	}
	return premiums, ivs
}

// bandScore peaks at 100 inside [lo, hi] and decays exponentially with
// distance outside it.
func bandScore(x, lo, hi, scale float64) float64 {
	if x >= lo && x <= hi {
		return 100
	}
	dist := lo - x
	if x > hi {
		dist = x - hi
	}
	return 100 * math.Exp(-dist/scale)
}

// minMaxScore normalizes x against the peer distribution; a degenerate
// distribution scores neutral.
func minMaxScore(x float64, peers []float64) float64 {
	if len(peers) == 0 {
		return 50
	}
	lo, hi := floats.Min(peers), floats.Max(peers)
	if hi == lo {
		return 50
	}
	norm := (x - lo) / (hi - lo)
	return 100 * math.Min(1, math.Max(0, norm))
}
