package core

// Counter states of the branch history table.
const (
	stronglyNotTaken uint8 = iota
	weaklyNotTaken
	weaklyTaken
	stronglyTaken
)

// BranchPredictorConfig holds the table sizes of the branch predictor.
// Both sizes must be powers of 2; zero selects the default.
type BranchPredictorConfig struct {
	// BHTSize is the number of 2-bit counters. Default: 256.
	BHTSize uint32
	// BTBSize is the number of branch target buffer entries. Default: 64.
	BTBSize uint32
}

// DefaultBranchPredictorConfig returns the predictor sizes used by NewCore.
func DefaultBranchPredictorConfig() BranchPredictorConfig {
	return BranchPredictorConfig{
		BHTSize: 256,
		BTBSize: 64,
	}
}

// BranchPredictorStats holds branch predictor counters.
type BranchPredictorStats struct {
	Predictions    uint64
	Correct        uint64
	Mispredictions uint64
	BTBHits        uint64
	BTBMisses      uint64
}

// Accuracy returns the share of correct predictions as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// BTBHitRate returns the BTB hit rate as a percentage.
func (s BranchPredictorStats) BTBHitRate() float64 {
	total := s.BTBHits + s.BTBMisses
	if total == 0 {
		return 0
	}
	return float64(s.BTBHits) / float64(total) * 100
}

// Prediction is the outcome the predictor expects for a branch.
type Prediction struct {
	Taken bool
	// Target is valid only when TargetKnown is set.
	Target      uint32
	TargetKnown bool
}

type btbEntry struct {
	valid  bool
	pc     uint32
	target uint32
}

// BranchPredictor is a bimodal predictor of 2-bit saturating counters with
// a direct-mapped branch target buffer. Both tables are indexed by the word
// address of the branch.
type BranchPredictor struct {
	bht []uint8
	btb []btbEntry

	stats BranchPredictorStats
}

// NewBranchPredictor creates a predictor with every counter weakly taken.
func NewBranchPredictor(config BranchPredictorConfig) *BranchPredictor {
	defaults := DefaultBranchPredictorConfig()
	if config.BHTSize == 0 {
		config.BHTSize = defaults.BHTSize
	}
	if config.BTBSize == 0 {
		config.BTBSize = defaults.BTBSize
	}

	bp := &BranchPredictor{
		bht: make([]uint8, config.BHTSize),
		btb: make([]btbEntry, config.BTBSize),
	}
	bp.Reset()

	return bp
}

func (bp *BranchPredictor) bhtIndex(pc uint32) uint32 {
	return (pc >> 2) & uint32(len(bp.bht)-1)
}

func (bp *BranchPredictor) btbIndex(pc uint32) uint32 {
	return (pc >> 2) & uint32(len(bp.btb)-1)
}

// Predict returns the expected outcome for the branch at pc.
func (bp *BranchPredictor) Predict(pc uint32) Prediction {
	pred := Prediction{
		Taken: bp.bht[bp.bhtIndex(pc)] >= weaklyTaken,
	}

	entry := bp.btb[bp.btbIndex(pc)]
	if entry.valid && entry.pc == pc {
		pred.Target = entry.target
		pred.TargetKnown = true
		bp.stats.BTBHits++
	} else {
		bp.stats.BTBMisses++
	}

	bp.stats.Predictions++
	return pred
}

// Update trains the predictor with the resolved outcome of the branch at pc.
// Only taken branches enter the BTB.
func (bp *BranchPredictor) Update(pc uint32, taken bool, target uint32) {
	idx := bp.bhtIndex(pc)
	counter := bp.bht[idx]

	if (counter >= weaklyTaken) == taken {
		bp.stats.Correct++
	} else {
		bp.stats.Mispredictions++
	}

	switch {
	case taken && counter < stronglyTaken:
		bp.bht[idx] = counter + 1
	case !taken && counter > stronglyNotTaken:
		bp.bht[idx] = counter - 1
	}

	if taken {
		bp.btb[bp.btbIndex(pc)] = btbEntry{valid: true, pc: pc, target: target}
	}
}

// Stats returns the predictor counters.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset sets every counter to weakly taken and clears the BTB and counters.
func (bp *BranchPredictor) Reset() {
	for i := range bp.bht {
		bp.bht[i] = weaklyTaken
	}
	for i := range bp.btb {
		bp.btb[i] = btbEntry{}
	}
	bp.stats = BranchPredictorStats{}
}
