// Package sample generates synthetic prediction results for exercising the
// dashboard without a prediction API. It cycles through fixed inputs so the
// generated charts are predictable.
package sample

import (
	"fmt"
	"sync"
	"time"

	"prediction-dashboard-service/internal/models"
)

// Pair is a simulated score-model input with its score.
type Pair struct {
	Premise    string
	Hypothesis string
	Score      float64
}

// Classified is a simulated classifier input with its probabilities in
// label order: clean, mild gibberish, noise, word salad.
type Classified struct {
	Text  string
	Label string
	Probs [4]float64
}

// DefaultPairs provides sample inputs for score batches.
var DefaultPairs = []Pair{
	{"The cat sat on the mat.", "A cat is sitting on a mat.", 0.93},
	{"Paris is the capital of France.", "Berlin is the capital of France.", 0.04},
	{"The meeting starts at noon.", "The meeting is in the afternoon.", 0.41},
	{"She bought three apples.", "She bought fruit.", 0.78},
	{"It rained all day.", "The ground stayed dry.", 0.12},
	{"The report was filed on time.", "The report was late.", 0.27},
}

// DefaultTexts provides sample inputs for classification batches.
var DefaultTexts = []Classified{
	{"I want to cancel my subscription", "Clean", [4]float64{0.96, 0.02, 0.01, 0.01}},
	{"asdkj qwpeoi zmxnb", "Noise", [4]float64{0.01, 0.04, 0.91, 0.04}},
	{"purple the quickly sandwich of", "Word Salad", [4]float64{0.03, 0.12, 0.05, 0.80}},
	{"I has went to store yesterday", "Mild Gibberish", [4]float64{0.22, 0.71, 0.02, 0.05}},
	{"Thank you very much", "Clean", [4]float64{0.98, 0.01, 0.005, 0.005}},
}

// Generator produces batches of synthetic results. Safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	next  int
	seq   int
	start time.Time
	step  time.Duration
	now   func() time.Time
}

// New returns a generator whose records are step apart.
func New(step time.Duration) *Generator {
	if step <= 0 {
		step = time.Second
	}
	return &Generator{step: step, now: time.Now}
}

// Scores returns n score results.
func (g *Generator) Scores(n int) models.Batch {
	records := make([]models.ScoreResult, n)
	for i := range records {
		idx, id, at := g.advance(len(DefaultPairs))
		p := DefaultPairs[idx]
		records[i] = models.ScoreResult{
			PredictionID:     models.Text(id),
			Input1:           models.Text(p.Premise),
			Input2:           models.Text(p.Hypothesis),
			OutputScore:      models.Value(p.Score),
			Timestamp:        models.At(at),
			ProcessingTimeMs: models.Value(40 + 7*(idx%5)),
			Status:           "success",
		}
	}
	return models.ScoreBatch(records)
}

// Classifications returns n classification results.
func (g *Generator) Classifications(n int) models.Batch {
	records := make([]models.ClassificationResult, n)
	for i := range records {
		idx, id, at := g.advance(len(DefaultTexts))
		c := DefaultTexts[idx]
		records[i] = models.ClassificationResult{
			PredictionID:      models.Text(id),
			InputText:         models.Text(c.Text),
			PredictedLabel:    models.Text(c.Label),
			ProbClean:         models.Value(c.Probs[0]),
			ProbMildGibberish: models.Value(c.Probs[1]),
			ProbNoise:         models.Value(c.Probs[2]),
			ProbWordSalad:     models.Value(c.Probs[3]),
			Timestamp:         models.At(at),
			ProcessingTimeMs:  models.Value(25 + 5*(idx%4)),
			Status:            "success",
		}
	}
	return models.ClassificationBatch(records)
}

// advance returns the next input index, prediction id and timestamp.
func (g *Generator) advance(inputs int) (int, string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.start.IsZero() {
		g.start = g.now().UTC().Truncate(time.Second)
	}
	idx := g.next % inputs
	g.next++
	at := g.start.Add(time.Duration(g.seq) * g.step)
	g.seq++
	return idx, fmt.Sprintf("pred-%06d", g.seq), at
}
