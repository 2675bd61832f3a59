package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Class labels predicted by the classifier.
const (
	LabelDetractor    = "detractor"
	LabelNonDetractor = "non-detractor"
)

// Example is one labeled training document.
type Example struct {
	Text  string
	Label string
}

// Classifier is a TF-IDF + logistic regression text classifier. The artifact
// stores the class list explicitly; callers resolve probability columns via
// ClassIndex rather than assuming positional label encoding.
type Classifier struct {
	Vocab   map[string]int `json:"vocab"`
	IDF     []float64      `json:"idf"`
	Weights []float64      `json:"weights"`
	Bias    float64        `json:"bias"`
	Classes []string       `json:"classes"`
}

// Training hyperparameters. Full-batch gradient descent is deterministic, so
// a fallback-trained model is reproducible across restarts.
const (
	trainEpochs       = 600
	trainLearningRate = 0.5
)

var errNoTrainingData = errors.New("no usable training data")

// TrainClassifier fits a binary logistic regression on TF-IDF features of the
// given examples. It requires at least two distinct labels.
func TrainClassifier(examples []Example) (*Classifier, error) {
	if len(examples) == 0 {
		return nil, errNoTrainingData
	}

	labelSet := make(map[string]struct{})
	for _, ex := range examples {
		labelSet[ex.Label] = struct{}{}
	}
	if len(labelSet) != 2 {
		return nil, fmt.Errorf("need exactly 2 classes, got %d", len(labelSet))
	}
	classes := make([]string, 0, 2)
	for l := range labelSet {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	positive := classes[1]

	// Vocabulary and document frequencies over unigrams + bigrams.
	vocab := make(map[string]int)
	df := []int{}
	docs := make([][]string, len(examples))
	for i, ex := range examples {
		terms := ngrams(ex.Text)
		docs[i] = terms
		seen := make(map[string]struct{})
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			idx, ok := vocab[t]
			if !ok {
				idx = len(vocab)
				vocab[t] = idx
				df = append(df, 0)
			}
			df[idx]++
		}
	}

	n := float64(len(examples))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	c := &Classifier{Vocab: vocab, IDF: idf, Weights: make([]float64, len(vocab)), Classes: classes}

	features := make([][]float64, len(examples))
	targets := make([]float64, len(examples))
	for i, ex := range examples {
		features[i] = c.vectorize(docs[i])
		if ex.Label == positive {
			targets[i] = 1
		}
	}

	for epoch := 0; epoch < trainEpochs; epoch++ {
		gradW := make([]float64, len(c.Weights))
		gradB := 0.0
		for i, x := range features {
			err := sigmoid(dot(c.Weights, x)+c.Bias) - targets[i]
			for j, v := range x {
				if v != 0 {
					gradW[j] += err * v
				}
			}
			gradB += err
		}
		for j := range c.Weights {
			c.Weights[j] -= trainLearningRate * gradW[j] / n
		}
		c.Bias -= trainLearningRate * gradB / n
	}
	return c, nil
}

// PredictProba returns the class probability vector for text, with columns in
// Classes order.
func (c *Classifier) PredictProba(text string) []float64 {
	x := c.vectorize(ngrams(text))
	p := sigmoid(dot(c.Weights, x) + c.Bias)
	return []float64{1 - p, p}
}

// ClassIndex returns the probability column for label, or -1 if the artifact
// was not trained with it.
func (c *Classifier) ClassIndex(label string) int {
	for i, cl := range c.Classes {
		if cl == label {
			return i
		}
	}
	return -1
}

// Save writes the model artifact as JSON, creating parent directories.
func (c *Classifier) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// LoadClassifier reads a model artifact from path. A missing file is reported
// with an error satisfying os.IsNotExist.
func LoadClassifier(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Classifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if len(c.Classes) != 2 || len(c.IDF) != len(c.Vocab) || len(c.Weights) != len(c.Vocab) {
		return nil, fmt.Errorf("model artifact %s is malformed", path)
	}
	return &c, nil
}

func (c *Classifier) vectorize(terms []string) []float64 {
	x := make([]float64, len(c.Vocab))
	for _, t := range terms {
		if idx, ok := c.Vocab[t]; ok {
			x[idx] += c.IDF[idx]
		}
	}
	var norm float64
	for _, v := range x {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range x {
			x[i] /= norm
		}
	}
	return x
}

// ngrams tokenizes text into lowercase unigrams and bigrams.
func ngrams(text string) []string {
	words := tokenize(text)
	terms := make([]string, 0, len(words)*2)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
