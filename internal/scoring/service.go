package scoring

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Result is the outcome of scoring one message text.
type Result struct {
	Label         string  `json:"label"`
	ProbDetractor float64 `json:"prob_detractor"`
	Sentiment     float64 `json:"sentiment"`
	Explanation   string  `json:"explanation"`
}

// DetractorLabelThreshold is the probability at which a message is labeled
// detractor.
const DetractorLabelThreshold = 0.5

// ArtifactStore fetches and publishes model artifacts in remote storage.
type ArtifactStore interface {
	DownloadModel(ctx context.Context, dest string) error
	UploadModel(ctx context.Context, src string) error
}

// Service owns the lazily-initialized classifier and the sentiment analyzer,
// shared by all sessions. Construct one instance and inject it; the model is
// immutable once loaded, so Score needs no locking after EnsureReady.
type Service struct {
	artifactPath string
	datasetPath  string
	artifacts    ArtifactStore // optional
	logger       *zap.Logger

	once     sync.Once
	initErr  error
	model    *Classifier
	analyzer *Analyzer
}

// NewService creates a scoring service. artifacts may be nil to disable
// remote artifact storage.
func NewService(artifactPath, datasetPath string, artifacts ArtifactStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		artifactPath: artifactPath,
		datasetPath:  datasetPath,
		artifacts:    artifacts,
		logger:       logger,
		analyzer:     NewAnalyzer(),
	}
}

// EnsureReady loads the model artifact, or trains a fallback model exactly
// once process-wide. Safe for concurrent first-use from many sessions; every
// caller observes the same outcome.
func (s *Service) EnsureReady(ctx context.Context) error {
	s.once.Do(func() {
		s.initErr = s.initialize(ctx)
	})
	return s.initErr
}

func (s *Service) initialize(ctx context.Context) error {
	if model, err := LoadClassifier(s.artifactPath); err == nil {
		s.model = model
		s.logger.Info("model artifact loaded", zap.String("path", s.artifactPath))
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("load model artifact: %w", err)
	}

	if s.artifacts != nil {
		if err := s.artifacts.DownloadModel(ctx, s.artifactPath); err == nil {
			model, err := LoadClassifier(s.artifactPath)
			if err == nil {
				s.model = model
				s.logger.Info("model artifact fetched from remote storage", zap.String("path", s.artifactPath))
				return nil
			}
			s.logger.Warn("fetched model artifact unusable", zap.Error(err))
		} else {
			s.logger.Debug("no remote model artifact", zap.Error(err))
		}
	}

	return s.trainFallback(ctx)
}

// trainFallback trains from the bundled dataset, or from the synthetic set
// when the dataset is absent, and persists the result for future loads.
func (s *Service) trainFallback(ctx context.Context) error {
	examples, err := LoadDatasetCSV(s.datasetPath)
	if err != nil || len(examples) == 0 {
		s.logger.Warn("bundled dataset unavailable, training on synthetic set",
			zap.String("path", s.datasetPath), zap.Error(err))
		examples = syntheticExamples()
	}

	model, err := TrainClassifier(examples)
	if err != nil {
		return fmt.Errorf("fallback training: %w", err)
	}
	s.model = model
	s.logger.Info("fallback model trained", zap.Int("examples", len(examples)))

	if err := model.Save(s.artifactPath); err != nil {
		s.logger.Warn("persist model artifact failed", zap.Error(err))
	} else if s.artifacts != nil {
		if err := s.artifacts.UploadModel(ctx, s.artifactPath); err != nil {
			s.logger.Warn("upload model artifact failed", zap.Error(err))
		}
	}
	return nil
}

// Score computes the sentiment compound and detractor probability for text.
// It is a pure read once the model is loaded.
func (s *Service) Score(ctx context.Context, text string) (Result, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return Result{}, err
	}

	sentiment := s.analyzer.Compound(text)

	idx := s.model.ClassIndex(LabelDetractor)
	if idx < 0 {
		return Result{}, fmt.Errorf("model artifact has no %q class", LabelDetractor)
	}
	prob := s.model.PredictProba(text)[idx]

	label := LabelNonDetractor
	if prob >= DetractorLabelThreshold {
		label = LabelDetractor
	}
	return Result{
		Label:         label,
		ProbDetractor: prob,
		Sentiment:     sentiment,
		Explanation:   fmt.Sprintf("Model probability of detractor: %.2f; sentiment %.2f", prob, sentiment),
	}, nil
}
