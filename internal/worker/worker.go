package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pulsedesk/backend/internal/manager"
	"github.com/pulsedesk/backend/internal/scoring"
	"github.com/pulsedesk/backend/pkg/queue"
)

// retryBackoff is the delay before re-polling after a queue error.
const retryBackoff = 5 * time.Second

// RetrainProcessor processes retrain jobs: it pulls accumulated survey
// transcripts from the database, trains a fresh classifier, and publishes the
// artifact. The serving model is immutable; new artifacts are picked up at
// the next process start.
type RetrainProcessor struct {
	repo         *manager.Repository
	artifactPath string
	artifacts    scoring.ArtifactStore // optional
	queue        *queue.Queue
	logger       *zap.Logger
}

// NewRetrainProcessor creates a retrain job processor.
func NewRetrainProcessor(repo *manager.Repository, artifactPath string, artifacts scoring.ArtifactStore, q *queue.Queue, logger *zap.Logger) *RetrainProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetrainProcessor{
		repo:         repo,
		artifactPath: artifactPath,
		artifacts:    artifacts,
		queue:        q,
		logger:       logger,
	}
}

// Process executes one retrain job.
func (p *RetrainProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeRetrain {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	examples, err := p.repo.TrainingExamples(ctx)
	if err != nil {
		return fmt.Errorf("load training examples: %w", err)
	}
	if len(examples) == 0 {
		p.logger.Warn("no survey transcripts available, skipping retrain", zap.String("job_id", job.ID))
		return nil
	}

	model, err := scoring.TrainClassifier(examples)
	if err != nil {
		return fmt.Errorf("train classifier: %w", err)
	}
	if err := model.Save(p.artifactPath); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if p.artifacts != nil {
		if err := p.artifacts.UploadModel(ctx, p.artifactPath); err != nil {
			return fmt.Errorf("upload artifact: %w", err)
		}
	}

	p.logger.Info("retrain completed",
		zap.String("job_id", job.ID),
		zap.Int("examples", len(examples)),
		zap.String("artifact", p.artifactPath))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *RetrainProcessor) Run(ctx context.Context) {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}
		if job == nil {
			continue
		}
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("retrain job failed", zap.Error(err), zap.String("job_id", job.ID))
			_ = p.queue.Retry(ctx, job)
		}
	}
}
