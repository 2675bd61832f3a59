// Package main trains the detractor classifier from a survey CSV and writes
// the model artifact, optionally publishing it to S3.
package main

import (
	"context"
	"flag"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pulsedesk/backend/config"
	"github.com/pulsedesk/backend/internal/scoring"
	"github.com/pulsedesk/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	datasetPath := flag.String("dataset", cfg.Model.DatasetPath, "survey CSV with Chat_Transcript and NPS score columns")
	outPath := flag.String("out", cfg.Model.ArtifactPath, "output path for the model artifact")
	upload := flag.Bool("upload", false, "publish the artifact to the configured S3 bucket")
	flag.Parse()

	examples, err := scoring.LoadDatasetCSV(*datasetPath)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	var detractors int
	for _, ex := range examples {
		if ex.Label == scoring.LabelDetractor {
			detractors++
		}
	}
	logger.Info("dataset loaded",
		zap.String("path", *datasetPath),
		zap.Int("examples", len(examples)),
		zap.Int("detractors", detractors))

	model, err := scoring.TrainClassifier(examples)
	if err != nil {
		logger.Fatal("train", zap.Error(err))
	}

	idx := model.ClassIndex(scoring.LabelDetractor)
	var correct int
	for _, ex := range examples {
		predicted := scoring.LabelNonDetractor
		if model.PredictProba(ex.Text)[idx] >= 0.5 {
			predicted = scoring.LabelDetractor
		}
		if predicted == ex.Label {
			correct++
		}
	}
	logger.Info("training complete",
		zap.Float64("train_accuracy", float64(correct)/float64(len(examples))))

	if err := model.Save(*outPath); err != nil {
		logger.Fatal("save artifact", zap.Error(err))
	}
	logger.Info("model artifact written",
		zap.String("path", *outPath),
		zap.Int("vocab", len(model.Vocab)))

	if *upload {
		ctx := context.Background()
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ModelBucket:     cfg.AWS.ModelBucket,
			ModelKey:        cfg.AWS.ModelKey,
		}, logger)
		if err != nil {
			logger.Fatal("s3", zap.Error(err))
		}
		if err := s3Client.UploadModel(ctx, *outPath); err != nil {
			logger.Fatal("upload artifact", zap.Error(err))
		}
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
