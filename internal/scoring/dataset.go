package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pulsedesk/backend/internal/models"
)

// Column names expected in the survey CSV export.
const (
	csvTranscriptColumn = "Chat_Transcript"
	csvScoreColumn      = "NPS score"
)

// LabelForScore maps an NPS score to a classifier label.
func LabelForScore(score int) string {
	if score <= models.DetractorMaxScore {
		return LabelDetractor
	}
	return LabelNonDetractor
}

// LoadDatasetCSV reads labeled examples from a survey CSV export. Rows with a
// missing transcript or non-numeric score are skipped.
func LoadDatasetCSV(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	transcriptCol, scoreCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case csvTranscriptColumn:
			transcriptCol = i
		case csvScoreColumn:
			scoreCol = i
		}
	}
	if transcriptCol < 0 || scoreCol < 0 {
		return nil, fmt.Errorf("csv %s missing %q/%q columns", path, csvTranscriptColumn, csvScoreColumn)
	}

	var examples []Example
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if transcriptCol >= len(row) || scoreCol >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[transcriptCol])
		score, convErr := strconv.Atoi(strings.TrimSpace(row[scoreCol]))
		if text == "" || convErr != nil {
			continue
		}
		examples = append(examples, Example{Text: text, Label: LabelForScore(score)})
	}
	return examples, nil
}

// syntheticExamples is the last-resort training set used when neither a
// trained artifact nor the bundled dataset is available.
func syntheticExamples() []Example {
	return []Example{
		{Text: "I am very unhappy with the service, this is terrible", Label: LabelDetractor},
		{Text: "This is okay, could be better", Label: LabelNonDetractor},
		{Text: "Absolutely fantastic experience, thank you", Label: LabelNonDetractor},
	}
}
