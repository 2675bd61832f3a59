package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func trainingSet() []Example {
	return []Example{
		{Text: "I am very unhappy with the service, this is terrible", Label: LabelDetractor},
		{Text: "My refund never arrived and support keeps ignoring me", Label: LabelDetractor},
		{Text: "The app is broken and nobody helps, awful experience", Label: LabelDetractor},
		{Text: "This is okay, could be better", Label: LabelNonDetractor},
		{Text: "Absolutely fantastic experience, thank you", Label: LabelNonDetractor},
		{Text: "Quick reply and the problem was solved, great support", Label: LabelNonDetractor},
	}
}

func TestTrainClassifierClassMapping(t *testing.T) {
	c, err := TrainClassifier(trainingSet())
	if err != nil {
		t.Fatalf("TrainClassifier: %v", err)
	}
	if len(c.Classes) != 2 || c.Classes[0] != LabelDetractor || c.Classes[1] != LabelNonDetractor {
		t.Fatalf("Classes = %v", c.Classes)
	}
	if idx := c.ClassIndex(LabelDetractor); idx != 0 {
		t.Fatalf("ClassIndex(detractor) = %d, want 0", idx)
	}
	if idx := c.ClassIndex(LabelNonDetractor); idx != 1 {
		t.Fatalf("ClassIndex(non-detractor) = %d, want 1", idx)
	}
	if idx := c.ClassIndex("promoter"); idx != -1 {
		t.Fatalf("ClassIndex(unknown) = %d, want -1", idx)
	}

	probs := c.PredictProba("anything at all")
	if len(probs) != len(c.Classes) {
		t.Fatalf("probability vector has %d columns for %d classes", len(probs), len(c.Classes))
	}
	if sum := probs[0] + probs[1]; math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sum)
	}
}

func TestTrainClassifierSeparatesLabels(t *testing.T) {
	examples := trainingSet()
	c, err := TrainClassifier(examples)
	if err != nil {
		t.Fatalf("TrainClassifier: %v", err)
	}
	idx := c.ClassIndex(LabelDetractor)
	for _, ex := range examples {
		p := c.PredictProba(ex.Text)[idx]
		if ex.Label == LabelDetractor && p <= 0.5 {
			t.Errorf("detractor text %q scored %v", ex.Text, p)
		}
		if ex.Label == LabelNonDetractor && p >= 0.5 {
			t.Errorf("non-detractor text %q scored %v", ex.Text, p)
		}
	}
}

func TestTrainClassifierRejectsDegenerateInput(t *testing.T) {
	if _, err := TrainClassifier(nil); err == nil {
		t.Fatal("expected error for empty training set")
	}
	oneClass := []Example{
		{Text: "bad", Label: LabelDetractor},
		{Text: "worse", Label: LabelDetractor},
	}
	if _, err := TrainClassifier(oneClass); err == nil {
		t.Fatal("expected error for single-class training set")
	}
}

func TestClassifierSaveLoad(t *testing.T) {
	c, err := TrainClassifier(trainingSet())
	if err != nil {
		t.Fatalf("TrainClassifier: %v", err)
	}

	path := filepath.Join(t.TempDir(), "artifacts", "model.json")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadClassifier(path)
	if err != nil {
		t.Fatalf("LoadClassifier: %v", err)
	}
	if loaded.Classes[0] != c.Classes[0] || loaded.Classes[1] != c.Classes[1] {
		t.Fatalf("loaded Classes = %v, want %v", loaded.Classes, c.Classes)
	}
	text := "I am very unhappy with the service, this is terrible"
	want := c.PredictProba(text)[0]
	got := loaded.PredictProba(text)[0]
	if math.Abs(want-got) > 1e-12 {
		t.Fatalf("loaded model predicts %v, original %v", got, want)
	}
}

func TestLoadClassifierMissingFile(t *testing.T) {
	_, err := LoadClassifier(filepath.Join(t.TempDir(), "absent.json"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want os.IsNotExist", err)
	}
}

func TestLoadClassifierRejectsMalformedArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{"vocab":{"a":0},"idf":[],"weights":[],"classes":["x","y"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadClassifier(path); err == nil {
		t.Fatal("expected error for inconsistent artifact")
	}
}
