package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLabelForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, LabelDetractor},
		{6, LabelDetractor},
		{7, LabelNonDetractor},
		{10, LabelNonDetractor},
	}
	for _, tc := range cases {
		if got := LabelForScore(tc.score); got != tc.want {
			t.Errorf("LabelForScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestLoadDatasetCSVSkipsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.csv")
	csv := "Session,Chat_Transcript,NPS score\n" +
		"1,\"bad experience\",3\n" +
		"2,\"\",5\n" +
		"3,\"no score here\",n/a\n" +
		"4,\"great experience\",9\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	examples, err := LoadDatasetCSV(path)
	if err != nil {
		t.Fatalf("LoadDatasetCSV: %v", err)
	}
	if len(examples) != 2 {
		t.Fatalf("got %d examples, want 2: %+v", len(examples), examples)
	}
	if examples[0].Label != LabelDetractor || examples[1].Label != LabelNonDetractor {
		t.Fatalf("labels = %q, %q", examples[0].Label, examples[1].Label)
	}
}

func TestLoadDatasetCSVRequiresColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDatasetCSV(path); err == nil {
		t.Fatal("expected error for missing columns")
	}
}
