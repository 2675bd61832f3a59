package scoring

import "testing"

func TestCompoundPolarity(t *testing.T) {
	a := NewAnalyzer()

	if got := a.Compound("This is terrible, I am so unhappy"); got >= 0 {
		t.Fatalf("negative text scored %v", got)
	}
	if got := a.Compound("Fantastic service, thank you so much"); got <= 0 {
		t.Fatalf("positive text scored %v", got)
	}
	if got := a.Compound("The package arrived on Tuesday"); got != 0 {
		t.Fatalf("neutral text scored %v, want 0", got)
	}
	if got := a.Compound(""); got != 0 {
		t.Fatalf("empty text scored %v, want 0", got)
	}
}

func TestCompoundNegationFlipsValence(t *testing.T) {
	a := NewAnalyzer()

	plain := a.Compound("I am happy with this")
	negated := a.Compound("I am not happy with this")
	if plain <= 0 {
		t.Fatalf("baseline scored %v, want positive", plain)
	}
	if negated >= 0 {
		t.Fatalf("negated text scored %v, want negative", negated)
	}
}

func TestCompoundIntensifiers(t *testing.T) {
	a := NewAnalyzer()

	base := a.Compound("The support was great")
	boosted := a.Compound("The support was very great")
	if boosted <= base {
		t.Fatalf("booster did not amplify: %v vs %v", boosted, base)
	}

	calm := a.Compound("This is awful")
	shouted := a.Compound("This is awful!!!")
	if shouted >= calm {
		t.Fatalf("exclamations did not amplify negative: %v vs %v", shouted, calm)
	}
}

func TestCompoundBounded(t *testing.T) {
	a := NewAnalyzer()
	got := a.Compound("terrible awful horrible useless broken disappointed angry furious!!!!")
	if got <= -1 || got >= 0 {
		t.Fatalf("compound = %v, want in (-1, 0)", got)
	}
}
