package scoring

// valenceLexicon maps lowercase words to polarity valences on roughly a
// [-4, 4] scale, covering the vocabulary that shows up in customer-service
// chats. Compound normalizes sums of these into [-1, 1].
var valenceLexicon = map[string]float64{
	// positive
	"amazing":    2.8,
	"appreciate": 2.0,
	"awesome":    3.1,
	"best":       3.2,
	"better":     1.9,
	"delighted":  2.9,
	"excellent":  2.7,
	"fantastic":  2.6,
	"fast":       1.1,
	"fine":       0.8,
	"fixed":      1.3,
	"glad":       2.0,
	"good":       1.9,
	"great":      3.1,
	"happy":      2.7,
	"help":       1.7,
	"helped":     1.8,
	"helpful":    2.1,
	"impressed":  2.3,
	"love":       3.2,
	"loved":      2.9,
	"nice":       1.8,
	"okay":       0.9,
	"ok":         0.9,
	"perfect":    3.0,
	"pleased":    2.2,
	"quick":      1.0,
	"resolved":   1.6,
	"satisfied":  2.0,
	"smooth":     1.3,
	"solved":     1.5,
	"thank":      1.5,
	"thanks":     1.9,
	"wonderful":  2.7,
	"works":      1.2,

	// negative
	"angry":         -2.3,
	"annoyed":       -1.8,
	"annoying":      -1.9,
	"awful":         -2.9,
	"bad":           -2.5,
	"broken":        -1.6,
	"cancel":        -1.1,
	"complaint":     -1.5,
	"confused":      -1.2,
	"confusing":     -1.4,
	"crash":         -1.8,
	"crashed":       -1.8,
	"delay":         -1.1,
	"delayed":       -1.3,
	"disappointed":  -2.2,
	"disappointing": -2.3,
	"fail":          -2.3,
	"failed":        -2.2,
	"failure":       -2.4,
	"frustrated":    -2.4,
	"frustrating":   -2.5,
	"furious":       -2.9,
	"hate":          -2.7,
	"horrible":      -2.5,
	"issue":         -1.1,
	"issues":        -1.2,
	"late":          -1.1,
	"lost":          -1.3,
	"mad":           -2.0,
	"misleading":    -1.9,
	"mistake":       -1.6,
	"nightmare":     -2.6,
	"poor":          -2.1,
	"problem":       -1.7,
	"problems":      -1.8,
	"refuse":        -1.6,
	"ridiculous":    -2.0,
	"rude":          -2.2,
	"sad":           -2.1,
	"scam":          -2.6,
	"slow":          -1.2,
	"stuck":         -1.4,
	"terrible":      -2.1,
	"unacceptable":  -2.4,
	"unhappy":       -1.8,
	"unusable":      -2.2,
	"upset":         -1.9,
	"useless":       -2.3,
	"waiting":       -0.8,
	"waste":         -2.0,
	"worse":         -2.5,
	"worst":         -3.1,
	"wrong":         -2.1,
}
