package analysis

// Valence lexicon tuned for short app-store review text. Values follow the
// usual additive-lexicon convention: roughly -4 (most negative) to +4
// (most positive). No learned parameters.
var wordValence = map[string]float64{
	// positive
	"amazing":     2.8,
	"awesome":     3.1,
	"best":        3.2,
	"better":      1.9,
	"brilliant":   2.8,
	"clean":       1.4,
	"convenient":  1.7,
	"easy":        1.9,
	"efficient":   1.8,
	"excellent":   2.7,
	"fantastic":   2.6,
	"fast":        1.7,
	"fine":        0.8,
	"flawless":    2.4,
	"friendly":    2.2,
	"good":        1.9,
	"great":       3.1,
	"happy":       2.7,
	"helpful":     1.8,
	"impressive":  2.3,
	"improved":    1.6,
	"intuitive":   1.7,
	"like":        1.5,
	"love":        3.2,
	"loved":       2.9,
	"nice":        1.8,
	"ok":          0.9,
	"okay":        0.9,
	"perfect":     2.7,
	"pleasant":    2.3,
	"quick":       1.3,
	"recommend":   1.8,
	"reliable":    1.6,
	"responsive":  1.5,
	"satisfied":   2.0,
	"seamless":    1.9,
	"secure":      1.4,
	"simple":      1.2,
	"smooth":      1.5,
	"stable":      1.3,
	"superb":      3.0,
	"thank":       1.9,
	"thanks":      1.9,
	"useful":      1.9,
	"wonderful":   2.7,
	"works":       1.4,
	"wow":         2.8,

	// negative
	"annoying":      -1.9,
	"awful":         -2.0,
	"bad":           -2.5,
	"broken":        -2.1,
	"bug":           -1.7,
	"buggy":         -1.9,
	"bugs":          -1.7,
	"confusing":     -1.6,
	"crash":         -2.2,
	"crashed":       -2.2,
	"crashes":       -2.2,
	"crashing":      -2.2,
	"delay":         -1.3,
	"delayed":       -1.3,
	"difficult":     -1.5,
	"disappointed":  -2.1,
	"disappointing": -2.1,
	"error":         -1.6,
	"errors":        -1.6,
	"expensive":     -1.1,
	"fail":          -2.3,
	"failed":        -2.3,
	"fails":         -2.3,
	"failure":       -2.3,
	"fraud":         -2.9,
	"freeze":        -1.8,
	"freezes":       -1.8,
	"frustrating":   -2.2,
	"garbage":       -2.5,
	"hang":          -1.4,
	"hangs":         -1.4,
	"hate":          -2.7,
	"horrible":      -2.5,
	"issue":         -1.4,
	"issues":        -1.4,
	"lag":           -1.4,
	"laggy":         -1.6,
	"lost":          -1.9,
	"outdated":      -1.3,
	"poor":          -1.9,
	"problem":       -1.7,
	"problems":      -1.7,
	"rejected":      -1.6,
	"scam":          -2.9,
	"slow":          -1.2,
	"steal":         -2.7,
	"stuck":         -1.5,
	"stupid":        -2.4,
	"terrible":      -2.1,
	"trash":         -2.3,
	"unable":        -1.4,
	"unreliable":    -1.8,
	"unstable":      -1.6,
	"useless":       -1.8,
	"waste":         -2.0,
	"worst":         -3.1,
	"wrong":         -1.6,
}

// negators flip the valence of a following sentiment word.
var negators = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"neither": {},
	"nor":     {},
	"cannot":  {},
	"cant":    {},
	"can't":   {},
	"dont":    {},
	"don't":   {},
	"doesnt":  {},
	"doesn't": {},
	"didnt":   {},
	"didn't":  {},
	"isnt":    {},
	"isn't":   {},
	"wasnt":   {},
	"wasn't":  {},
	"wont":    {},
	"won't":   {},
	"hardly":  {},
	"barely":  {},
	"without": {},
}

// boosters intensify the valence of a following sentiment word.
var boosters = map[string]struct{}{
	"absolutely": {},
	"completely": {},
	"extremely":  {},
	"incredibly": {},
	"really":     {},
	"so":         {},
	"super":      {},
	"too":        {},
	"totally":    {},
	"very":       {},
}
