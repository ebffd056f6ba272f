package history

import "github.com/phishscan/phishscan/internal/model"

// Verdict change directions between two consecutive checks of a URL.
const (
	// DirectionWorsened means the newer verdict is more dangerous.
	DirectionWorsened = "worsened"

	// DirectionImproved means the newer verdict is safer.
	DirectionImproved = "improved"

	// DirectionUnchanged means both checks reached the same verdict.
	DirectionUnchanged = "unchanged"
)

// verdictRank orders verdicts by danger for change direction.
// Legitimate < Suspicious < Phishing: moving toward Phishing worsens.
func verdictRank(v model.Verdict) int {
	switch v {
	case model.VerdictLegitimate:
		return 0
	case model.VerdictSuspicious:
		return 1
	case model.VerdictPhishing:
		return 2
	default:
		return 1
	}
}

// Direction classifies the verdict change from an older check to a
// newer one.
func Direction(older, newer model.Verdict) string {
	switch {
	case verdictRank(newer) > verdictRank(older):
		return DirectionWorsened
	case verdictRank(newer) < verdictRank(older):
		return DirectionImproved
	default:
		return DirectionUnchanged
	}
}

// Change describes one verdict transition in a URL's timeline.
type Change struct {
	// From is the older check.
	From Entry

	// To is the newer check.
	To Entry

	// Direction is worsened, improved, or unchanged.
	Direction string
}

// Changes walks a timeline (newest first, as returned by Timeline) and
// returns the transitions between consecutive checks, oldest first.
// Fewer than two entries yield no changes.
func Changes(timeline []Entry) []Change {
	if len(timeline) < 2 {
		return nil
	}

	// Timeline is newest-first; walk from the oldest pair forward.
	changes := make([]Change, 0, len(timeline)-1)
	for i := len(timeline) - 1; i > 0; i-- {
		older := timeline[i]
		newer := timeline[i-1]
		changes = append(changes, Change{
			From:      older,
			To:        newer,
			Direction: Direction(older.Report.FinalVerdict, newer.Report.FinalVerdict),
		})
	}
	return changes
}
