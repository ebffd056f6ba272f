package fusion

import "github.com/phishscan/phishscan/internal/model"

// Fuse tallies the three source verdicts into a final verdict. Two or
// more phishing votes win; otherwise two or more legitimate votes win;
// anything else is Suspicious. Suspicious inputs count for neither
// side, so a degraded source can never flip a URL to Legitimate.
//
// The vote is order-independent and the per-source verdicts are always
// carried in the result, whatever the final call.
func Fuse(modelVerdict, safeBrowsing, virusTotal model.Verdict) model.FusionResult {
	var phishing, legitimate int
	for _, v := range [...]model.Verdict{modelVerdict, safeBrowsing, virusTotal} {
		switch v {
		case model.VerdictPhishing:
			phishing++
		case model.VerdictLegitimate:
			legitimate++
		}
	}

	final := model.VerdictSuspicious
	switch {
	case phishing >= 2:
		final = model.VerdictPhishing
	case legitimate >= 2:
		final = model.VerdictLegitimate
	}

	return model.FusionResult{
		Final: final,
		Details: model.SourceVerdicts{
			Model:        modelVerdict,
			SafeBrowsing: safeBrowsing,
			VirusTotal:   virusTotal,
		},
	}
}
