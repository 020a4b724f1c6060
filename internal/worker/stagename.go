package worker

import (
	"strings"

	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/model"
)

// heuristicOverlay maps keyword phrases to the stage they imply, used to
// overrule or flag low-confidence zero-shot predictions (spec §4.5 op 6,
// Glossary "Heuristic label"). Matching is substring, case-insensitive,
// first match wins.
var heuristicOverlay = []struct {
	keyword string
	stage   domain.Stage
}{
	{"application received", domain.StageApplied},
	{"thank you for applying", domain.StageApplied},
	{"interview", domain.StageInterview},
	{"schedule a call", domain.StageInterview},
	{"offer letter", domain.StageOffer},
	{"pleased to offer", domain.StageOffer},
	{"welcome aboard", domain.StageAccepted},
	{"not selected", domain.StageRejected},
	{"other candidates", domain.StageRejected},
	{"unfortunately", domain.StageRejected},
}

// matchHeuristic returns the stage implied by text's keyword phrases, or ""
// if none match.
func matchHeuristic(text string) domain.Stage {
	lower := strings.ToLower(text)
	for _, h := range heuristicOverlay {
		if strings.Contains(lower, h.keyword) {
			return h.stage
		}
	}
	return ""
}

// normalizeStageLabel maps a zero-shot classification label back onto the
// fixed domain.Stage enum, adopted from the original source's
// classification_tasks.py:_normalize_stage mapping (first-word fallback for
// anything not one of the five canonical verbs).
func normalizeStageLabel(label model.ClassificationLabel) domain.Stage {
	switch label {
	case model.LabelApplied:
		return domain.StageApplied
	case model.LabelInterview:
		return domain.StageInterview
	case model.LabelOffer:
		return domain.StageOffer
	case model.LabelAccepted:
		return domain.StageAccepted
	case model.LabelRejected:
		return domain.StageRejected
	default:
		fields := strings.Fields(string(label))
		if len(fields) == 0 {
			return domain.StageApplied
		}
		switch strings.ToLower(fields[0]) {
		case "application", "apply", "applied":
			return domain.StageApplied
		case "screen", "interview":
			return domain.StageInterview
		case "offer":
			return domain.StageOffer
		case "accept", "accepted":
			return domain.StageAccepted
		case "reject", "rejected":
			return domain.StageRejected
		default:
			return domain.StageApplied
		}
	}
}
