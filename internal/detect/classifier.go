package detect

import (
	"sort"

	"iclicker-monitor/internal/templates"
	"iclicker-monitor/internal/vision"

	"gonum.org/v1/gonum/floats"
)

// Classification is the raw output of one matching pass.
type Classification struct {
	Candidates []string           // Labels whose every template matched, lexical order
	Scores     map[string]float64 // Label score: minimum template score seen
}

// Classifier matches a capture against every label group of a library.
type Classifier struct {
	Threshold float64
}

// NewClassifier creates a classifier with the given match threshold.
// A non-positive threshold uses vision.DefaultThreshold.
func NewClassifier(threshold float64) Classifier {
	if threshold <= 0 {
		threshold = vision.DefaultThreshold
	}
	return Classifier{Threshold: threshold}
}

// Classify returns every label whose templates all score at least the
// threshold against img. A label's score is the minimum of its template
// scores; matching stops at the first template below the threshold since the
// minimum can then only fall further.
func (c Classifier) Classify(img vision.Gray, lib *templates.Library) Classification {
	out := Classification{Scores: make(map[string]float64)}

	lib.Visit(func(label string, group []templates.Template) {
		if len(group) == 0 {
			return
		}
		scores := make([]float64, 0, len(group))
		for _, tpl := range group {
			s := vision.Score(img, tpl.Image)
			scores = append(scores, s)
			if s < c.Threshold {
				break
			}
		}
		score := floats.Min(scores)
		out.Scores[label] = score
		if score >= c.Threshold {
			out.Candidates = append(out.Candidates, label)
		}
	})

	sort.Strings(out.Candidates)
	return out
}
