package mastery

import "math"

// SubtopicWeight pairs a subtopic's mastery with its concept count.
type SubtopicWeight struct {
	Mastery  int
	Concepts int
}

// WeightedTopicMastery averages subtopic mastery weighted by concept count.
// A subtopic without concepts weighs as one concept.
func WeightedTopicMastery(subtopics []SubtopicWeight) int {
	var sum, weights float64
	for _, s := range subtopics {
		w := float64(s.Concepts)
		if w < 1 {
			w = 1
		}
		sum += w * float64(s.Mastery)
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return int(math.Round(clamp(sum/weights, 0, 100)))
}
