package concepts

import (
	"fmt"
	"sort"

	"archetypon/internal/fitness"
	"archetypon/internal/model"
)

// SortBySimilarity orders the concepts of each channel by nearest-centroid
// chaining: starting from the lowest-index concept, the next section is
// always the closest remaining centroid. Concepts are reindexed in the new
// order so downstream reports render similar clusters next to each other.
func SortBySimilarity(conceptList []model.Concept, metric fitness.Metric) ([]model.Concept, error) {
	byChannel := map[int][]model.Concept{}
	channels := make([]int, 0)
	for _, concept := range conceptList {
		if _, ok := byChannel[concept.ChannelIndex]; !ok {
			channels = append(channels, concept.ChannelIndex)
		}
		byChannel[concept.ChannelIndex] = append(byChannel[concept.ChannelIndex], concept)
	}
	sort.Ints(channels)

	out := make([]model.Concept, 0, len(conceptList))
	nextIndex := 0
	for _, channel := range channels {
		remaining := byChannel[channel]
		sort.Slice(remaining, func(i, j int) bool { return remaining[i].Index < remaining[j].Index })

		current := remaining[0]
		remaining = remaining[1:]
		current.Index = nextIndex
		nextIndex++
		out = append(out, current)

		for len(remaining) > 0 {
			closest := -1
			closestDistance := 0.0
			for i, candidate := range remaining {
				distance, err := fitness.Distance(metric, current.Centroid, candidate.Centroid)
				if err != nil {
					return nil, fmt.Errorf("centroid distance: %w", err)
				}
				if closest == -1 || distance < closestDistance {
					closest = i
					closestDistance = distance
				}
			}
			current = remaining[closest]
			remaining = append(remaining[:closest], remaining[closest+1:]...)
			current.Index = nextIndex
			nextIndex++
			out = append(out, current)
		}
	}
	return out, nil
}
