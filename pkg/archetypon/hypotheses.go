package archetypon

import (
	"context"

	"archetypon/internal/model"
)

// TaskInfo describes the prediction task for the hypothesis provider.
type TaskInfo struct {
	Name        string
	Description string
}

// HypothesisProvider produces a natural-language hypothesis for a concept,
// typically by prompting an external language model with the prototype and
// the cluster contribution.
type HypothesisProvider interface {
	Hypothesize(ctx context.Context, concept model.Concept, task TaskInfo) (string, error)
}

// AttachHypotheses fills Concept.Hypothesis for every concept that has at
// least one prototype. Provider failures skip the concept and are logged,
// they do not fail the batch.
func (c *Client) AttachHypotheses(ctx context.Context, conceptList []model.Concept, provider HypothesisProvider, task TaskInfo) ([]model.Concept, error) {
	out := make([]model.Concept, len(conceptList))
	copy(out, conceptList)

	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(out[i].Prototypes) == 0 {
			c.logger.Info().Int("concept", out[i].Index).Msg("no prototype, skipping hypothesis")
			continue
		}
		hypothesis, err := provider.Hypothesize(ctx, out[i], task)
		if err != nil {
			c.logger.Warn().Err(err).Int("concept", out[i].Index).Msg("hypothesis generation failed")
			continue
		}
		out[i].Hypothesis = hypothesis
		if err := c.store.SaveConcept(ctx, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
