package airouter

import "context"

// Fake is a deterministic in-memory stand-in for Client, used in tests the
// way internal/inference/engine/mock fakes the inference engine.
type Fake struct {
	EmbedFunc    func(ctx context.Context, text string) (EmbedResult, error)
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (f *Fake) Embed(ctx context.Context, text string) (EmbedResult, error) {
	if f.EmbedFunc != nil {
		return f.EmbedFunc(ctx, text)
	}
	vec := make([]float32, 1536)
	vec[0] = 1
	return EmbedResult{Vector: vec}, nil
}

func (f *Fake) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.CompleteFunc != nil {
		return f.CompleteFunc(ctx, systemPrompt, userPrompt)
	}
	return "What's the story behind that?", nil
}
