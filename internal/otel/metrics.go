package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds all Kronus metric instruments.
type Metrics struct {
	ChatTurns           metric.Int64Counter
	PromptTokens        metric.Int64Histogram
	RepositoryTokens    metric.Int64Histogram
	CategoryFailures    metric.Int64Counter
	ProviderFallbacks   metric.Int64Counter
	GenerationDuration  metric.Float64Histogram
	MirrorSyncDuration  metric.Float64Histogram
	MirrorSyncFailures  metric.Int64Counter
	SkillActivations    metric.Int64Counter
	MalformedSkillDocs  metric.Int64Counter
	GenerationErrors    metric.Int64Counter
	StreamChunks        metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ChatTurns, err = meter.Int64Counter("kronus.chat.turns",
		metric.WithDescription("Chat turns handled"),
	)
	if err != nil {
		return nil, err
	}

	m.PromptTokens, err = meter.Int64Histogram("kronus.prompt.tokens",
		metric.WithDescription("Estimated system prompt size in tokens"),
	)
	if err != nil {
		return nil, err
	}

	m.RepositoryTokens, err = meter.Int64Histogram("kronus.repository.tokens",
		metric.WithDescription("Estimated repository section size in tokens"),
	)
	if err != nil {
		return nil, err
	}

	m.CategoryFailures, err = meter.Int64Counter("kronus.repository.category_failures",
		metric.WithDescription("Knowledge-category reads that failed and were omitted"),
	)
	if err != nil {
		return nil, err
	}

	m.ProviderFallbacks, err = meter.Int64Counter("kronus.llm.fallbacks",
		metric.WithDescription("Chat turns served by a fallback provider"),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram("kronus.llm.duration",
		metric.WithDescription("LLM generation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.MirrorSyncDuration, err = meter.Float64Histogram("kronus.mirror.duration",
		metric.WithDescription("Linear/Slite mirror refresh duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.MirrorSyncFailures, err = meter.Int64Counter("kronus.mirror.failures",
		metric.WithDescription("Mirror refresh failures"),
	)
	if err != nil {
		return nil, err
	}

	m.SkillActivations, err = meter.Int64Counter("kronus.skills.activations",
		metric.WithDescription("Skill activations and deactivations"),
	)
	if err != nil {
		return nil, err
	}

	m.MalformedSkillDocs, err = meter.Int64Counter("kronus.skills.malformed",
		metric.WithDescription("Skill documents excluded due to malformed metadata"),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationErrors, err = meter.Int64Counter("kronus.llm.errors",
		metric.WithDescription("Generation errors by category"),
	)
	if err != nil {
		return nil, err
	}

	m.StreamChunks, err = meter.Int64Counter("kronus.stream.chunks",
		metric.WithDescription("Streamed response chunks delivered"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
