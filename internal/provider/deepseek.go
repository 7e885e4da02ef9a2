package provider

const defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

// deepseekModels maps friendly names to DeepSeek model IDs.
var deepseekModels = map[string]string{
	"deepseek-chat":     "deepseek-chat",
	"deepseek-reasoner": "deepseek-reasoner",
}

// DeepSeekProvider targets the DeepSeek API. DeepSeek exposes an
// OpenAI-compatible API, so the underlying SDK client is reused.
type DeepSeekProvider struct {
	*OpenAIProvider
}

// NewDeepSeekProvider creates a provider targeting the DeepSeek API.
func NewDeepSeekProvider(cfg DeepSeekConfig, opts GenerateOptions) *DeepSeekProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}

	inner := newOpenAICompatible("deepseek", OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   resolveModel(cfg.Model, deepseekModels),
		BaseURL: baseURL,
	}, opts)

	return &DeepSeekProvider{OpenAIProvider: inner}
}
