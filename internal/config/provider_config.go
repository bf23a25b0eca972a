package config

type ProviderConfig interface {
	GetProviderBaseURL() string
	GetProviderAPIKey() string
	GetMockProvider() bool
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetProviderBaseURL() string {
	return GetEnv("YOUVERIFY_BASE_URL", "https://api.youverify.co/v2")
}

func (Provider) GetProviderAPIKey() string {
	return GetEnv("YOUVERIFY_API_KEY", "")
}

// GetMockProvider reports whether verification calls should be served by the
// deterministic in-memory provider instead of the live Youverify API.
func (Provider) GetMockProvider() bool {
	return GetEnv("MOCK_YOUVERIFY", "true") == "true"
}
