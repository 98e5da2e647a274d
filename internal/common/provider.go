package common

import "strings"

// Provider identifies the third-party service an API key belongs to.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider converts s into a known Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", ErrUnknownProvider
	}
}

// MaskedKey is the display form of a stored key. The secret itself never
// leaves the server in list responses.
func MaskedKey(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "sk-...••••"
	case ProviderAnthropic:
		return "sk-ant-...••••"
	default:
		return "...••••"
	}
}
