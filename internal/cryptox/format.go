package cryptox

import (
	"regexp"

	"github.com/roomify-app/roomify/internal/common"
)

var (
	openAILegacyKey  = regexp.MustCompile(`^sk-[a-zA-Z0-9]{48}$`)
	openAIProjectKey = regexp.MustCompile(`^sk-proj-[a-zA-Z0-9_-]{95,}$`)
	anthropicKey     = regexp.MustCompile(`^sk-ant-[a-zA-Z0-9\-_]{95,}$`)
)

// ValidateFormat reports whether secret has the shape of a key issued by provider.
// Unknown providers never validate.
func ValidateFormat(secret string, provider common.Provider) bool {
	switch provider {
	case common.ProviderOpenAI:
		return openAILegacyKey.MatchString(secret) || openAIProjectKey.MatchString(secret)
	case common.ProviderAnthropic:
		return anthropicKey.MatchString(secret)
	default:
		return false
	}
}
