package narration

import (
	"fmt"
	"strings"
	"time"

	"raisingsim/internal/game"
)

const (
	ProviderNone   = "none"
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

type Options struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New returns the narrator for the configured provider, or nil when narration
// is switched off.
func New(opts Options) (game.Narrator, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderHTTP:
		return NewWorkerClient(opts.Timeout), nil
	case ProviderOpenAI:
		return NewChatClient(opts.APIKey, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown narration provider %q", opts.Provider)
	}
}
