// Package mock provides a test double for the transcriber.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/aimeet/aimeet/pkg/provider/transcriber"
)

// Provider is a mock implementation of transcriber.Provider.
// Responses is keyed by file path; an unlisted path returns the Default
// transcript. Set Err to inject a failure on every call.
type Provider struct {
	mu sync.Mutex

	// Responses maps audio file paths to the transcript to return.
	Responses map[string]*transcriber.Transcript

	// Default is returned for paths absent from Responses.
	Default *transcriber.Transcript

	// Err, if non-nil, is returned as the error from TranscribeFile.
	Err error

	// Calls records every path passed to TranscribeFile in order.
	Calls []string
}

// TranscribeFile records the call and returns the configured transcript.
func (p *Provider) TranscribeFile(ctx context.Context, path string) (*transcriber.Transcript, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, path)
	if p.Err != nil {
		return nil, p.Err
	}
	if t, ok := p.Responses[path]; ok {
		return t, nil
	}
	return p.Default, nil
}

var _ transcriber.Provider = (*Provider)(nil)
