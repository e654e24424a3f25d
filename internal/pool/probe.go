package pool

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/pkg/adaptor"
)

const (
	probeTimeout     = 30 * time.Second
	probeConcurrency = 4
)

// defaultCheckModels are the probe models used when an entry has no
// checkModelName configured.
var defaultCheckModels = map[protocol.Protocol]string{
	protocol.ProtocolOpenAIChat:      "gpt-4o-mini",
	protocol.ProtocolOpenAIResponses: "gpt-4o-mini",
	protocol.ProtocolAnthropic:       "claude-3-5-haiku-20241022",
	protocol.ProtocolGemini:          "gemini-2.0-flash",
}

// probeRequest is the minimal generation used to check an entry's health.
func probeRequest(model string) *protocol.ChatCompletionRequest {
	maxTokens := 16
	return &protocol.ChatCompletionRequest{
		Model:     model,
		Messages:  []protocol.ChatMessage{{Role: "user", Content: protocol.TextContent("Hi")}},
		MaxTokens: &maxTokens,
	}
}

// Probe health-checks every checkHealthEnabled entry of a kind in parallel,
// capped at probeConcurrency in-flight probes, and updates entry health
// from the outcomes.
func (p *Pool) Probe(ctx context.Context, kind string) {
	entries := p.Entries(kind)
	sem := semaphore.NewWeighted(probeConcurrency)
	var wg sync.WaitGroup

	for _, entry := range entries {
		if !entry.CheckHealthEnabled || entry.IsDisabled {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(entry ProviderEntry) {
			defer wg.Done()
			defer sem.Release(1)
			err := p.probeEntry(ctx, &entry)
			p.markProbeResult(kind, entry.UUID, err)
			if err != nil {
				logrus.Warnf("probe failed for %s (%s): %v", entry.UUID, kind, err)
			} else {
				logrus.Debugf("probe ok for %s (%s)", entry.UUID, kind)
			}
		}(entry)
	}
	wg.Wait()
}

func (p *Pool) probeEntry(ctx context.Context, entry *ProviderEntry) error {
	adapterClient, err := p.Adapter(entry)
	if err != nil {
		return err
	}
	proto := protocol.ProtocolOf(entry.Kind)

	model := entry.CheckModelName
	if model == "" {
		model = defaultCheckModels[proto]
	}

	body, err := adaptor.OpenAIRequestToUpstreamBody(probeRequest(model), proto, model)
	if err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, err = adapterClient.GenerateContent(probeCtx, model, body)
	return err
}
