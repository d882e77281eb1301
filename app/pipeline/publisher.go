package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lysyi3m/pin-drip/app/pin"
	"github.com/lysyi3m/pin-drip/app/pinterest"
	"github.com/lysyi3m/pin-drip/app/queue"
)

// PinCreator is the remote publish capability.
type PinCreator interface {
	CreatePin(ctx context.Context, accessToken string, req pinterest.CreatePinRequest) (*pinterest.Pin, error)
}

var _ PinCreator = (*pinterest.Client)(nil)

// Publisher calls the remote API once per item, one at a time, pausing
// between calls.
type Publisher struct {
	client PinCreator
	pacer  Pacer
}

func NewPublisher(client PinCreator, pacer Pacer) *Publisher {
	if pacer == nil {
		pacer = FixedDelay(0)
	}
	return &Publisher{client: client, pacer: pacer}
}

// Select returns the head of the scanned order, at most limit items.
func Select(items []queue.Item, limit int) []queue.Item {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// Publish attempts every item in order. A failed item never stops the loop.
// onPublished runs right after an item is acknowledged, before the pause.
// Only context cancellation during a pause ends the loop early.
func (p *Publisher) Publish(ctx context.Context, cfg Config, items []queue.Item, onPublished func(queue.Item, *ItemResult)) []ItemResult {
	resolver := pin.NewResolver(cfg.TitlePrefix)
	results := make([]ItemResult, 0, len(items))

	for i, item := range items {
		meta := resolver.Resolve(item, cfg.WebsiteURL)
		result := ItemResult{Name: item.Name, Title: meta.Title}

		created, err := p.publishItem(ctx, cfg, item, meta)
		if err != nil {
			slog.Error("Failed to publish pin", "item", item.Name, "error", err)
			result.Error = err.Error()
		} else {
			result.Published = true
			result.PinID = created.ID
			slog.Info("Pin published", "item", item.Name, "pin_id", created.ID, "title", meta.Title)
			if onPublished != nil {
				onPublished(item, &result)
			}
		}

		results = append(results, result)

		if i == len(items)-1 {
			break
		}
		if err := p.pacer.Pause(ctx); err != nil {
			slog.Warn("Run interrupted", "remaining", len(items)-i-1, "error", err)
			break
		}
	}

	return results
}

func (p *Publisher) publishItem(ctx context.Context, cfg Config, item queue.Item, meta pin.Metadata) (*pinterest.Pin, error) {
	image, err := os.ReadFile(item.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	req := pinterest.NewImagePinRequest(cfg.BoardID, image, item.ContentType, meta.Link, meta.Title, meta.Description)

	created, err := p.client.CreatePin(ctx, cfg.AccessToken, req)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = &pinterest.Pin{}
	}
	return created, nil
}
