package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
)

// Dispatcher fans one post out to its target platforms. Every platform gets
// exactly one PublishResult; a failure on one platform never aborts the
// others.
type Dispatcher struct {
	registry       *platform.Registry
	resolver       CredentialResolver
	limiter        *PlatformLimiter
	publishTimeout time.Duration
	maxConcurrent  int
}

func NewDispatcher(
	registry *platform.Registry,
	resolver CredentialResolver,
	limiter *PlatformLimiter,
	publishTimeout time.Duration,
	maxConcurrent int) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		registry:       registry,
		resolver:       resolver,
		limiter:        limiter,
		publishTimeout: publishTimeout,
		maxConcurrent:  maxConcurrent,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, post *models.Post) []platform.PublishResult {
	content := platform.Content{
		Caption:   post.Caption,
		Hashtags:  post.Hashtags,
		MediaURLs: post.MediaURLs,
	}

	results := make([]platform.PublishResult, len(post.Platforms))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, d.maxConcurrent)

	for i, name := range post.Platforms {
		p, ok := platform.Parse(name)
		if !ok {
			results[i] = platform.Failed(platform.Platform(name), platform.FailureRejected, "unknown platform")
			continue
		}

		// Capability gate first: no network call for platforms the service
		// cannot post to.
		capability, ok := platform.CapabilityOf(p)
		if !ok || capability.Automation != platform.AutomationAuto {
			results[i] = platform.Failed(p, platform.FailureNotAutomatable,
				fmt.Sprintf("%s does not support automatic posting", p))
			continue
		}
		publisher, ok := d.registry.PublisherFor(p)
		if !ok {
			results[i] = platform.Failed(p, platform.FailureNotAutomatable,
				fmt.Sprintf("no publisher registered for %s", p))
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, p platform.Platform, publisher platform.Publisher) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = d.publishOne(ctx, post.BrandID, p, capability, publisher, content)
		}(i, p, publisher)
	}

	wg.Wait()
	return results
}

func (d *Dispatcher) publishOne(ctx context.Context, brandID int64, p platform.Platform, capability platform.Capability, publisher platform.Publisher, content platform.Content) platform.PublishResult {
	cred, err := d.resolver.Resolve(ctx, brandID, p)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return platform.Failed(p, platform.FailureNotConfigured,
				fmt.Sprintf("brand %d has no usable %s credential", brandID, p))
		}
		return platform.Failed(p, platform.FailureTransient, err.Error())
	}

	// Content gates come after the credential lookup: an unconnected
	// platform reports not_configured, not a content problem.
	if capability.RequiresMedia && len(content.MediaURLs) == 0 {
		return platform.Failed(p, platform.FailureRejected,
			fmt.Sprintf("%s requires at least one media item", p))
	}
	if capability.MaxCaptionLen > 0 && utf8.RuneCountInString(platform.RenderCaption(content)) > capability.MaxCaptionLen {
		return platform.Failed(p, platform.FailureRejected,
			fmt.Sprintf("caption exceeds %s limit of %d characters", p, capability.MaxCaptionLen))
	}

	if err := d.limiter.Wait(ctx, brandID, p); err != nil {
		return platform.Failed(p, platform.FailureTransient,
			fmt.Sprintf("rate limit wait aborted: %v", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	// The adapter is expected to honor the context, but a misbehaving one
	// must not block the worker past the deadline.
	resultCh := make(chan platform.PublishResult, 1)
	go func() {
		resultCh <- publisher.Publish(callCtx, content, cred)
	}()

	select {
	case result := <-resultCh:
		return result
	case <-callCtx.Done():
		return platform.Failed(p, platform.FailureTransient,
			fmt.Sprintf("publish to %s timed out after %s", p, d.publishTimeout))
	}
}

// Aggregate applies the multi-platform success policy: published when at
// least one platform succeeded, failed only when every platform failed.
func Aggregate(results []platform.PublishResult) string {
	for _, r := range results {
		if r.Success {
			return models.PostStatusPublished
		}
	}
	return models.PostStatusFailed
}
