package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"social-hub/domain/model"
	"social-hub/domain/registry"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
	"social-hub/infrastructure/pubsub"
	"social-hub/infrastructure/servicebus"
)

const publishAttemptTimeout = 30 * time.Second

type IPublishUsecase interface {
	Publish(ctx context.Context, userID, contentID string, platforms []string) ([]model.PublishAttemptResult, error)
}

// Broadcaster pushes one attempt's outcome to live subscribers.
type Broadcaster func(userID, contentID string, result model.PublishAttemptResult)

type publishUsecase struct {
	registry    *registry.Registry
	adapters    map[string]repository.ISocialPlatform
	connRepo    repository.IConnection
	contentRepo repository.IContent
	events      pubsub.IPublishEvents     // optional
	busEvents   servicebus.IPublishEvents // optional
	broadcast   Broadcaster               // optional
}

func NewPublishUsecase(
	reg *registry.Registry,
	adapters map[string]repository.ISocialPlatform,
	connRepo repository.IConnection,
	contentRepo repository.IContent,
) *publishUsecase {
	return &publishUsecase{
		registry:    reg,
		adapters:    adapters,
		connRepo:    connRepo,
		contentRepo: contentRepo,
	}
}

func (u *publishUsecase) WithEvents(events pubsub.IPublishEvents, busEvents servicebus.IPublishEvents) *publishUsecase {
	u.events = events
	u.busEvents = busEvents
	return u
}

func (u *publishUsecase) WithBroadcaster(b Broadcaster) *publishUsecase {
	u.broadcast = b
	return u
}

// publishedEvent is the payload emitted to the brokers after a batch.
type publishedEvent struct {
	UserID       string                       `json:"user_id"`
	ContentID    string                       `json:"content_id"`
	AllSucceeded bool                         `json:"all_succeeded"`
	Results      []model.PublishAttemptResult `json:"results"`
	PublishedAt  time.Time                    `json:"published_at"`
}

// Publish dispatches one attempt per target platform concurrently and
// returns every attempt's outcome. A single platform's failure never aborts
// its siblings and never turns into a failure of the whole call; only
// malformed input (empty or unknown target set) rejects the batch up front.
func (u *publishUsecase) Publish(ctx context.Context, userID, contentID string, platforms []string) ([]model.PublishAttemptResult, error) {
	if userID == "" {
		return nil, model.ErrAuthenticationRequired
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: platforms required", model.ErrInvalidRequest)
	}
	seen := make(map[string]struct{}, len(platforms))
	targets := make([]string, 0, len(platforms))
	for _, p := range platforms {
		if !u.registry.Supported(p) {
			return nil, fmt.Errorf("%w: unsupported platform %q", model.ErrInvalidRequest, p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		targets = append(targets, p)
	}

	content, err := u.contentRepo.Get(ctx, contentID)
	if err != nil {
		// Failures before dispatch are reported as their own pseudo-result so
		// the caller can tell structural failures from per-platform ones.
		result := model.PublishAttemptResult{
			Platform: model.OrchestrationPlatform,
			Error:    err.Error(),
		}
		return []model.PublishAttemptResult{result}, nil
	}
	if content.UserID != userID {
		return nil, model.ErrForbidden
	}

	// One slot per platform; each worker writes only its own index and always
	// returns nil, so no attempt can cancel or starve a sibling.
	results := make([]model.PublishAttemptResult, len(targets))
	var g errgroup.Group
	for i, platform := range targets {
		g.Go(func() error {
			results[i] = u.attempt(ctx, content, platform)
			if u.broadcast != nil {
				u.broadcast(userID, contentID, results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	// The attempts ran detached, so their outcome is folded and emitted even
	// when the caller has gone away by the time the join returns.
	tailCtx := context.WithoutCancel(ctx)
	u.recordStatuses(tailCtx, contentID, results)
	u.emitEvent(tailCtx, userID, contentID, results)

	return results, nil
}

func (u *publishUsecase) attempt(ctx context.Context, content *model.ContentItem, platform string) model.PublishAttemptResult {
	result := model.PublishAttemptResult{Platform: platform}

	conn, err := u.connRepo.Get(ctx, content.UserID, platform)
	if err != nil {
		if errors.Is(err, model.ErrNotConnected) {
			result.Error = model.ErrNotConnected.Error()
		} else {
			result.Error = err.Error()
		}
		return result
	}

	adapter, ok := u.adapters[platform]
	if !ok {
		result.Error = fmt.Sprintf("no adapter for platform %q", platform)
		return result
	}

	// Detached from the caller: an aborted request must not kill an in-flight
	// platform call halfway through, and a hung platform resolves as a failed
	// attempt once the timeout elapses.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishAttemptTimeout)
	defer cancel()

	postID, err := adapter.Publish(callCtx, conn.AccessToken, repository.PublishContent{
		MediaRef:    content.MediaRef,
		Title:       content.Title,
		Description: content.Description,
	})
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"platform":   platform,
			"content_id": content.ID,
			"error":      err,
		}).Warn("publish attempt failed")
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.ExternalPostID = postID
	return result
}

func (u *publishUsecase) recordStatuses(ctx context.Context, contentID string, results []model.PublishAttemptResult) {
	status := make(map[string]string, len(results))
	for _, r := range results {
		if r.Success {
			status[r.Platform] = "published"
		} else {
			status[r.Platform] = "failed"
		}
	}
	if err := u.contentRepo.SetPlatformStatus(ctx, contentID, status); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"content_id": contentID,
			"error":      err,
		}).Warn("failed to record platform statuses")
	}
}

func (u *publishUsecase) emitEvent(ctx context.Context, userID, contentID string, results []model.PublishAttemptResult) {
	if u.events == nil && u.busEvents == nil {
		return
	}
	payload, err := json.Marshal(publishedEvent{
		UserID:       userID,
		ContentID:    contentID,
		AllSucceeded: model.AllSucceeded(results),
		Results:      results,
		PublishedAt:  time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if u.events != nil {
		if _, err := u.events.Publish(ctx, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("pubsub publish event failed")
		}
	}
	if u.busEvents != nil {
		if err := u.busEvents.SendMessage(ctx, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("service bus publish event failed")
		}
	}
}
