package usecase

import (
	"context"
	"time"

	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

const mediaDeleteTimeout = 15 * time.Second

type IContentUsecase interface {
	Delete(ctx context.Context, userID, contentID string) error
	IncrementLikes(ctx context.Context, contentID string) error
}

type contentUsecase struct {
	contentRepo repository.IContent
	mediaStore  repository.IMediaStore // optional
}

func NewContentUsecase(contentRepo repository.IContent, mediaStore repository.IMediaStore) IContentUsecase {
	return &contentUsecase{contentRepo: contentRepo, mediaStore: mediaStore}
}

// Delete removes a content item owned by the caller. The metadata record is
// the single source of truth for "is this content gone": it is deleted
// first. A failed media-object delete afterwards is logged but never
// surfaced to the caller.
func (u *contentUsecase) Delete(ctx context.Context, userID, contentID string) error {
	if userID == "" {
		return model.ErrAuthenticationRequired
	}
	content, err := u.contentRepo.Get(ctx, contentID)
	if err != nil {
		return err
	}
	if content.UserID != userID {
		return model.ErrForbidden
	}

	if err := u.contentRepo.Delete(ctx, contentID); err != nil {
		return err
	}

	if u.mediaStore != nil && content.MediaRef != "" {
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mediaDeleteTimeout)
		defer cancel()
		if err := u.mediaStore.Delete(deleteCtx, content.MediaRef); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{
				"content_id": contentID,
				"media_ref":  content.MediaRef,
				"error":      err,
			}).Warn("media object delete failed; metadata already removed")
		}
	}
	return nil
}

func (u *contentUsecase) IncrementLikes(ctx context.Context, contentID string) error {
	return u.contentRepo.IncrementLikes(ctx, contentID)
}
