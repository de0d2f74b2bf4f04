// Package service implements the business rules on top of the store:
// authorization scope, price snapshots, lifecycle transitions, and payment
// reconciliation. Handlers stay thin; everything stateful happens here.
package service

import (
	"context"
	"log"

	"github.com/Skywalker147/sorath-sub001/internal/cache"
	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/notify"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

type actorContextKey struct{}

// WithActor binds the authenticated actor to the request context. Every
// service method reads it back; a missing actor is an access error.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo     store.Repository
	items    cache.ItemCache
	notifier notify.Sender
	logger   *log.Logger
}

func New(repo store.Repository, items cache.ItemCache, notifier notify.Sender, logger *log.Logger) *Service {
	if items == nil {
		items = cache.NoopItemCache{}
	}
	if notifier == nil {
		notifier = notify.NoopSender{}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[service] ", log.LstdFlags)
	}
	return &Service{repo: repo, items: items, notifier: notifier, logger: logger}
}

func (s *Service) requireActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, store.ErrAccessDenied
	}
	return actor, nil
}

func (s *Service) requireOwner(ctx context.Context) (domain.Actor, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	if actor.Role != domain.RoleOwner {
		return domain.Actor{}, store.ErrAccessDenied
	}
	return actor, nil
}

func (s *Service) audit(actor domain.Actor, action string, entityID string) {
	s.logger.Printf("%s %s actor=%s role=%s", action, entityID, actor.Username, actor.Role)
}
