package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/munitransit/permits-backend/api/middleware"
	"github.com/munitransit/permits-backend/internal/history"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
)

// actorFromContext rebuilds the audit actor from the claims the auth
// middleware injected. Falls back to the email when the name is blank.
func actorFromContext(ctx context.Context) history.Actor {
	actor := history.Actor{Name: middleware.ActorNameFromContext(ctx)}
	if actor.Name == "" {
		actor.Name = middleware.ActorEmailFromContext(ctx)
	}
	if raw := middleware.UserIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.ID = &id
		}
	}
	return actor
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
