package context

import (
	"context"

	"github.com/julienschmidt/httprouter"

	"grievance/internal/platform/auth"
	"grievance/internal/platform/models"
)

type Key string

const (
	Claims Key = "claims"
	Actor  Key = "actor"
	Params Key = "params"
)

// ActorFrom returns the registered caller. ok is false for requests whose
// subject has no profile yet.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(Actor).(models.Actor)
	return actor, ok
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(Claims).(*auth.Claims)
	return claims, ok && claims != nil
}

func Param(ctx context.Context, name string) string {
	ps, _ := ctx.Value(Params).(httprouter.Params)
	return ps.ByName(name)
}
