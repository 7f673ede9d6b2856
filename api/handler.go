package api

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/notifications"
	"github.com/medisys-health/diagnostics/reports/query"
	"github.com/medisys-health/diagnostics/users"
)

type Handler struct {
	query         *query.Engine
	users         *users.Service
	notifications notifications.Queue
	logger        *zap.SugaredLogger
	now           func() time.Time
}

var _ ServerInterface = &Handler{}

type Params struct {
	fx.In

	Query         *query.Engine
	Users         *users.Service
	Notifications notifications.Queue
	Logger        *zap.SugaredLogger
}

func NewHandler(p Params) *Handler {
	return &Handler{
		query:         p.Query,
		users:         p.Users,
		notifications: p.Notifications,
		logger:        p.Logger,
		now:           time.Now,
	}
}

// accessContext returns the access context resolved by the auth middleware
func accessContext(ctx context.Context) (auth.AccessContext, error) {
	data := auth.GetAuthData(ctx)
	if data == nil {
		return auth.AccessContext{}, auth.ErrUnauthenticated
	}
	return data.Access, nil
}
