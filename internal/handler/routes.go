// Package handler registers every HTTP route against the rest.Server,
// the role goctl's generated routes.go plays in the teacher — hand-written
// here since this module runs without a goctl step.
package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/entativa/eid/internal/handler/auth"
	"github.com/entativa/eid/internal/handler/discovery"
	"github.com/entativa/eid/internal/handler/handles"
	"github.com/entativa/eid/internal/handler/sync"
	"github.com/entativa/eid/internal/handler/verification"
	"github.com/entativa/eid/internal/svc"
)

func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	named := func(name string, h http.HandlerFunc) http.HandlerFunc {
		return svcCtx.Metrics.Instrument(name, h).ServeHTTP
	}

	server.AddRoutes([]rest.Route{
		{Method: http.MethodPost, Path: "/v1/register", Handler: named("register", auth.RegisterHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/login", Handler: named("login", auth.LoginHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/login/mfa", Handler: named("login_mfa", auth.CompleteMFAHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/token/refresh", Handler: named("token_refresh", auth.RefreshHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/logout", Handler: named("logout", auth.LogoutHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/profile", Handler: named("update_profile", auth.UpdateProfileHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/password/change", Handler: named("change_password", auth.ChangePasswordHandler(svcCtx))},
	})

	server.AddRoutes([]rest.Route{
		{Method: http.MethodPost, Path: "/v1/handles/validate", Handler: named("handles_validate", handles.ValidateHandleHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/handles/transfer", Handler: named("handles_transfer_initiate", handles.InitiateTransferHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/handles/transfer/confirm", Handler: named("handles_transfer_confirm", handles.ConfirmTransferHandler(svcCtx))},
	})

	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/v1/verification/queue", Handler: named("verification_queue", verification.QueueHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/verification/approve", Handler: named("verification_approve", verification.ApproveHandler(svcCtx))},
	})

	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/v1/sync/jobs/:jobId", Handler: named("sync_job_status", sync.JobStatusHandler(svcCtx))},
		{Method: http.MethodPost, Path: "/v1/sync/jobs/requeue", Handler: named("sync_requeue", sync.RequeueHandler(svcCtx))},
	})

	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/.well-known/jwks.json", Handler: named("jwks", discovery.JWKSHandler(svcCtx))},
	})

	server.AddRoute(rest.Route{
		Method:  http.MethodGet,
		Path:    "/metrics",
		Handler: svcCtx.Metrics.Handler().ServeHTTP,
	})
}
