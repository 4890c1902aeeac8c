package sync

import (
	"net/http"

	"github.com/entativa/eid/internal/logic/sync"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func RequeueHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.JobRequeueRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := sync.NewRequeueLogic(r.Context(), svcCtx)
		if err := l.Requeue(&req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkCtx(r.Context(), w)
		}
	}
}
