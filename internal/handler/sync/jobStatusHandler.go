package sync

import (
	"net/http"

	"github.com/entativa/eid/internal/logic/sync"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func JobStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.JobStatusRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := sync.NewJobStatusLogic(r.Context(), svcCtx)
		resp, err := l.JobStatus(req.JobID)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
