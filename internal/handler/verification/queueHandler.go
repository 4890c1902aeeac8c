package verification

import (
	"net/http"

	"github.com/entativa/eid/internal/logic/verification"
	"github.com/entativa/eid/internal/svc"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func QueueHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := verification.NewQueueLogic(r.Context(), svcCtx)
		resp, err := l.Queue()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
