package discovery

import (
	"net/http"

	"github.com/entativa/eid/internal/logic/discovery"
	"github.com/entativa/eid/internal/svc"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func JWKSHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := discovery.NewJWKSLogic(r.Context(), svcCtx)
		resp, err := l.JWKS()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
