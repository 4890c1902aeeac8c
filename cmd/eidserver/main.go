// Code scaffolded in the teacher's goctl shape. Safe to edit.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/entativa/eid/internal/config"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/handler"
	"github.com/entativa/eid/internal/svc"
)

var configFile = flag.String("f", "etc/eidserver.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	httpx.SetErrorHandlerCtx(func(ctx context.Context, err error) (int, any) {
		kind := errs.KindOf(err)
		return errs.HTTPStatus(kind), map[string]string{
			"error":   string(kind),
			"message": err.Error(),
		}
	})

	server := rest.MustNewServer(c.RestConf, rest.WithCors("*"))
	defer server.Stop()

	svcCtx, err := svc.NewServiceContext(c)
	if err != nil {
		panic(err)
	}
	handler.RegisterHandlers(server, svcCtx)

	fmt.Printf("Starting entativa id server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
