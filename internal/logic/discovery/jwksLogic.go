package discovery

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/binary"

	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type JWKSLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewJWKSLogic(ctx context.Context, svcCtx *svc.ServiceContext) *JWKSLogic {
	return &JWKSLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// JWKS renders the signing key set's public keys for the jwks_uri
// discovery endpoint (spec §6).
func (l *JWKSLogic) JWKS() (*types.JWKSResponse, error) {
	set := l.svcCtx.Keys.JWKS()
	resp := &types.JWKSResponse{Keys: make([]types.JWK, 0, len(set.Keys))}
	for _, k := range set.Keys {
		pub, ok := k.Key.(*rsa.PublicKey)
		if !ok {
			continue
		}
		resp.Keys = append(resp.Keys, types.JWK{
			Kty: "RSA",
			Use: k.Use,
			Kid: k.KeyID,
			Alg: k.Algorithm,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(encodeExponent(pub.E)),
		})
	}
	return resp, nil
}

func encodeExponent(e int) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(e))
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}
