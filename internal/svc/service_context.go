// Package svc wires every component (C1-C9) into a single ServiceContext,
// the same role the teacher's internal/svc.ServiceContext plays for its
// rpc clients — except every dependency here is a concrete in-process
// component rather than a zrpc client, since this module has no
// microservice split.
package svc

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/cachekv"
	"github.com/entativa/eid/internal/config"
	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/handleengine"
	"github.com/entativa/eid/internal/identity"
	"github.com/entativa/eid/internal/mfa"
	"github.com/entativa/eid/internal/oauth"
	"github.com/entativa/eid/internal/platform"
	"github.com/entativa/eid/internal/store"
	"github.com/entativa/eid/internal/syncengine"
	"github.com/entativa/eid/internal/telemetry"
	"github.com/entativa/eid/internal/verification"
	"github.com/entativa/eid/third_party/cache"
	"github.com/entativa/eid/third_party/database"
	"github.com/entativa/eid/third_party/search"
)

// FirstPartyClientID identifies the web/mobile first-party OAuth client
// tokens are issued for from the identity façade's own register/login
// endpoints, as opposed to third-party clients that go through the full
// authorization-code flow. Seeded by cmd/eidseed under this same id.
var FirstPartyClientID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// ServiceContext composes every repository and component cmd/eidserver's
// handlers need.
type ServiceContext struct {
	Config config.Config

	DB    *store.Base
	Cache cachekv.Cache
	Meili *search.MeiliSearchClient

	Keys *crypto.SigningKeySet
	Ring *crypto.KeyRing

	Identities *store.IdentityRepo
	Passwords  *store.PasswordRepo
	Handles    *store.HandleRepo
	MFARepo    *store.MFARepo
	Sessions   *store.SessionRepo
	Tokens     *store.TokenRepo
	Verifs     *store.VerificationRepo
	SyncJobs   *store.SyncJobRepo
	Clients    *store.OAuthClientRepo

	HandleEngine   *handleengine.Engine
	ClaimManager   *handleengine.ClaimManager
	TransferMgr    *handleengine.TransferManager
	JWTIssuer      *oauth.JWTIssuer
	SessionMgr     *oauth.SessionManager
	Refresh        *oauth.RefreshManager
	AuthCodes      *oauth.AuthCodeIssuer
	ClientRegistry *oauth.ClientRegistry
	RateLimiter    *oauth.RateLimiter
	Challenges     *mfa.ChallengeManager
	MFALockout     *mfa.Lockout
	Pipeline       *verification.Pipeline
	VerifQueue     *verification.Queue
	SyncQueue      *syncengine.Queue
	SyncAdmin      *syncengine.Admin

	Lockout *identity.AccountLockout
	Facade  *identity.Facade

	Metrics *telemetry.Metrics
}

// NewServiceContext builds every component from c, the way
// database.NewPostgresConnection/cache.NewRedisConnection/
// search.NewMeiliSearchConnection already do for their own concern.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	db, err := database.NewPostgresConnection(c.Database)
	if err != nil {
		return nil, err
	}
	rds, err := cache.NewRedisConnection(c.Redis)
	if err != nil {
		return nil, err
	}
	meili, err := search.NewMeiliSearchConnection(c.MeiliSearch)
	if err != nil {
		return nil, err
	}

	base := store.NewBase(db)
	kv := cachekv.New(rds)

	keys, err := crypto.GenerateSigningKey(c.Crypto.SigningKeyID)
	if err != nil {
		return nil, err
	}

	masterKey, err := hex.DecodeString(c.Crypto.MasterKeyHex)
	if err != nil {
		return nil, errs.Newf(errs.Internal, "decode crypto master key: %v", err)
	}
	ring, err := crypto.NewKeyRing(c.Crypto.MasterKeyID, map[string][]byte{c.Crypto.MasterKeyID: masterKey})
	if err != nil {
		return nil, err
	}

	identities := store.NewIdentityRepo(base)
	passwords := store.NewPasswordRepo(base)
	handles := store.NewHandleRepo(base)
	mfaRepo := store.NewMFARepo(base)
	sessions := store.NewSessionRepo(base)
	tokens := store.NewTokenRepo(base)
	verifs := store.NewVerificationRepo(base)
	syncJobs := store.NewSyncJobRepo(base)
	clients := store.NewOAuthClientRepo(base)

	handleEngine := handleengine.NewEngine(handles, kv)
	pipeline := verification.NewPipeline(verifs)
	claimMgr := handleengine.NewClaimManager(handles, pipeline)
	syncQueue := syncengine.NewQueue(syncJobs)
	transferMgr := handleengine.NewTransferManager(handles, syncQueue)

	jwtIssuer := oauth.NewJWTIssuer(oauth.IssuerConfig{
		Issuer:   c.OAuth.Issuer,
		Keys:     keys,
		TokenTTL: c.OAuth.AccessTokenTTL,
	})
	sessionMgr := oauth.NewSessionManager(sessions)
	refreshMgr := oauth.NewRefreshManager(tokens, kv)
	authCodes := oauth.NewAuthCodeIssuer(tokens)
	clientRegistry := oauth.NewClientRegistry(clients)
	rateLimiter := oauth.NewRateLimiter(kv)

	challenges := mfa.NewChallengeManager(mfaRepo, c.MFA.MaxAttempts)
	mfaLockout := mfa.NewLockout(kv, mfaRepo, c.MFA.MaxFailed, time.Duration(c.MFA.CooldownMins)*time.Minute)

	verifQueue := verification.NewQueue(verifs, meili)

	syncAdmin := syncengine.NewAdmin(syncJobs, syncQueue)

	accountLockout := identity.NewAccountLockout(identities, c.Lockout.MaxLoginAttempts, c.Lockout.LockoutDuration)

	platforms, err := platform.NewRegistry(c.Platforms)
	if err != nil {
		return nil, err
	}

	facade := identity.NewFacade(identity.Deps{
		Identities:      identities,
		Passwords:       passwords,
		Handles:         handles,
		MFARepo:         mfaRepo,
		HandleEngine:    handleEngine,
		Sessions:        sessionMgr,
		Refresh:         refreshMgr,
		JWTIssuer:       jwtIssuer,
		Challenges:      challenges,
		Lockout:         accountLockout,
		SyncQueue:       syncQueue,
		ClientID:        FirstPartyClientID,
		TargetPlatforms: platforms.Names(),
	})

	return &ServiceContext{
		Config:         c,
		DB:             base,
		Cache:          kv,
		Meili:          meili,
		Keys:           keys,
		Ring:           ring,
		Identities:     identities,
		Passwords:      passwords,
		Handles:        handles,
		MFARepo:        mfaRepo,
		Sessions:       sessions,
		Tokens:         tokens,
		Verifs:         verifs,
		SyncJobs:       syncJobs,
		Clients:        clients,
		HandleEngine:   handleEngine,
		ClaimManager:   claimMgr,
		TransferMgr:    transferMgr,
		JWTIssuer:      jwtIssuer,
		SessionMgr:     sessionMgr,
		Refresh:        refreshMgr,
		AuthCodes:      authCodes,
		ClientRegistry: clientRegistry,
		RateLimiter:    rateLimiter,
		Challenges:     challenges,
		MFALockout:     mfaLockout,
		Pipeline:       pipeline,
		VerifQueue:     verifQueue,
		SyncQueue:      syncQueue,
		SyncAdmin:      syncAdmin,
		Lockout:        accountLockout,
		Facade:         facade,
		Metrics:        telemetry.New(),
	}, nil
}
