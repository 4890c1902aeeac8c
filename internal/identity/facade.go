// Package identity is the identity façade (C9): the single entry point
// composing C1-C8 for registration, login, password management, and
// session/token issuance, grounded on the teacher's rpc logic-struct
// layout (one exported method per operation, a logx.Logger embedded for
// request-scoped logging) seen in services/auth/rpc/internal/logic.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/entativa/eid/internal/crypto"
	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/handleengine"
	"github.com/entativa/eid/internal/mfa"
	"github.com/entativa/eid/internal/oauth"
	"github.com/entativa/eid/internal/store"
	"github.com/entativa/eid/internal/syncengine"
)

// Facade composes every component into the operations spec §4.9 exposes
// over the wire: register, login, change-password, reset-password, logout.
type Facade struct {
	identities *store.IdentityRepo
	passwords  *store.PasswordRepo
	handles    *store.HandleRepo
	mfaRepo    *store.MFARepo

	handleEngine *handleengine.Engine
	sessions     *oauth.SessionManager
	refresh      *oauth.RefreshManager
	jwtIssuer    *oauth.JWTIssuer
	challenges   *mfa.ChallengeManager
	lockout      *AccountLockout
	syncQueue    *syncengine.Queue

	clientID        uuid.UUID // the first-party client id tokens are issued for
	targetPlatforms []string  // downstream platforms every outbox job fans out to
}

type Deps struct {
	Identities      *store.IdentityRepo
	Passwords       *store.PasswordRepo
	Handles         *store.HandleRepo
	MFARepo         *store.MFARepo
	HandleEngine    *handleengine.Engine
	Sessions        *oauth.SessionManager
	Refresh         *oauth.RefreshManager
	JWTIssuer       *oauth.JWTIssuer
	Challenges      *mfa.ChallengeManager
	Lockout         *AccountLockout
	SyncQueue       *syncengine.Queue
	ClientID        uuid.UUID
	TargetPlatforms []string
}

func NewFacade(d Deps) *Facade {
	return &Facade{
		identities:      d.Identities,
		passwords:       d.Passwords,
		handles:         d.Handles,
		mfaRepo:         d.MFARepo,
		handleEngine:    d.HandleEngine,
		sessions:        d.Sessions,
		refresh:         d.Refresh,
		jwtIssuer:       d.JWTIssuer,
		challenges:      d.Challenges,
		lockout:         d.Lockout,
		syncQueue:       d.SyncQueue,
		clientID:        d.ClientID,
		targetPlatforms: d.TargetPlatforms,
	}
}

// enqueueOutboxTx writes a sync job for entityType/entityID on tx, the
// same transaction as the domain write that triggered it (spec §2/§4.8/
// §4.9's outbox requirement). A nil syncQueue (e.g. in a façade built
// without downstream platforms configured) makes this a no-op rather than
// a hard dependency, so the façade still works in single-platform setups.
func (f *Facade) enqueueOutboxTx(ctx context.Context, tx *sqlx.Tx, entityType, entityID string, payload store.JSONMap) error {
	if f.syncQueue == nil || len(f.targetPlatforms) == 0 {
		return nil
	}
	_, err := f.syncQueue.EnqueueTx(ctx, tx, syncengine.EnqueueRequest{
		EntityType:      entityType,
		EntityID:        entityID,
		SourcePlatform:  "entativa-id",
		TargetPlatforms: f.targetPlatforms,
		Payload:         payload,
		Priority:        store.PriorityNormal,
	})
	return err
}

// RegisterRequest mirrors the teacher's auth.RegisterRequest shape,
// extended with the handle this module allocates up front.
type RegisterRequest struct {
	Email    string
	Password string
	Handle   string
	Device   store.DeviceDescriptor
}

// AuthResult mirrors the teacher's auth.AuthResponse, extended with a
// refresh token and session id for this module's longer-lived sessions.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	SessionID    uuid.UUID
	IdentityID   uuid.UUID
	MFARequired  bool
}

// Register validates the requested handle, then inserts the identity, its
// password credential, its handle and the outbox jobs announcing both, all
// within one transaction (spec §4.9): a handle-allocation failure after the
// identity/credential rows are staged rolls back cleanly instead of leaving
// an orphaned identity behind. An initial session is opened once the
// transaction commits, mirroring registerLogic.Register's create-then-
// issue-token shape.
func (f *Facade) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	result := f.handleEngine.Validate(ctx, req.Handle)
	if result.Status != handleengine.StatusAvailable {
		return nil, result.Err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := &store.Identity{
		ID:                 uuid.New(),
		Email:              req.Email,
		Status:             store.IdentityPendingVerification,
		VerificationStatus: store.VerificationNone,
		Versioned:          store.Versioned{CreatedAt: now, UpdatedAt: now},
	}
	handle := &store.Handle{
		ID:              uuid.New(),
		Handle:          req.Handle,
		OwnerIdentityID: id.ID,
		Status:          store.HandleActive,
		Versioned:       store.Versioned{CreatedAt: now, UpdatedAt: now},
	}

	err = f.identities.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := f.identities.CreateTx(ctx, tx, id); err != nil {
			return err
		}

		cred := &store.PasswordCredential{
			IdentityID: id.ID,
			Algorithm:  "argon2id",
			Hash:       hash,
			ChangedAt:  now,
		}
		if err := f.passwords.UpsertTx(ctx, tx, cred); err != nil {
			return err
		}

		if err := f.handles.CreateTx(ctx, tx, handle); err != nil {
			return err
		}

		id.HandleID = &handle.ID
		id.UpdatedAt = time.Now().UTC()
		if err := f.identities.UpdateTx(ctx, tx, id); err != nil {
			return err
		}

		if err := f.enqueueOutboxTx(ctx, tx, syncengine.EntityIdentity, id.ID.String(), store.JSONMap{
			"email":  id.Email,
			"handle": handle.Handle,
			"status": string(id.Status),
		}); err != nil {
			return err
		}
		return f.enqueueOutboxTx(ctx, tx, syncengine.EntityHandle, handle.ID.String(), store.JSONMap{
			"handle":            handle.Handle,
			"owner_identity_id": handle.OwnerIdentityID.String(),
			"status":            string(handle.Status),
		})
	})
	if err != nil {
		return nil, err
	}
	_ = f.handleEngine.Invalidate(ctx, req.Handle)

	return f.issueSession(ctx, id, req.Device, false)
}

// UpdateDisplayName changes identity's replicated display name and enqueues
// the outbox job announcing the change, both within one transaction (spec
// §4.9 and scenario 6: successive display-name updates must be observed
// downstream in commit order).
func (f *Facade) UpdateDisplayName(ctx context.Context, identityID uuid.UUID, displayName string) error {
	id, err := f.identities.GetByID(ctx, identityID)
	if err != nil {
		return err
	}
	id.DisplayName = &displayName
	id.UpdatedAt = time.Now().UTC()

	return f.identities.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := f.identities.UpdateTx(ctx, tx, id); err != nil {
			return err
		}
		return f.enqueueOutboxTx(ctx, tx, syncengine.EntityIdentity, id.ID.String(), store.JSONMap{
			"display_name": displayName,
		})
	})
}

// LoginRequest mirrors the teacher's auth.LoginRequest.
type LoginRequest struct {
	Email    string
	Password string
	Device   store.DeviceDescriptor
}

// Login authenticates by email/password, opportunistically re-hashing the
// stored credential when its parameters are outdated (spec §3), and stops
// short of issuing tokens when MFA is enabled — the caller then drives the
// challenge via internal/mfa and calls CompleteMFALogin.
func (f *Facade) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	logger := logx.WithContext(ctx)

	id, err := f.identities.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errs.New(errs.InvalidCredentials, "invalid email or password")
	}
	if err := f.lockout.Check(id); err != nil {
		return nil, err
	}

	cred, err := f.passwords.GetByIdentity(ctx, id.ID)
	if err != nil {
		return nil, errs.New(errs.InvalidCredentials, "invalid email or password")
	}

	outcome, err := crypto.VerifyPassword(req.Password, cred.Algorithm, cred.Hash)
	if err != nil {
		return nil, err
	}
	if outcome == crypto.Mismatch {
		if lockErr := f.lockout.RecordFailure(ctx, id); lockErr != nil {
			logger.Errorf("identity: record login failure: %v", lockErr)
		}
		return nil, errs.New(errs.InvalidCredentials, "invalid email or password")
	}
	if outcome == crypto.OKNeedsRehash {
		f.rehash(ctx, id.ID, req.Password, cred)
	}
	if err := f.lockout.RecordSuccess(ctx, id); err != nil {
		logger.Errorf("identity: clear login lockout: %v", err)
	}

	if id.MFAEnabled {
		return &AuthResult{IdentityID: id.ID, MFARequired: true}, nil
	}
	return f.issueSession(ctx, id, req.Device, false)
}

// CompleteMFALogin finishes a login that Login flagged as MFARequired,
// called once the caller's chosen MFA method has consumed its challenge.
func (f *Facade) CompleteMFALogin(ctx context.Context, identityID uuid.UUID, methodID uuid.UUID, device store.DeviceDescriptor) (*AuthResult, error) {
	id, err := f.identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	result, err := f.issueSession(ctx, id, device, true)
	if err != nil {
		return nil, err
	}
	if err := f.sessions.AssertMFA(ctx, result.SessionID, methodID); err != nil {
		logx.WithContext(ctx).Errorf("identity: mark session mfa-asserted: %v", err)
	}
	return result, nil
}

func (f *Facade) rehash(ctx context.Context, identityID uuid.UUID, password string, cred *store.PasswordCredential) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		logx.WithContext(ctx).Errorf("identity: rehash password: %v", err)
		return
	}
	cred.Algorithm = "argon2id"
	cred.Hash = hash
	cred.RotationCount++
	cred.ChangedAt = time.Now().UTC()
	if err := f.passwords.Upsert(ctx, cred); err != nil {
		logx.WithContext(ctx).Errorf("identity: persist rehashed password: %v", err)
	}
}

func (f *Facade) issueSession(ctx context.Context, id *store.Identity, device store.DeviceDescriptor, mfaAsserted bool) (*AuthResult, error) {
	sess, err := f.sessions.Open(ctx, id.ID, f.clientID.String(), device)
	if err != nil {
		return nil, err
	}
	scopes := []string{"openid", "profile"}
	access, err := f.jwtIssuer.IssueAccessToken(id.ID, sess.ID, f.clientID, scopes)
	if err != nil {
		return nil, err
	}
	refresh, err := f.refresh.IssueInitial(ctx, id.ID, f.clientID, sess.ID, scopes)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(oauth.SessionTTL.Seconds()),
		SessionID:    sess.ID,
		IdentityID:   id.ID,
	}, nil
}

// ChangePassword verifies the current password before writing a new one,
// bumping the rotation counter (spec §3).
func (f *Facade) ChangePassword(ctx context.Context, identityID uuid.UUID, currentPassword, newPassword string) error {
	cred, err := f.passwords.GetByIdentity(ctx, identityID)
	if err != nil {
		return err
	}
	outcome, err := crypto.VerifyPassword(currentPassword, cred.Algorithm, cred.Hash)
	if err != nil {
		return err
	}
	if outcome == crypto.Mismatch {
		return errs.New(errs.InvalidCredentials, "current password is incorrect")
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	cred.Algorithm = "argon2id"
	cred.Hash = hash
	cred.RotationCount++
	cred.ChangedAt = time.Now().UTC()
	return f.passwords.Upsert(ctx, cred)
}

// Logout revokes the session and every token minted under it.
func (f *Facade) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return f.sessions.Revoke(ctx, sessionID)
}

// SetBadge implements verification.IdentityBadger, applying an approved
// verification request's badge to the identity.
func (f *Facade) SetBadge(ctx context.Context, id store.Identity, badge string) error {
	id.VerificationBadge = store.Badge(badge)
	id.VerificationStatus = store.VerificationVerified
	id.UpdatedAt = time.Now().UTC()
	return f.identities.Update(ctx, &id)
}
