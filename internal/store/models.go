// Package store is the persistence adapter (C3): typed repositories per
// entity over *sqlx.DB, with optimistic concurrency on each row's version
// column. Grounded on the teacher's shared/repository.BaseRepository and
// shared/models.Models.
package store

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Versioned is embedded by every row that participates in optimistic
// concurrency (spec §5: "UPDATE ... WHERE id = ? AND version = ?").
type Versioned struct {
	Version   int64     `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// JSONMap is a strict free-form JSON column, used only where spec §3/§9
// explicitly calls a field free-form (custom_attributes, metadata). Every
// other flexible column gets its own named struct below instead of a bag of
// interface{}, per §9 "Dynamic JSON columns".
type JSONMap map[string]any

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			*m = JSONMap{}
			return nil
		}
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// StringArray mirrors the teacher's shared/models.StringArray exactly,
// carried over because Postgres text[]/json columns need the same
// Scan/Value shimming everywhere a []string crosses the sqlx boundary.
type StringArray []string

func (a *StringArray) Scan(value any) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return a.scanBytes(v)
	case string:
		return a.scanBytes([]byte(v))
	default:
		*a = StringArray{}
		return nil
	}
}

func (a *StringArray) scanBytes(src []byte) error {
	var arr []string
	if len(src) > 0 {
		if err := json.Unmarshal(src, &arr); err != nil {
			*a = StringArray{}
			return err
		}
	}
	*a = StringArray(arr)
	return nil
}

func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal([]string(a))
}

// IdentityStatus enumerates spec §3 Identity.status.
type IdentityStatus string

const (
	IdentityActive              IdentityStatus = "active"
	IdentitySuspended           IdentityStatus = "suspended"
	IdentityDeactivated         IdentityStatus = "deactivated"
	IdentityPendingVerification IdentityStatus = "pending_verification"
	IdentityPendingDeletion     IdentityStatus = "pending_deletion"
)

// VerificationStatus enumerates identity-level verification state (distinct
// from a verification_request's own status).
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "none"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// Badge enumerates spec §4.7 badge tiers.
type Badge string

const (
	BadgeNone       Badge = ""
	BadgeGold       Badge = "gold"
	BadgeBusiness   Badge = "business"
	BadgeGovernment Badge = "government"
	BadgeBlue       Badge = "blue"
)

// Identity is spec §3's Identity entity. The password credential is a
// separate row (PasswordCredential below), not inlined here.
type Identity struct {
	ID                  uuid.UUID          `db:"id" json:"id"`
	Email               string             `db:"email" json:"email"`
	Phone               *string            `db:"phone" json:"phone,omitempty"`
	HandleID            *uuid.UUID         `db:"handle_id" json:"handle_id,omitempty"`
	DisplayName         *string            `db:"display_name" json:"display_name,omitempty"`
	Status              IdentityStatus     `db:"status" json:"status"`
	VerificationStatus  VerificationStatus `db:"verification_status" json:"verification_status"`
	VerificationBadge   Badge              `db:"verification_badge" json:"verification_badge,omitempty"`
	ReputationScore     int                `db:"reputation_score" json:"reputation_score"`
	FailedLoginAttempts int                `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time         `db:"locked_until" json:"-"`
	MFAEnabled          bool               `db:"mfa_enabled" json:"mfa_enabled"`
	DeletedAt           *time.Time         `db:"deleted_at" json:"-"`
	Versioned
}

// PasswordCredential is spec §3's Password credential entity: "Algorithm
// tag, salt, hash, iterations/parameters, rotation counter. Re-hashed
// opportunistically on login when parameters are outdated."
type PasswordCredential struct {
	IdentityID    uuid.UUID `db:"identity_id"`
	Algorithm     string    `db:"algorithm"`
	Salt          []byte    `db:"salt"`
	Hash          string    `db:"hash"`
	Params        JSONMap   `db:"params"`
	RotationCount int       `db:"rotation_count"`
	ChangedAt     time.Time `db:"changed_at"`
}

// HandleStatus enumerates spec §3 Handle.status.
type HandleStatus string

const (
	HandleActive       HandleStatus = "active"
	HandleReserved     HandleStatus = "reserved"
	HandleTransferring HandleStatus = "transferring"
	HandleSuspended    HandleStatus = "suspended"
	HandleReleased     HandleStatus = "released"
)

// Handle is spec §3's Handle entity.
type Handle struct {
	ID                   uuid.UUID    `db:"id" json:"id"`
	Handle               string       `db:"handle" json:"handle"`
	HandleLower          string       `db:"handle_lower" json:"-"`
	OwnerIdentityID      uuid.UUID    `db:"owner_identity_id" json:"owner_identity_id"`
	Status               HandleStatus `db:"status" json:"status"`
	ReservationClass     *string      `db:"reservation_class" json:"reservation_class,omitempty"`
	IsProtected          bool         `db:"is_protected" json:"is_protected"`
	OriginalOwnerID      *uuid.UUID   `db:"original_owner_id" json:"original_owner_id,omitempty"`
	TransferTokenHash    *string      `db:"transfer_token_hash" json:"-"`
	TransferExpiresAt    *time.Time   `db:"transfer_expires_at" json:"transfer_expires_at,omitempty"`
	TransferToIdentityID *uuid.UUID   `db:"transfer_to_identity_id" json:"-"`
	Versioned
}

// ReservedHandle is spec §4.4's reserved_handles lookup row.
type ReservedHandle struct {
	ID               uuid.UUID `db:"id"`
	HandleLower      string    `db:"handle_lower"`
	ReservationClass string    `db:"reservation_class"`
	CreatedAt        time.Time `db:"created_at"`
}

// ProtectedEntryTier enumerates claim-priority tiers (spec §4.4 claim
// workflow: "ultra-high -> 1, high -> 2, medium -> 3").
type ProtectedEntryTier string

const (
	TierUltraHigh ProtectedEntryTier = "ultra_high"
	TierHigh      ProtectedEntryTier = "high"
	TierMedium    ProtectedEntryTier = "medium"
)

// ProtectedEntry is a celebrity/brand/reserved-name similarity guard.
type ProtectedEntry struct {
	ID          uuid.UUID          `db:"id"`
	Name        string             `db:"name"`
	HandleLower string             `db:"handle_lower"`
	Aliases     StringArray        `db:"aliases"`
	Tier        ProtectedEntryTier `db:"tier"`
	Threshold   float64            `db:"threshold"`
	ClaimedBy   *uuid.UUID         `db:"claimed_by"`
	ClaimedAt   *time.Time         `db:"claimed_at"`
	CreatedAt   time.Time          `db:"created_at"`
}

// ClaimPriority maps a tier to the verification_request priority used in
// §4.4's claim workflow.
func (t ProtectedEntryTier) ClaimPriority() int {
	switch t {
	case TierUltraHigh:
		return 1
	case TierHigh:
		return 2
	default:
		return 3
	}
}

// MFAMethodType enumerates spec §3 MFA method.type.
type MFAMethodType string

const (
	MFATOTP        MFAMethodType = "totp"
	MFASMS         MFAMethodType = "sms"
	MFAEmail       MFAMethodType = "email"
	MFABackupCodes MFAMethodType = "backup_codes"
	MFAHardwareKey MFAMethodType = "hardware_key"
	MFABiometric   MFAMethodType = "biometric"
)

// MFAMethod is spec §3's MFA method entity.
type MFAMethod struct {
	ID               uuid.UUID     `db:"id"`
	IdentityID       uuid.UUID     `db:"identity_id"`
	Type             MFAMethodType `db:"type"`
	IdentifierCipher []byte        `db:"identifier_cipher"`
	SecretCipher     []byte        `db:"secret_cipher"`
	IsPrimary        bool          `db:"is_primary"`
	IsVerified       bool          `db:"is_verified"`
	Priority         int           `db:"priority"`
	TrustLevel       int           `db:"trust_level"`
	UseCount         int           `db:"use_count"`
	FailedCounter    int           `db:"failed_counter"`
	LockedUntil      *time.Time    `db:"locked_until"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

// BackupCode is one row per single-use backup code (spec §3).
type BackupCode struct {
	ID        uuid.UUID  `db:"id"`
	MethodID  uuid.UUID  `db:"method_id"`
	CodeHash  string     `db:"code_hash"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// ChallengePurpose enumerates spec §3 MFA challenge.purpose.
type ChallengePurpose string

const (
	PurposeLogin          ChallengePurpose = "login"
	PurposePasswordChange ChallengePurpose = "password_change"
	PurposeSensitiveOp    ChallengePurpose = "sensitive_op"
)

// ChallengeStatus enumerates spec §3 MFA challenge.status.
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeConsumed ChallengeStatus = "consumed"
	ChallengeExpired  ChallengeStatus = "expired"
	ChallengeFailed   ChallengeStatus = "failed"
)

// MFAChallenge is spec §3's MFA challenge entity.
type MFAChallenge struct {
	ID          uuid.UUID        `db:"id"`
	IdentityID  uuid.UUID        `db:"identity_id"`
	MethodID    uuid.UUID        `db:"method_id"`
	Purpose     ChallengePurpose `db:"purpose"`
	CodeHash    *string          `db:"code_hash"`
	IssuedAt    time.Time        `db:"issued_at"`
	ExpiresAt   time.Time        `db:"expires_at"`
	Attempts    int              `db:"attempts"`
	MaxAttempts int              `db:"max_attempts"`
	Status      ChallengeStatus  `db:"status"`
}

// DeviceDescriptor captures the session metadata named but not detailed in
// spec §3 Session ("device descriptor (OS, browser, fingerprint, IP)").
type DeviceDescriptor struct {
	OS          string `json:"os,omitempty"`
	Browser     string `json:"browser,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	IP          string `json:"ip,omitempty"`
}

func (d *DeviceDescriptor) Scan(value any) error {
	if value == nil {
		*d = DeviceDescriptor{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		}
	}
	if len(b) == 0 {
		*d = DeviceDescriptor{}
		return nil
	}
	return json.Unmarshal(b, d)
}

func (d DeviceDescriptor) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Session is spec §3's Session entity.
type Session struct {
	ID            uuid.UUID        `db:"id"`
	IdentityID    uuid.UUID        `db:"identity_id"`
	ClientID      string           `db:"client_id"`
	Device        DeviceDescriptor `db:"device"`
	CreatedAt     time.Time        `db:"created_at"`
	LastActiveAt  time.Time        `db:"last_active_at"`
	ExpiresAt     time.Time        `db:"expires_at"`
	IsActive      bool             `db:"is_active"`
	MFAAsserted   bool             `db:"mfa_asserted"`
	MFAAssertedAt *time.Time       `db:"mfa_asserted_at"`
	MFAMethodID   *uuid.UUID       `db:"mfa_method_id"`
}

// TokenType is the discriminator for the Token sum type (spec §9: "Replace
// the single, many-columned Token notion with a tagged union").
type TokenType string

const (
	TokenAccess   TokenType = "access"
	TokenRefresh  TokenType = "refresh"
	TokenAuthCode TokenType = "authorization_code"
	TokenDevice   TokenType = "device_code"
	TokenID       TokenType = "id"
)

// TokenStatus enumerates spec §3 Token.status.
type TokenStatus string

const (
	TokenActive  TokenStatus = "active"
	TokenRevoked TokenStatus = "revoked"
	TokenExpired TokenStatus = "expired"
	TokenUsed    TokenStatus = "used"
)

// Token is spec §3's Token entity, kept as one row shape for storage
// convenience but always constructed/consumed through the typed
// constructors in internal/oauth that enforce the sum-type discipline.
type Token struct {
	ID              uuid.UUID   `db:"id"`
	Type            TokenType   `db:"type"`
	Hash            string      `db:"hash"`
	IdentityID      *uuid.UUID  `db:"identity_id"`
	ClientID        string      `db:"client_id"`
	SessionID       *uuid.UUID  `db:"session_id"`
	Scopes          StringArray `db:"scopes"`
	Audience        StringArray `db:"audience"`
	IssuedAt        time.Time   `db:"issued_at"`
	ExpiresAt       time.Time   `db:"expires_at"`
	NotBefore       *time.Time  `db:"not_before"`
	UseCount        int         `db:"use_count"`
	MaxUses         *int        `db:"max_uses"`
	Status          TokenStatus `db:"status"`
	TokenFamily     *uuid.UUID  `db:"token_family"`
	Generation      int         `db:"generation"`
	ParentTokenID   *uuid.UUID  `db:"parent_token_id"`
	RotatedToID     *uuid.UUID  `db:"rotated_to_id"`
	CodeChallenge   *string     `db:"code_challenge"`
	ChallengeMethod *string     `db:"challenge_method"`
	RedirectURI     *string     `db:"redirect_uri"`
	Algorithm       *string     `db:"algorithm"`
	KeyID           *string     `db:"key_id"`
	LastUsedAt      *time.Time  `db:"last_used_at"`
}

// OAuthClient is spec §3's OAuth application entity.
type OAuthClient struct {
	ClientID         string      `db:"client_id"`
	ClientSecretHash string      `db:"client_secret_hash"`
	RedirectURIs     StringArray `db:"redirect_uris"`
	AllowedScopes    StringArray `db:"allowed_scopes"`
	Trusted          bool        `db:"trusted"`
	Public           bool        `db:"public"`
	OwnerIdentityID  *uuid.UUID  `db:"owner_identity_id"`
	CreatedAt        time.Time   `db:"created_at"`
}

// VerificationType enumerates the document/claim type driving badge
// assignment (spec §4.7).
type VerificationType string

const (
	VerifyCelebrity  VerificationType = "celebrity"
	VerifyBusiness   VerificationType = "business"
	VerifyGovernment VerificationType = "government"
	VerifyIndividual VerificationType = "individual"
)

// VerificationRequestStatus enumerates spec §3's state machine.
type VerificationRequestStatus string

const (
	ReqSubmitted   VerificationRequestStatus = "submitted"
	ReqUnderReview VerificationRequestStatus = "under_review"
	ReqApproved    VerificationRequestStatus = "approved"
	ReqRejected    VerificationRequestStatus = "rejected"
	ReqNeedsInfo   VerificationRequestStatus = "needs_info"
)

// Document is one submitted file backing a verification request.
type Document struct {
	ID        uuid.UUID `db:"id"`
	RequestID uuid.UUID `db:"request_id"`
	Type      string    `db:"type"`
	BlobURL   string    `db:"blob_url"`
	SHA256    string    `db:"sha256"`
	SizeBytes int64     `db:"size_bytes"`
	MimeType  string    `db:"mime_type"`
	Verified  bool      `db:"verified"`
	CreatedAt time.Time `db:"created_at"`
}

// VerificationRequest is spec §3's Verification request entity.
type VerificationRequest struct {
	ID               uuid.UUID                 `db:"id"`
	IdentityID       uuid.UUID                 `db:"identity_id"`
	Type             VerificationType          `db:"type"`
	Priority         int                       `db:"priority"`
	Status           VerificationRequestStatus `db:"status"`
	AssignedReviewer *string                   `db:"assigned_reviewer"`
	RejectReason     *string                   `db:"reject_reason"`
	NeedsInfoNote    *string                   `db:"needs_info_note"`
	CreatedAt        time.Time                 `db:"created_at"`
	UpdatedAt        time.Time                 `db:"updated_at"`
}

// SyncJobStatus enumerates spec §3/§4.8's job state machine.
type SyncJobStatus string

const (
	JobPending     SyncJobStatus = "pending"
	JobReady       SyncJobStatus = "ready"
	JobLeased      SyncJobStatus = "leased"
	JobProcessing  SyncJobStatus = "processing"
	JobCompleted   SyncJobStatus = "completed"
	JobFailed      SyncJobStatus = "failed"
	JobCancelled   SyncJobStatus = "cancelled"
	JobRetrying    SyncJobStatus = "retrying"
	JobWaitingDeps SyncJobStatus = "waiting_deps"
)

// SyncPriority enumerates spec §4.8 priority tiers, ordered ascending for
// the lease query's ORDER BY priority ASC.
type SyncPriority int

const (
	PriorityCritical SyncPriority = 1
	PriorityHigh     SyncPriority = 2
	PriorityNormal   SyncPriority = 3
	PriorityLow      SyncPriority = 4
)

// ConflictStrategy enumerates spec §4.8 conflict-resolution strategies.
type ConflictStrategy string

const (
	ConflictLatestWins ConflictStrategy = "latest_wins"
	ConflictSourceWins ConflictStrategy = "source_wins"
	ConflictManual     ConflictStrategy = "manual"
)

// SyncJob is spec §3's compact job record. Per §9 ("Sync queue as state
// machine... keep the lease fields on the job; everything else goes to the
// event log"), audit detail lives in JobEvent, not here.
type SyncJob struct {
	ID               uuid.UUID        `db:"id"`
	EntityType       string           `db:"entity_type"`
	EntityID         string           `db:"entity_id"`
	SourcePlatform   string           `db:"source_platform"`
	TargetPlatforms  StringArray      `db:"target_platforms"`
	Payload          JSONMap          `db:"payload"`
	Delta            JSONMap          `db:"delta"`
	Status           SyncJobStatus    `db:"status"`
	Priority         SyncPriority     `db:"priority"`
	Attempts         int              `db:"attempts"`
	MaxAttempts      int              `db:"max_attempts"`
	ScheduledAt      time.Time        `db:"scheduled_at"`
	NextRetryAt      *time.Time       `db:"next_retry_at"`
	LeaseOwner       *string          `db:"lease_owner"`
	LeaseExpiresAt   *time.Time       `db:"lease_expires_at"`
	DependsOn        []uuid.UUID      `db:"-"`
	Blocks           []uuid.UUID      `db:"-"`
	ParentJobID      *uuid.UUID       `db:"parent_job_id"`
	RollbackData     JSONMap          `db:"rollback_data"`
	RollbackJobID    *uuid.UUID       `db:"rollback_job_id"`
	PayloadChecksum  string           `db:"payload_checksum"`
	ConflictStrategy ConflictStrategy `db:"conflict_strategy"`
	HasConflicts     bool             `db:"has_conflicts"`
	IsBatchJob       bool             `db:"is_batch_job"`
	BatchID          *uuid.UUID       `db:"batch_id"`
	BatchIndex       int              `db:"batch_index"`
	TotalBatches     int              `db:"total_batches"`
	StartedAt        *time.Time       `db:"started_at"`
	Versioned
}

// JobEventType enumerates the append-only log entries written for a job.
type JobEventType string

const (
	EventEnqueued   JobEventType = "enqueued"
	EventLeased     JobEventType = "leased"
	EventStarted    JobEventType = "started"
	EventTargetDone JobEventType = "target_done"
	EventRetried    JobEventType = "retried"
	EventCompleted  JobEventType = "completed"
	EventFailed     JobEventType = "failed"
	EventCancelled  JobEventType = "cancelled"
	EventConflict   JobEventType = "conflict"
	EventRolledBack JobEventType = "rolled_back"
	EventReclaimed  JobEventType = "reclaimed"
)

// JobEvent is the append-only audit trail separated out of SyncJob per §9.
type JobEvent struct {
	ID        uuid.UUID    `db:"id"`
	JobID     uuid.UUID    `db:"job_id"`
	Type      JobEventType `db:"type"`
	Detail    JSONMap      `db:"detail"`
	CreatedAt time.Time    `db:"created_at"`
}

// RecoveryMethod mirrors spec §3's "modelled similarly" recovery method
// entity.
type RecoveryMethod struct {
	ID         uuid.UUID `db:"id"`
	IdentityID uuid.UUID `db:"identity_id"`
	Type       string    `db:"type"`
	ValueHash  string    `db:"value_hash"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

// ConnectedApp mirrors spec §3's "modelled similarly" connected-app entity.
type ConnectedApp struct {
	ID         uuid.UUID   `db:"id"`
	IdentityID uuid.UUID   `db:"identity_id"`
	ClientID   string      `db:"client_id"`
	Scopes     StringArray `db:"scopes"`
	Status     string      `db:"status"`
	CreatedAt  time.Time   `db:"created_at"`
}
