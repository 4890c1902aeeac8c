// Package types holds the request/response DTOs for cmd/eidserver's HTTP
// surface, the same role goctl generates from a .api file in the teacher;
// hand-written here since this module has no protoc/goctl step to run.
package types

import "github.com/entativa/eid/internal/store"

type RegisterRequest struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Handle   string                 `json:"handle"`
	Device   store.DeviceDescriptor `json:"device,omitempty"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	IdentityID   string `json:"identity_id"`
	MFARequired  bool   `json:"mfa_required"`
}

type LoginRequest struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Device   store.DeviceDescriptor `json:"device,omitempty"`
}

type CompleteMFARequest struct {
	IdentityID string                 `json:"identity_id"`
	MethodID   string                 `json:"method_id"`
	Device     store.DeviceDescriptor `json:"device,omitempty"`
}

type ChangePasswordRequest struct {
	IdentityID      string `json:"identity_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type UpdateProfileRequest struct {
	IdentityID  string `json:"identity_id"`
	DisplayName string `json:"display_name"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type HandleValidateRequest struct {
	Handle string `json:"handle"`
}

type HandleValidateResponse struct {
	Status      string   `json:"status"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type HandleTransferInitiateRequest struct {
	HandleID   string `json:"handle_id"`
	FromOwner  string `json:"from_owner"`
	ToIdentity string `json:"to_identity"`
}

type HandleTransferInitiateResponse struct {
	TransferToken string `json:"transfer_token"`
	ExpiresAt     string `json:"expires_at"`
}

type HandleTransferConfirmRequest struct {
	HandleID      string `json:"handle_id"`
	TransferToken string `json:"transfer_token"`
}

type VerificationRequestItem struct {
	ID         string `json:"id"`
	IdentityID string `json:"identity_id"`
	Type       string `json:"type"`
	Priority   int    `json:"priority"`
	Status     string `json:"status"`
}

type VerificationQueueResponse struct {
	Requests []VerificationRequestItem `json:"requests"`
}

type VerificationApproveRequest struct {
	RequestID  string `json:"request_id"`
	IdentityID string `json:"identity_id"`
}

type VerificationApproveResponse struct {
	Badge string `json:"badge"`
}

type JobStatusRequest struct {
	JobID string `path:"jobId"`
}

type JobStatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Attempts     int    `json:"attempts"`
	MaxAttempts  int    `json:"max_attempts"`
	HasConflicts bool   `json:"has_conflicts"`
}

type JobRequeueRequest struct {
	JobID string `json:"job_id"`
}

type JWKSResponse struct {
	Keys []JWK `json:"keys"`
}

type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}
