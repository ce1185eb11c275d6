package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100,password"`
	Name     string `json:"name" binding:"required,min=2,max=20"`
	UserType string `json:"user_type" binding:"required,oneof=artist student teacher"`
	// Consent flags are validated in the service so the response carries the
	// dedicated consent error codes rather than a generic validation failure.
	AgreeTerms     bool `json:"agree_terms"`
	AgreePrivacy   bool `json:"agree_privacy"`
	AgreeMarketing bool `json:"agree_marketing"`
}

type RegisterResponse struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type CheckEmailResponse struct {
	Available bool `json:"available"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type VerifyEmailResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair mirrors the wire contract consumed by the web client; the mixed
// field naming is load-bearing.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refreshToken"`
}

type LoginUser struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}

type LoginResponse struct {
	User  LoginUser `json:"user"`
	Token TokenPair `json:"token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}
