package v1

// IssueUserTokenQuery selects the user a microservice issues a token for.
// TelegramID is required; an absent parameter is rejected rather than read as 0.
type IssueUserTokenQuery struct {
	TelegramID *int64 `form:"telegram_id" json:"telegram_id" validate:"required,gte=0"`
}

// NewIssueUserTokenQuery selects the user linked to telegramID.
func NewIssueUserTokenQuery(telegramID int64) IssueUserTokenQuery {
	return IssueUserTokenQuery{TelegramID: &telegramID}
}

// IssueUserTokenResponse is returned by every operation that issues a token.
// ExpiresIn is the absolute expiry in milliseconds since the epoch.
type IssueUserTokenResponse struct {
	IssuedAt  int64       `json:"issued_at"`
	ExpiresIn int64       `json:"expires_in"`
	UserID    int64       `json:"user_id"`
	Token     string      `json:"token"`
	Ty        UserTokenTy `json:"ty"`
}

// NewIssueUserTokenResponse describes a freshly issued token.
func NewIssueUserTokenResponse(t UserToken) IssueUserTokenResponse {
	return IssueUserTokenResponse{
		IssuedAt:  t.IssuedAt,
		ExpiresIn: t.ExpiresAt(),
		UserID:    t.UserID,
		Token:     t.Token,
		Ty:        t.Ty,
	}
}

// ClaimInviteBody claims an invite for a new user. TelegramID must be present.
type ClaimInviteBody struct {
	Invite     string `json:"invite"`
	Username   string `json:"username" validate:"username"`
	TelegramID *int64 `json:"telegram_id" validate:"required,gte=0"`
}

// NewClaimInviteBody builds a claim with every field present.
func NewClaimInviteBody(invite, username string, telegramID int64) ClaimInviteBody {
	return ClaimInviteBody{Invite: invite, Username: username, TelegramID: &telegramID}
}

// SelfUser is the authenticated user together with its session expiry.
type SelfUser struct {
	User      User  `json:"user"`
	ExpiresAt int64 `json:"expires_at"`
}

// CreateProjectBody creates a project owned by the caller.
type CreateProjectBody struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// ProjectListQuery pages through the caller's projects. Limit 0 means the default.
type ProjectListQuery struct {
	Limit uint32 `form:"limit" json:"limit,omitempty"`
	Skip  uint32 `form:"skip" json:"skip,omitempty"`
}

// ProjectPath addresses a single project.
type ProjectPath struct {
	ID int64 `uri:"id" form:"-" json:"id"`
}
