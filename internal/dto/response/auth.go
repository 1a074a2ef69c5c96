package response

type TokenPairResponse struct {
	Refresh  string `json:"refresh"`
	Access   string `json:"access"`
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type AccessTokenResponse struct {
	Access string `json:"access"`
}
