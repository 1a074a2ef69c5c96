package request

// UpdateUsernameRequest is used for both PUT and PATCH. Username is a pointer
// so a PATCH body without it can be told apart from an empty value.
type UpdateUsernameRequest struct {
	Username *string `json:"username" validate:"omitnil,notblank,max=100"`
}
