package domain

// Principal identifies the authenticated caller of one request. Token is the
// raw bearer token, passed through to the management APIs so every provider
// call runs with the caller's own permissions.
type Principal struct {
	UserID   string
	Username string
	TenantID string
	Token    string
}
