package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "user_id"
	KeyOrgID       = "organization_id"
	KeyIsAdmin     = "isAdmin"
)
