package domain

// CtxKey names the values AuthMiddleware stores on the request context.
type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyIsStaff   CtxKey = "IsStaff"
	KeyUser      CtxKey = "User"
)
