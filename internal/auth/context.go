package auth

import "context"

type contextKey struct{}

// AuthContext carries the authenticated user through a request.
// MemberID and HouseholdID are zero when the user has not joined a
// household yet.
type AuthContext struct {
	UserID      int64
	Email       string
	MemberID    int64
	HouseholdID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}
