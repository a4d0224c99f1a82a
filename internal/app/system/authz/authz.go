// Package authz bridges the session layer and handlers: it resolves the
// request's SessionUser into the typed identifiers handlers work with.
package authz

import (
	"net/http"

	"github.com/roomiehq/roomies/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's ObjectID plus name and email.
// ok=false means no signed-in user, or a malformed user ID in the session
// (fail closed in that case).
func UserCtx(r *http.Request) (userID primitive.ObjectID, name, email string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, "", "", false
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, "", "", false
	}
	return userID, u.Name, u.Email, true
}
