package middleware

import (
	"net/http"
	"strings"

	"go-profile-portal/internal/delivery/http/response"
	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/audit"
	"go-profile-portal/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthCookieName holds the session token for browser clients.
const AuthCookieName = "auth_token"

func AuthMiddleware(tokens *token.Manager, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// 1. Try to get token from Header
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else if cookie, err := c.Cookie(AuthCookieName); err == nil {
			// 2. Try to get token from Cookie
			tokenString = cookie
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
			c.Abort()
			return
		}

		userID, claims, err := tokens.Parse(tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		// Staff and active flags come from the database, never from the token
		user, err := authUC.GetCurrentUser(c.Request.Context(), userID)
		if err != nil || !user.IsActive {
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyIsStaff), user.IsStaff)
		c.Set(string(domain.KeyUser), user)

		c.Next()
	}
}

// CurrentUser returns the user loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(string(domain.KeyUser))
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// RequireStaff rejects authenticated users without the staff flag.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
			c.Abort()
			return
		}
		if !user.IsStaff {
			audit.Default().Log(c.Request.Context(), audit.Event{
				Event:        audit.EventAccessDenied,
				SubjectType:  "email",
				SubjectValue: audit.MaskEmail(user.Email),
				IP:           c.ClientIP(),
				UserAgent:    c.GetHeader("User-Agent"),
				RequestID:    GetRequestID(c),
			})
			response.Error(c, http.StatusForbidden, "You do not have permission to access this page.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
