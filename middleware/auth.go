package middleware

import (
	"hotel-recommender/internal/auth"
	"hotel-recommender/utils"

	"github.com/gin-gonic/gin"
)

const usernameKey = "username"

type AuthMiddleware struct {
	tokens *auth.TokenManager
}

func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's username in the context.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := a.tokens.Validate(tokenString)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(usernameKey, claims.Username())
		c.Next()
	}
}

// GetUsername returns the authenticated username, or "" outside RequireAuth.
func GetUsername(c *gin.Context) string {
	if v, exists := c.Get(usernameKey); exists {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}
