package routes

import (
	"errors"
	"net/http"

	"hotel-recommender/internal/auth"
	"hotel-recommender/internal/logger"
	"hotel-recommender/middleware"
	"hotel-recommender/models"
	"hotel-recommender/services"
	"hotel-recommender/utils"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(api *gin.RouterGroup, users services.UserStore, tokens *auth.TokenManager, authMiddleware *middleware.AuthMiddleware, bcryptCost int) {
	// Register endpoint
	api.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_input", "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password, bcryptCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		user := models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hashedPassword,
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := users.Create(ctx, &user); err != nil {
			if errors.Is(err, services.ErrUserExists) {
				utils.RespondWithError(c, http.StatusBadRequest, "user_exists", "Username or email already registered", nil)
				return
			}
			logger.Error("Failed to create user", "username", req.Username, "error", err)
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		logger.Info("User registered", "username", user.Username)
		c.JSON(http.StatusOK, user.Info())
	})

	// Login accepts the OAuth2 password form as well as JSON.
	api.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_input", "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		user, err := users.FindByUsername(ctx, req.Username)
		if err != nil && !errors.Is(err, services.ErrUserNotFound) {
			logger.Error("Failed to look up user", "username", req.Username, "error", err)
			utils.RespondWithInternalError(c, "Failed to look up user", nil)
			return
		}
		if user == nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Incorrect username or password")
			return
		}

		token, _, err := tokens.Issue(user.Username)
		if err != nil {
			logger.Error("Failed to issue token", "username", user.Username, "error", err)
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		c.JSON(http.StatusOK, models.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	})

	api.GET("/me", authMiddleware.RequireAuth(), func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		user, err := users.FindByUsername(ctx, middleware.GetUsername(c))
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithUnauthorized(c, "User not found")
			return
		}
		if err != nil {
			logger.Error("Failed to load current user", "error", err)
			utils.RespondWithInternalError(c, "Failed to load user", nil)
			return
		}

		c.JSON(http.StatusOK, user.Info())
	})
}
