package handlers

import (
	"net/http"
	"time"

	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CookieSettings controls the HTTP-only auth cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
	cookie      CookieSettings
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{authService: as, cookie: cookie}
}

// Login verifies credentials and sets the session cookie. The token is also
// returned in the body for clients that prefer the Authorization header.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req, "Login") {
		return
	}
	authResp, err := h.authService.Login(req)
	if err != nil {
		respondServiceError(c, err, "Login")
		return
	}
	maxAge := int(utils.TokenTTL() / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, authResp.AccessToken, maxAge, "/", "", h.cookie.Secure, true)
	utils.LogInfo("user logged in", map[string]interface{}{"user_id": authResp.User.ID, "role": authResp.User.Role})
	utils.RespondOK(c, authResp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	utils.RespondOK(c, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := currentUser(c)
	user, err := h.authService.GetCurrentUser(userID)
	if err != nil {
		respondServiceError(c, err, "Me")
		return
	}
	utils.RespondOK(c, user)
}

// UserHandler serves staff account administration.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req, "CreateUser") {
		return
	}
	user, err := h.userService.CreateUser(req)
	if err != nil {
		respondServiceError(c, err, "CreateUser")
		return
	}
	utils.RespondCreated(c, user)
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers()
	if err != nil {
		respondServiceError(c, err, "GetUsers")
		return
	}
	utils.RespondOK(c, users)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req, "UpdateUser") {
		return
	}
	user, err := h.userService.UpdateUser(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateUser")
		return
	}
	utils.RespondOK(c, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	callerID, _ := currentUser(c)
	if err := h.userService.DeleteUser(id, callerID); err != nil {
		respondServiceError(c, err, "DeleteUser")
		return
	}
	utils.RespondOK(c, gin.H{"message": "User deleted successfully"})
}
