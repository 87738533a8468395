package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/book-management-system/internal/auth"
)

type AuthController struct {
	auth AuthUseCases
}

func NewAuthController(svc AuthUseCases) *AuthController {
	return &AuthController{auth: svc}
}

// TokenRequest accepts JSON or form-encoded credentials.
type TokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register handles POST /api/v1/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "register user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Token handles POST /api/v1/auth/token
func (ac *AuthController) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		respondBadRequest(c, "username and password are required")
		return
	}

	token, err := ac.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "UNAUTHORIZED"})
			return
		}
		respondError(c, err, "authenticate")
		return
	}
	c.JSON(http.StatusOK, token)
}

// Me handles GET /api/v1/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "could not validate credentials", Code: "UNAUTHORIZED"})
		return
	}
	c.JSON(http.StatusOK, user)
}
