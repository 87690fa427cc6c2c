package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/queuejw/messenger/internal/api/metrics"
	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/core/ports"
)

type AuthHandler struct {
	accounts ports.AccountService
}

func NewAuthHandler(accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials; confirmPassword must equal password"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.accounts.RegisterUser(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrLoginTaken) {
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
		}
		return err
	}

	metrics.UsersRegisteredTotal.Inc()
	return c.JSON(http.StatusCreated, registerResponse{ID: user.ID})
}

// Login checks a login/password pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid login or password"})
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", UserID: user.ID})
}

// GetUser returns the public profile of a user.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *AuthHandler) GetUser(c echo.Context) error {
	user, found, err := h.accounts.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
