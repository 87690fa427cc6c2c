package handler

import (
	"time"

	"github.com/queuejw/messenger/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Accounts ---

// Login and register accept either JSON bodies or classic form posts.
type loginRequest struct {
	Login    string `json:"login"    form:"login"    validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type registerRequest struct {
	Login           string `json:"login"           form:"login"           validate:"required"`
	Password        string `json:"password"        form:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
}

type registerResponse struct {
	ID string `json:"id"`
}

// userResponse is the public view of a user; the credential token never leaves the service.
type userResponse struct {
	ID                  string    `json:"id"`
	Login               string    `json:"login"`
	Nickname            string    `json:"nickname"`
	AccountCreationDate time.Time `json:"accountCreationDate"`
	IsAdmin             bool      `json:"isAdmin"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Login:               u.Login,
		Nickname:            u.Nickname,
		AccountCreationDate: u.AccountCreationDate,
		IsAdmin:             u.IsAdmin,
	}
}

// --- Messages ---

type sendMessageRequest struct {
	SenderID    string `json:"senderId"    form:"senderId"    validate:"required"`
	RecipientID string `json:"recipientId" form:"recipientId" validate:"required"`
	Content     string `json:"content"     form:"content"`
}

type receiveMessagesRequest struct {
	UserID string `query:"userId" validate:"required"`
}
