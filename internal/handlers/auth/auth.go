package auth

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/loanportal/internal/domain"
	"github.com/GlebRadaev/loanportal/internal/dto"
	"github.com/GlebRadaev/loanportal/internal/handlers/httpio"
	"github.com/GlebRadaev/loanportal/internal/service/authservice"
	"github.com/GlebRadaev/loanportal/pkg/utils"
)

type Service interface {
	Register(ctx context.Context, in authservice.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GenerateToken(user *domain.User) (string, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
//
//	@Summary		Register a new user
//	@Description	Create a student or financier account
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		200		{object}	dto.RegisterResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		409		{object}	utils.Response	"User already exists"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	user, err := h.authService.Register(r.Context(), authservice.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		StudentID:   req.StudentID,
		University:  req.University,
		GPA:         req.GPA,
		UserType:    domain.UserType(req.UserType),
		CompanyName: req.CompanyName,
	})
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	if !h.issueToken(w, user) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RegisterResponseDTO{
		Message: "User successfully registered",
	})
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in with email and password and get a JWT token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.LoginResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := httpio.Bind(r, &req); err != nil {
		httpio.Fail(w, err)
		return
	}
	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpio.Fail(w, err)
		return
	}
	if !h.issueToken(w, user) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.LoginResponseDTO{
		Message: "User successfully authenticated",
	})
}

// issueToken puts a bearer token for user into the Authorization header.
func (h *AuthHandler) issueToken(w http.ResponseWriter, user *domain.User) bool {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return false
	}
	w.Header().Set("Authorization", "Bearer "+token)
	return true
}
