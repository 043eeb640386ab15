package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"time"

	"sigoc/internal/middleware"
	"sigoc/internal/model"
	"sigoc/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrCredenciaisInvalidas = errors.New("usuário ou senha inválidos")
	ErrRefreshTokenInvalido = errors.New("refresh token inválido ou expirado")
	ErrUsuarioNaoEncontrado = errors.New("usuário não encontrado")
)

// DTOs for request validation
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	NomeCompleto string `json:"nome_completo"`
	Cargo        string `json:"cargo"`
	Telefone     string `json:"telefone"`
	Unidade      string `json:"unidade"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email        string `json:"email" binding:"omitempty,email"`
	NomeCompleto string `json:"nome_completo"`
	Cargo        string `json:"cargo"`
	Telefone     string `json:"telefone"`
	Unidade      string `json:"unidade"`
	Password     string `json:"password" binding:"omitempty,min=6"`
	Role         string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService defines the business logic around accounts and sessions.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.Usuario, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPair, *model.Usuario, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*model.Usuario, error)
	ListUsers(ctx context.Context, page, limit int) ([]model.Usuario, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.Usuario, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleAuditor || role == model.RoleConsulta
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.Usuario, error) {
	if !validRole(req.Role) {
		return nil, FieldErrors{"role": "perfil inválido: deve ser admin, auditor ou consulta"}
	}
	if !emailRegex.MatchString(req.Email) {
		return nil, FieldErrors{"email": "formato de email inválido"}
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, FieldErrors{"username": "username já cadastrado"}
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, FieldErrors{"email": "email já cadastrado"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("falha ao gerar hash da senha")
	}

	user := &model.Usuario{
		Username:     req.Username,
		Email:        req.Email,
		NomeCompleto: req.NomeCompleto,
		Cargo:        req.Cargo,
		Telefone:     req.Telefone,
		Unidade:      req.Unidade,
		Password:     string(hashed),
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenPair, *model.Usuario, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, ErrCredenciaisInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrCredenciaisInvalidas
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalido
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, ErrRefreshTokenInvalido
	}

	// Rotation: the presented token is single use.
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, &stored.User)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) issueTokens(ctx context.Context, user *model.Usuario) (*TokenPair, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	})
	accessToken, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, errors.New("falha ao gerar token de acesso")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	refresh := hex.EncodeToString(raw)
	if err := s.repo.SaveRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(refreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refresh}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*model.Usuario, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUsuarioNaoEncontrado
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]model.Usuario, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*model.Usuario, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUsuarioNaoEncontrado
	}

	if req.Role != "" {
		if !validRole(req.Role) {
			return nil, FieldErrors{"role": "perfil inválido: deve ser admin, auditor ou consulta"}
		}
		user.Role = req.Role
	}
	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, FieldErrors{"email": "email já cadastrado"}
		}
		user.Email = req.Email
	}
	if req.NomeCompleto != "" {
		user.NomeCompleto = req.NomeCompleto
	}
	if req.Cargo != "" {
		user.Cargo = req.Cargo
	}
	if req.Telefone != "" {
		user.Telefone = req.Telefone
	}
	if req.Unidade != "" {
		user.Unidade = req.Unidade
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.New("falha ao gerar hash da senha")
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrUsuarioNaoEncontrado
	}
	return s.repo.Delete(ctx, id)
}
