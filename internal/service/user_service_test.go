package service

import (
	"context"
	"testing"
	"time"

	"sigoc/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uuid.UUID]*model.Usuario
	tokens map[string]*model.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[uuid.UUID]*model.Usuario),
		tokens: make(map[string]*model.RefreshToken),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.Usuario) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.Usuario) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	delete(f.users, uid)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.Usuario, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.Usuario, int64, error) {
	var out []model.Usuario
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	cp := *token
	if u, ok := f.users[token.UserID]; ok {
		cp.User = *u
	}
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeUserRepo) DeleteExpiredRefreshTokens(_ context.Context) error {
	for k, t := range f.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(f.tokens, k)
		}
	}
	return nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password, role string) *model.Usuario {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := &model.Usuario{
		Username: username,
		Email:    username + "@example.org",
		Password: string(hashed),
		Role:     role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", model.RoleAuditor)
	svc := NewUserService(repo)

	pair, user, err := svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "segredo123"})
	if err != nil {
		t.Fatal(err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if user.Username != "maria" {
		t.Errorf("user = %q", user.Username)
	}
	if _, ok := repo.tokens[pair.RefreshToken]; !ok {
		t.Error("refresh token not persisted")
	}
}

func TestLoginSenhaErrada(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", model.RoleAuditor)
	svc := NewUserService(repo)

	if _, _, err := svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "errada"}); err != ErrCredenciaisInvalidas {
		t.Errorf("expected ErrCredenciaisInvalidas, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), LoginRequest{Username: "joao", Password: "segredo123"}); err != ErrCredenciaisInvalidas {
		t.Errorf("expected ErrCredenciaisInvalidas, got %v", err)
	}
}

func TestRefreshRotaciona(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", model.RoleAuditor)
	svc := NewUserService(repo)

	pair, _, err := svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "segredo123"})
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	// The spent token is gone; a replay must fail.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != ErrRefreshTokenInvalido {
		t.Errorf("expected ErrRefreshTokenInvalido on replay, got %v", err)
	}
}

func TestRefreshExpirado(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "maria", "segredo123", model.RoleAuditor)
	svc := NewUserService(repo)

	repo.tokens["velho"] = &model.RefreshToken{
		UserID:    user.ID,
		User:      *user,
		Token:     "velho",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if _, err := svc.Refresh(context.Background(), "velho"); err != ErrRefreshTokenInvalido {
		t.Errorf("expected ErrRefreshTokenInvalido, got %v", err)
	}
	if _, ok := repo.tokens["velho"]; ok {
		t.Error("expired token was not purged")
	}
}

func TestLogoutRevogaToken(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", model.RoleAuditor)
	svc := NewUserService(repo)

	pair, _, err := svc.Login(context.Background(), LoginRequest{Username: "maria", Password: "segredo123"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.tokens[pair.RefreshToken]; ok {
		t.Error("token survived logout")
	}
}

func TestCreateUserValidaRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "novo",
		Email:    "novo@example.org",
		Password: "segredo123",
		Role:     "gerente",
	})
	if err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestCreateUserHasheiaSenha(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "novo",
		Email:    "novo@example.org",
		Password: "segredo123",
		Role:     model.RoleConsulta,
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.Password == "segredo123" {
		t.Error("password stored in clear text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("segredo123")); err != nil {
		t.Error("stored hash does not match the password")
	}
}
