package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthStore is the slice of the record store the auth flows need.
type AuthStore interface {
	interfaces.UserStore
	interfaces.CompanyStore
}

type AuthUsecase struct {
	store  AuthStore
	hasher interfaces.PasswordHasher
	tokens *TokenService
	log    *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthUsecase(store AuthStore, hasher interfaces.PasswordHasher, tokens *TokenService, log *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// burnVerify spends about as long as a real password check, so unknown emails
// cannot be told apart from wrong passwords by timing.
func (uc *AuthUsecase) burnVerify(password string) {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = uc.hasher.Hash(uuid.NewString())
	})
	uc.hasher.Verify(password, uc.dummyHash)
}

// Login returns entities.ErrInvalidCredentials for unknown email, wrong password and
// deactivated account alike.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*TokenPair, *entities.User, error) {
	user, err := uc.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		uc.burnVerify(password)
		return nil, nil, entities.ErrInvalidCredentials
	}
	if !uc.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, nil, entities.ErrInvalidCredentials
	}

	pair, err := uc.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh trades a refresh token for a new pair bound to the same user.
func (uc *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := uc.tokens.VerifyType(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, entities.ErrInvalidCredentials
	}
	userID, _ := claims.UserID()

	user, err := uc.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, entities.ErrInvalidCredentials
	}
	return uc.tokens.IssuePair(user.ID)
}

// ResolveSession maps a bearer token to its user. Invalid tokens, deleted users and
// deactivated users are anonymous: (nil, nil). Only store failures are errors.
func (uc *AuthUsecase) ResolveSession(ctx context.Context, accessToken string) (*entities.User, error) {
	claims, err := uc.tokens.VerifyType(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, nil
	}
	userID, _ := claims.UserID()

	user, err := uc.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	CompanyName string
}

// Register creates a company and its first user.
func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	company := &entities.Company{Name: strings.TrimSpace(in.CompanyName)}
	if company.Name == "" {
		company.Name = strings.TrimSpace(in.Name) + "'s Company"
	}

	email := NormalizeEmail(in.Email)
	existing, err := uc.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrConflict
	}

	if err := uc.store.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	user, err := uc.CreateUser(ctx, company.ID, email, in.Password, in.Name, false)
	if err != nil {
		// Leave no orphaned tenant behind.
		if _, delErr := uc.store.DeleteCompany(ctx, company.ID); delErr != nil {
			uc.log.Warn("failed to roll back company", zap.String("company_id", company.ID.String()), zap.Error(delErr))
		}
		return nil, err
	}
	return user, nil
}

// CreateUser adds an active user to an existing company.
func (uc *AuthUsecase) CreateUser(ctx context.Context, companyID uuid.UUID, email, password, name string, superuser bool) (*entities.User, error) {
	company, err := uc.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("lookup company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("company: %w", entities.ErrNotFound)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		CompanyID:    companyID,
		IsActive:     true,
		IsSuperuser:  superuser,
	}
	if err := uc.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

func (uc *AuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*entities.User, error) {
	var patch entities.UserPatch
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		patch.Email = &email
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		patch.Name = &name
	}
	if in.Password != nil {
		hash, err := uc.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	user, err := uc.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if user == nil {
		return nil, entities.ErrNotFound
	}
	return user, nil
}

// EnsureSuperadmin creates the platform administrator and its company on first start.
func (uc *AuthUsecase) EnsureSuperadmin(ctx context.Context, email, password string) error {
	existing, err := uc.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.IsSuperuser {
			uc.log.Warn("superadmin email belongs to a regular user", zap.String("email", existing.Email))
		}
		return nil
	}

	company := &entities.Company{Name: "Admin Company"}
	if err := uc.store.CreateCompany(ctx, company); err != nil {
		return fmt.Errorf("create admin company: %w", err)
	}
	user, err := uc.CreateUser(ctx, company.ID, email, password, "Super Admin", true)
	if err != nil {
		if errors.Is(err, entities.ErrConflict) {
			return nil
		}
		return err
	}
	uc.log.Info("superadmin created", zap.String("email", user.Email), zap.String("company_id", company.ID.String()))
	return nil
}
