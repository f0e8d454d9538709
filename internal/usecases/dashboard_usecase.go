package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
)

const maxUsageDays = 365

type DashboardStore interface {
	interfaces.CompanyStore
	interfaces.UserStore
	interfaces.UsageStore
}

// DashboardUsecase backs the usage page and the superuser administration routes.
type DashboardUsecase struct {
	store DashboardStore
	auth  *AuthUsecase
	now   func() time.Time
}

func NewDashboardUsecase(store DashboardStore, auth *AuthUsecase) *DashboardUsecase {
	return &DashboardUsecase{store: store, auth: auth, now: time.Now}
}

// Usage returns one row per active day over the last days days, oldest first.
func (u *DashboardUsecase) Usage(ctx context.Context, companyID uuid.UUID, days int) ([]entities.DailyUsage, error) {
	if days <= 0 {
		days = 30
	}
	if days > maxUsageDays {
		days = maxUsageDays
	}
	since := u.now().UTC().AddDate(0, 0, -(days - 1))
	return u.store.UsageHistory(ctx, companyID, since)
}

// Company management

func (u *DashboardUsecase) ListCompanies(ctx context.Context) ([]entities.Company, error) {
	return u.store.ListCompanies(ctx)
}

func (u *DashboardUsecase) CreateCompany(ctx context.Context, name string) (*entities.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", entities.ErrValidation)
	}
	company := &entities.Company{Name: name}
	if err := u.store.CreateCompany(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (u *DashboardUsecase) RenameCompany(ctx context.Context, id uuid.UUID, name string) (*entities.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", entities.ErrValidation)
	}
	company, err := u.store.RenameCompany(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("company: %w", entities.ErrNotFound)
	}
	return company, nil
}

func (u *DashboardUsecase) DeleteCompany(ctx context.Context, actor *entities.User, id uuid.UUID) error {
	if actor.CompanyID == id {
		return fmt.Errorf("%w: cannot delete your own company", entities.ErrValidation)
	}
	deleted, err := u.store.DeleteCompany(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("company: %w", entities.ErrNotFound)
	}
	return nil
}

// User management

func (u *DashboardUsecase) ListUsers(ctx context.Context, companyID *uuid.UUID) ([]entities.User, error) {
	return u.store.ListUsers(ctx, companyID)
}

func (u *DashboardUsecase) CreateUser(ctx context.Context, companyID uuid.UUID, email, password, name string, superuser bool) (*entities.User, error) {
	return u.auth.CreateUser(ctx, companyID, email, password, name, superuser)
}

func (u *DashboardUsecase) SetUserActive(ctx context.Context, actor *entities.User, id uuid.UUID, active bool) (*entities.User, error) {
	if actor.ID == id && !active {
		return nil, fmt.Errorf("%w: cannot deactivate yourself", entities.ErrValidation)
	}
	user, err := u.store.UpdateUser(ctx, id, entities.UserPatch{IsActive: &active})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user: %w", entities.ErrNotFound)
	}
	return user, nil
}

func (u *DashboardUsecase) DeleteUser(ctx context.Context, actor *entities.User, id uuid.UUID) error {
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete yourself", entities.ErrValidation)
	}
	deleted, err := u.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("user: %w", entities.ErrNotFound)
	}
	return nil
}

func (u *DashboardUsecase) Stats(ctx context.Context) (*entities.CompanyStats, error) {
	return u.store.GetStats(ctx)
}
