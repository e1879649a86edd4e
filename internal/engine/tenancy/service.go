package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/pkg/validator"
	"grievance/internal/platform/models"
)

// OrganizationStore lists organizations in creation order. Get methods
// return nil, nil when nothing matches.
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetByDomain(ctx context.Context, domain string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRoleAndOrg(ctx context.Context, id, role, orgID string) error
}

// Auditor appends to the audit log. It never fails the caller.
type Auditor interface {
	Record(ctx context.Context, action, actorID string)
}

// Identity is the verified subject of an identity-provider token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type Service struct {
	orgs             OrganizationStore
	users            UserStore
	audit            Auditor
	allowAdminSignup bool
	now              func() time.Time
}

func NewService(orgs OrganizationStore, users UserStore, audit Auditor, allowAdminSignup bool) *Service {
	return &Service{
		orgs:             orgs,
		users:            users,
		audit:            audit,
		allowAdminSignup: allowAdminSignup,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ResolveOrgForEmail resolves against the live organization directory.
func (s *Service) ResolveOrgForEmail(ctx context.Context, email string) (string, error) {
	if _, err := validator.EmailDomain(email); err != nil {
		return "", ErrNoDomain
	}
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return "", apperrors.Store("list organizations", err)
	}
	return ResolveOrg(orgs, email)
}

// Register creates the profile for a newly authenticated subject. Admins
// belong to no organization; everyone else is placed by email domain.
func (s *Service) Register(ctx context.Context, id Identity, role string) (*models.User, error) {
	if id.Subject == "" {
		return nil, apperrors.Unauthorized("missing identity")
	}
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser, models.RoleManager:
	case models.RoleAdmin:
		if !s.allowAdminSignup {
			return nil, apperrors.Forbidden("admin signup is disabled")
		}
	default:
		return nil, apperrors.Validation("role must be user, manager or admin")
	}

	existing, err := s.users.GetByID(ctx, id.Subject)
	if err != nil {
		return nil, apperrors.Store("load user", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("user is already registered")
	}

	var orgID string
	if role != models.RoleAdmin {
		orgID, err = s.ResolveOrgForEmail(ctx, id.Email)
		if err != nil {
			return nil, err
		}
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		if at := strings.Index(id.Email, "@"); at > 0 {
			name = id.Email[:at]
		}
	}

	user := &models.User{
		ID:        id.Subject,
		Email:     strings.TrimSpace(id.Email),
		Name:      name,
		Role:      role,
		OrgID:     orgID,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperrors.Conflict("user is already registered")
		}
		return nil, apperrors.Store("create user", err)
	}

	log.Info().Str("actor", user.ID).Str("role", role).Str("org_id", orgID).Msg("user registered")
	return user, nil
}

func (s *Service) CreateOrganization(ctx context.Context, actor models.Actor, name, emailDomain string) (*models.Organization, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("only admins can create organizations")
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(emailDomain) == "" {
		return nil, apperrors.Validation("name and email domain are required")
	}
	domain, err := validator.NormalizeDomain(emailDomain)
	if err != nil {
		return nil, apperrors.Validation("email domain is not a valid hostname")
	}

	existing, err := s.orgs.GetByDomain(ctx, domain)
	if err != nil {
		return nil, apperrors.Store("load organization", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("domain %s already belongs to %s", domain, existing.Name))
	}

	org := &models.Organization{
		ID:          "org_" + uuid.New().String(),
		Name:        name,
		EmailDomain: domain,
		CreatedAt:   s.now(),
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("domain %s is already registered", domain))
		}
		return nil, apperrors.Store("create organization", err)
	}

	s.audit.Record(ctx, "Created organization "+name, actor.UserID)
	return org, nil
}

// AssignManager makes the user a manager of the organization, replacing any
// previous role and membership.
func (s *Service) AssignManager(ctx context.Context, actor models.Actor, orgID, userID string) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("only admins can assign managers")
	}
	if orgID == "" || userID == "" {
		return nil, apperrors.Validation("organization and user are required")
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.Store("load organization", err)
	}
	if org == nil {
		return nil, apperrors.NotFound("organization not found")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	if err := s.users.UpdateRoleAndOrg(ctx, userID, models.RoleManager, orgID); err != nil {
		return nil, apperrors.Store("assign manager", err)
	}
	user.Role = models.RoleManager
	user.OrgID = orgID

	s.audit.Record(ctx, fmt.Sprintf("Assigned %s as manager of %s", user.Email, org.Name), actor.UserID)
	return user, nil
}

func (s *Service) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store("load organization", err)
	}
	if org == nil {
		return nil, apperrors.NotFound("organization not found")
	}
	return org, nil
}

func (s *Service) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, apperrors.Store("list organizations", err)
	}
	return orgs, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store("load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

// ListUsers is admin-only.
func (s *Service) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("only admins can list users")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Store("list users", err)
	}
	return users, nil
}
