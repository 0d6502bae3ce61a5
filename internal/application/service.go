package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/claimbridge/claimbridge/internal/claimgen"
	"github.com/claimbridge/claimbridge/internal/domain"
	"github.com/claimbridge/claimbridge/internal/metrics"
	"go.uber.org/zap"
)

const msgMissingFields = "Missing required fields"

type ClaimService struct {
	repo      domain.ClaimRepository
	log       *zap.Logger
	metrics   *metrics.Metrics
	generator *claimgen.Generator
}

type Option func(*ClaimService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ClaimService) { s.metrics = m }
}

func WithGenerator(g *claimgen.Generator) Option {
	return func(s *ClaimService) { s.generator = g }
}

func NewClaimService(repo domain.ClaimRepository, logger *zap.Logger, opts ...Option) *ClaimService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ClaimService{
		repo: repo,
		log:  logger.Named("claims"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = claimgen.New(0)
	}
	return s
}

func (s *ClaimService) Initialize(ctx context.Context) error {
	err := s.repo.Initialize(ctx)
	s.observe("initialize", err)
	if err != nil {
		s.log.Error("schema initialization failed", zap.Error(err))
		return err
	}
	s.log.Info("schema initialized", zap.Int("demo_users", len(domain.DemoUsers)))
	return nil
}

func (s *ClaimService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ClaimService) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	claims, err := s.repo.ListClaims(ctx)
	s.observe("list_claims", err)
	if err != nil {
		s.log.Error("list claims failed", zap.Error(err))
		return []domain.Claim{}, err
	}
	if claims == nil {
		claims = []domain.Claim{}
	}
	return claims, nil
}

func (s *ClaimService) GetClaim(ctx context.Context, id uint) (domain.Claim, error) {
	claim, err := s.repo.GetClaim(ctx, id)
	s.observe("get_claim", err)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Debug("claim not found", zap.Uint("claim_id", id))
		return domain.Claim{}, err
	}
	if err != nil {
		s.log.Error("get claim failed", zap.Uint("claim_id", id), zap.Error(err))
		return domain.Claim{}, err
	}
	return claim, nil
}

func (s *ClaimService) CreateClaim(ctx context.Context, in domain.CreateClaimInput) (domain.Claim, error) {
	value, err := validateClaim(in)
	if err != nil {
		return domain.Claim{}, err
	}

	created, err := s.repo.CreateClaim(ctx, value)
	s.observe("create_claim", err)
	if err != nil {
		s.log.Error("create claim failed", zap.String("claimant", value.ClaimantName), zap.Error(err))
		return domain.Claim{}, err
	}
	s.log.Info("claim created", zap.Uint("claim_id", created.ID), zap.String("status", string(created.Status)))
	return created, nil
}

// GenerateClaim creates a claim filled with fake data.
func (s *ClaimService) GenerateClaim(ctx context.Context) (domain.Claim, error) {
	return s.CreateClaim(ctx, s.generator.Claim())
}

func (s *ClaimService) UpdateClaimStatus(ctx context.Context, id uint, status domain.ClaimStatus) error {
	if !status.Valid() {
		return domain.Invalid("Invalid status")
	}

	matched, err := s.repo.UpdateClaimStatus(ctx, id, status)
	s.observe("update_claim_status", err)
	if err != nil {
		s.log.Error("update claim status failed", zap.Uint("claim_id", id), zap.String("status", string(status)), zap.Error(err))
		return err
	}
	if !matched {
		s.log.Debug("status update matched no claim", zap.Uint("claim_id", id))
		return nil
	}
	s.log.Info("claim status updated", zap.Uint("claim_id", id), zap.String("status", string(status)))
	return nil
}

func (s *ClaimService) ListNotes(ctx context.Context, claimID uint) ([]domain.ClaimNote, error) {
	notes, err := s.repo.ListNotes(ctx, claimID)
	s.observe("list_notes", err)
	if err != nil {
		s.log.Error("list notes failed", zap.Uint("claim_id", claimID), zap.Error(err))
		return []domain.ClaimNote{}, err
	}
	if notes == nil {
		notes = []domain.ClaimNote{}
	}
	return notes, nil
}

func (s *ClaimService) CreateNote(ctx context.Context, in domain.CreateNoteInput) (domain.ClaimNote, error) {
	if in.ClaimID == 0 {
		return domain.ClaimNote{}, domain.Invalid("Invalid claim id")
	}
	authorID := strings.TrimSpace(in.AuthorID)
	note := strings.TrimSpace(in.Note)
	if authorID == "" || note == "" {
		return domain.ClaimNote{}, domain.Invalid(msgMissingFields)
	}

	created, err := s.repo.CreateNote(ctx, domain.ClaimNote{
		ClaimID:  in.ClaimID,
		AuthorID: authorID,
		Note:     note,
	})
	s.observe("create_note", err)
	if err != nil {
		s.log.Error("create note failed", zap.Uint("claim_id", in.ClaimID), zap.String("author_id", authorID), zap.Error(err))
		return domain.ClaimNote{}, err
	}
	s.log.Info("note created", zap.Uint("claim_id", in.ClaimID), zap.Uint("note_id", created.ID))
	return created, nil
}

func (s *ClaimService) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := s.repo.ListAdmins(ctx)
	s.observe("list_admins", err)
	if err != nil {
		s.log.Error("list admins failed", zap.Error(err))
		return []domain.AdminUser{}, err
	}
	if admins == nil {
		admins = []domain.AdminUser{}
	}
	return admins, nil
}

func (s *ClaimService) CreateAdmin(ctx context.Context, in domain.CreateAdminInput) (domain.AdminUser, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := domain.AdminRole(strings.TrimSpace(string(in.Role)))
	if name == "" || email == "" || role == "" {
		return domain.AdminUser{}, domain.Invalid(msgMissingFields)
	}
	if !role.Valid() {
		return domain.AdminUser{}, domain.Invalid("Invalid role")
	}

	created, err := s.repo.CreateAdmin(ctx, domain.AdminUser{Name: name, Email: email, Role: role})
	s.observe("create_admin", err)
	if err != nil {
		s.log.Error("create admin failed", zap.String("email", email), zap.Error(err))
		return domain.AdminUser{}, err
	}
	s.log.Info("admin created", zap.Uint("admin_id", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

// IdentityForRole maps a role switcher value to a demo identity. Anything
// other than super-admin acts as the plain admin.
func IdentityForRole(role string) domain.Identity {
	want := domain.RoleAdmin
	if domain.AdminRole(role) == domain.RoleSuperAdmin {
		want = domain.RoleSuperAdmin
	}
	for _, u := range domain.DemoUsers {
		if u.Role == want {
			return domain.Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
		}
	}
	return domain.Identity{Role: want}
}

func validateClaim(in domain.CreateClaimInput) (domain.Claim, error) {
	value := domain.Claim{
		ClaimantName: strings.TrimSpace(in.ClaimantName),
		Date:         strings.TrimSpace(in.Date),
		Status:       domain.ClaimStatus(strings.TrimSpace(string(in.Status))),
		Summary:      strings.TrimSpace(in.Summary),
		Details:      strings.TrimSpace(in.Details),
	}
	if value.ClaimantName == "" || value.Date == "" || value.Summary == "" || value.Details == "" {
		return domain.Claim{}, domain.Invalid(msgMissingFields)
	}
	if _, err := time.Parse(domain.DateLayout, value.Date); err != nil {
		return domain.Claim{}, domain.Invalid("Invalid date, expected YYYY-MM-DD")
	}
	if value.Status == "" {
		value.Status = domain.StatusNew
	}
	if !value.Status.Valid() {
		return domain.Claim{}, domain.Invalid("Invalid status")
	}
	return value, nil
}

func (s *ClaimService) observe(op string, err error) {
	s.metrics.ObserveStore(op, err)
}
