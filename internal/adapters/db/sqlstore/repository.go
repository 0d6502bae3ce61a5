package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claimbridge/claimbridge/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type ClaimRepository struct {
	db *gorm.DB
}

var _ domain.ClaimRepository = (*ClaimRepository)(nil)

// Open connects to the store. SQLite paths get foreign keys switched on so
// that claim notes cascade with their claim.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return gorm.Open(sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        sqliteDSN(dsn),
		}, cfg)
	case DriverPostgres:
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Initialize creates the schema when absent and seeds the demo users. Running
// it again leaves the store unchanged.
func (r *ClaimRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(ctx, r.db); err != nil {
		return err
	}

	seed := make([]UserModel, 0, len(domain.DemoUsers))
	for _, u := range domain.DemoUsers {
		seed = append(seed, UserModel{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)})
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return classify("seed demo users", err)
	}

	// Explicit ids do not advance a SERIAL sequence.
	if r.db.Dialector.Name() == DriverPostgres {
		err := r.db.WithContext(ctx).Exec(
			"SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT COALESCE(MAX(id), 1) FROM users))",
		).Error
		if err != nil {
			return classify("sync users sequence", err)
		}
	}
	return nil
}

func (r *ClaimRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *ClaimRepository) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	rows := make([]ClaimModel, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, classify("list claims", err)
	}
	result := make([]domain.Claim, 0, len(rows))
	for _, m := range rows {
		result = append(result, claimFromModel(m))
	}
	return result, nil
}

func (r *ClaimRepository) GetClaim(ctx context.Context, id uint) (domain.Claim, error) {
	var m ClaimModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return domain.Claim{}, classify("get claim", err)
	}
	return claimFromModel(m), nil
}

func (r *ClaimRepository) CreateClaim(ctx context.Context, value domain.Claim) (domain.Claim, error) {
	status := value.Status
	if status == "" {
		status = domain.StatusNew
	}
	m := ClaimModel{
		ClaimantName: value.ClaimantName,
		Date:         value.Date,
		Status:       string(status),
		Summary:      value.Summary,
		Details:      value.Details,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Claim{}, classify("create claim", err)
	}
	return claimFromModel(m), nil
}

func (r *ClaimRepository) UpdateClaimStatus(ctx context.Context, id uint, status domain.ClaimStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&ClaimModel{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return false, classify("update claim status", res.Error)
	}
	return res.RowsAffected > 0, nil
}

const noteSelect = `
SELECT cn.id,
       cn.claim_id,
       cn.author_id,
       u.name AS author_name,
       cn.note,
       cn.timestamp
FROM claim_notes cn
LEFT JOIN users u ON CAST(u.id AS TEXT) = cn.author_id
`

type noteRow struct {
	ID         uint
	ClaimID    uint
	AuthorID   string
	AuthorName *string
	Note       string
	Timestamp  time.Time
}

func (n noteRow) toDomain() domain.ClaimNote {
	return domain.ClaimNote{
		ID:         n.ID,
		ClaimID:    n.ClaimID,
		AuthorID:   n.AuthorID,
		AuthorName: n.AuthorName,
		Note:       n.Note,
		Timestamp:  n.Timestamp,
	}
}

func (r *ClaimRepository) ListNotes(ctx context.Context, claimID uint) ([]domain.ClaimNote, error) {
	rows := make([]noteRow, 0)
	err := r.db.WithContext(ctx).Raw(noteSelect+`
WHERE cn.claim_id = ?
ORDER BY cn.timestamp ASC, cn.id ASC
`, claimID).Scan(&rows).Error
	if err != nil {
		return nil, classify("list notes", err)
	}
	result := make([]domain.ClaimNote, 0, len(rows))
	for _, n := range rows {
		result = append(result, n.toDomain())
	}
	return result, nil
}

// CreateNote inserts the note and reads it back through the author join.
// The two statements are not wrapped in a transaction.
func (r *ClaimRepository) CreateNote(ctx context.Context, value domain.ClaimNote) (domain.ClaimNote, error) {
	m := ClaimNoteModel{ClaimID: value.ClaimID, AuthorID: value.AuthorID, Note: value.Note}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.ClaimNote{}, classify("create note", err)
	}

	rows := make([]noteRow, 0, 1)
	if err := r.db.WithContext(ctx).Raw(noteSelect+"WHERE cn.id = ?", m.ID).Scan(&rows).Error; err != nil {
		return domain.ClaimNote{}, classify("read back note", err)
	}
	if len(rows) == 0 {
		return domain.ClaimNote{}, fmt.Errorf("read back note %d: %w", m.ID, domain.ErrNotFound)
	}
	return rows[0].toDomain(), nil
}

func (r *ClaimRepository) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	rows := make([]UserModel, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, classify("list admins", err)
	}
	result := make([]domain.AdminUser, 0, len(rows))
	for _, m := range rows {
		result = append(result, adminFromModel(m))
	}
	return result, nil
}

func (r *ClaimRepository) CreateAdmin(ctx context.Context, value domain.AdminUser) (domain.AdminUser, error) {
	m := UserModel{Name: value.Name, Email: value.Email, Role: string(value.Role)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.AdminUser{}, classify("create admin", err)
	}
	return adminFromModel(m), nil
}

func claimFromModel(m ClaimModel) domain.Claim {
	return domain.Claim{
		ID:           m.ID,
		ClaimantName: m.ClaimantName,
		Date:         m.Date,
		Status:       domain.ClaimStatus(m.Status),
		Summary:      m.Summary,
		Details:      m.Details,
		CreatedAt:    m.CreatedAt,
	}
}

func adminFromModel(m UserModel) domain.AdminUser {
	return domain.AdminUser{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      domain.AdminRole(m.Role),
		CreatedAt: m.CreatedAt,
	}
}
