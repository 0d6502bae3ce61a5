package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/claimbridge/claimbridge/internal/adapters/db/sqlstore"
	httpadapter "github.com/claimbridge/claimbridge/internal/adapters/http"
	rpcadapter "github.com/claimbridge/claimbridge/internal/adapters/rpcjson"
	"github.com/claimbridge/claimbridge/internal/application"
	"github.com/claimbridge/claimbridge/internal/claimgen"
	"github.com/claimbridge/claimbridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// startBackends serves one store over both transports and returns a client
// config for each.
func startBackends(t *testing.T) map[string]cliConfig {
	t.Helper()
	dir, err := os.MkdirTemp("", "cbcli")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(dir, "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(db) })
	svc := application.NewClaimService(sqlstore.NewClaimRepository(db), zap.NewNop(), application.WithGenerator(claimgen.New(11)))
	require.NoError(t, svc.Initialize(context.Background()))

	ts := httptest.NewServer(httpadapter.NewRouter(svc, zap.NewNop(), nil))
	t.Cleanup(ts.Close)

	socket := filepath.Join(dir, "cli.sock")
	rpcSrv, err := rpcadapter.Start(socket, svc, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rpcSrv.Close() })

	return map[string]cliConfig{
		transportHTTP: {Transport: transportHTTP, Server: ts.URL},
		transportUDS:  {Transport: transportUDS, Socket: socket},
	}
}

var transports = []string{transportHTTP, transportUDS}

func TestClaimOpsOverBothTransports(t *testing.T) {
	for _, name := range transports {
		t.Run(name, func(t *testing.T) {
			cfg := startBackends(t)[name]
			ctx := context.Background()

			var created domain.Claim
			require.NoError(t, doClaimsCreate(ctx, cfg, domain.CreateClaimInput{
				ClaimantName: "Noor Haddad",
				Date:         "2024-05-17",
				Summary:      "Hail damage",
				Details:      "Roof tiles cracked.",
			}, &created))
			assert.NotZero(t, created.ID)
			assert.Equal(t, domain.StatusNew, created.Status)

			require.NoError(t, doClaimsSetStatus(ctx, cfg, created.ID, domain.StatusInReview))

			var got domain.Claim
			require.NoError(t, doClaimsGet(ctx, cfg, created.ID, &got))
			assert.Equal(t, domain.StatusInReview, got.Status)
			assert.Equal(t, "Noor Haddad", got.ClaimantName)

			var note domain.ClaimNote
			require.NoError(t, doNotesAdd(ctx, cfg, domain.CreateNoteInput{ClaimID: created.ID, AuthorID: "1", Note: "Adjuster assigned"}, &note))
			assert.Equal(t, created.ID, note.ClaimID)

			var notes []domain.ClaimNote
			require.NoError(t, doNotesList(ctx, cfg, created.ID, &notes))
			require.Len(t, notes, 1)
			require.NotNil(t, notes[0].AuthorName)
			assert.Equal(t, "Jane Smith", *notes[0].AuthorName)

			var generated domain.Claim
			require.NoError(t, doClaimsGenerate(ctx, cfg, &generated))
			assert.True(t, generated.Status.Valid())

			var claims []domain.Claim
			require.NoError(t, doClaimsList(ctx, cfg, &claims))
			assert.NotEmpty(t, claims)
			for _, c := range filterByStatus(claims, string(domain.StatusInReview)) {
				assert.Equal(t, domain.StatusInReview, c.Status)
			}
		})
	}
}

func TestAdminOpsOverBothTransports(t *testing.T) {
	for _, name := range transports {
		t.Run(name, func(t *testing.T) {
			cfg := startBackends(t)[name]
			ctx := context.Background()

			var admin domain.AdminUser
			require.NoError(t, doAdminsCreate(ctx, cfg, domain.CreateAdminInput{Name: "Ops", Email: "Ops@ClaimBridge.com", Role: domain.RoleAdmin}, &admin))
			assert.Equal(t, domain.RoleAdmin, admin.Role)
			assert.Equal(t, "ops@claimbridge.com", admin.Email)

			var admins []domain.AdminUser
			require.NoError(t, doAdminsList(ctx, cfg, &admins))
			assert.Len(t, admins, 3)

			err := doAdminsCreate(ctx, cfg, domain.CreateAdminInput{Name: "Dup", Email: "ops@claimbridge.com", Role: domain.RoleAdmin}, nil)
			require.Error(t, err)
		})
	}
}

func TestOpsSurfaceServerErrors(t *testing.T) {
	backends := startBackends(t)
	ctx := context.Background()

	err := doClaimsGet(ctx, backends[transportHTTP], 404, &domain.Claim{})
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Claim not found", apiErr.Message)

	err = doClaimsSetStatus(ctx, backends[transportUDS], 1, "Lost")
	var rpcErr *rpcCallError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, rpcadapter.CodeInvalidInput, rpcErr.Code)
	assert.Equal(t, "Invalid status", rpcErr.Message)

	err = doClaimsList(ctx, cliConfig{Transport: transportUDS, Socket: filepath.Join(t.TempDir(), "missing.sock")}, nil)
	assert.Error(t, err)
}

func TestPrintClaimsTable(t *testing.T) {
	var buf bytes.Buffer
	printClaims(&buf, nil)
	assert.Equal(t, "no results\n", buf.String())

	buf.Reset()
	printClaims(&buf, []domain.Claim{{ID: 7, Date: "2024-01-02", Status: domain.StatusClosed, ClaimantName: "Ada", Summary: "Line one\nline two"}})
	out := buf.String()
	assert.Contains(t, out, "CLAIMANT")
	assert.Contains(t, out, "Line one line two")
	assert.Contains(t, out, "Closed")
}

func TestPrintNotesUnknownAuthor(t *testing.T) {
	var buf bytes.Buffer
	printNotes(&buf, []domain.ClaimNote{{ID: 1, Note: "orphan"}})
	assert.Contains(t, buf.String(), "Unknown author")
	assert.Contains(t, buf.String(), "-")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestDBInitCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "init.db")
	args := []string{"claimbridge", "db", "init", "--db-driver", "sqlite", "--db-dsn", dsn}

	require.NoError(t, rootCommand().Run(context.Background(), args))
	require.NoError(t, rootCommand().Run(context.Background(), args))

	db, err := sqlstore.Open(sqlstore.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(db) })
	admins, err := sqlstore.NewClaimRepository(db).ListAdmins(context.Background())
	require.NoError(t, err)
	assert.Len(t, admins, len(domain.DemoUsers))
}

func TestClientConfigRejectsUnknownTransport(t *testing.T) {
	cmd := rootCommand()
	cmd.Commands = append(cmd.Commands, &cli.Command{
		Name: "probe",
		Action: func(_ context.Context, c *cli.Command) error {
			_, err := clientConfig(c)
			return err
		},
	})
	err := cmd.Run(context.Background(), []string{"claimbridge", "--transport", "smtp", "probe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}
