package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/claimbridge/claimbridge/internal/domain"
)

func doClaimsList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "claims.list", nil, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, "/api/claims", nil, out)
}

func doClaimsGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "claims.get", map[string]any{"id": id}, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, fmt.Sprintf("/api/claims/%d", id), nil, out)
}

func doClaimsCreate(ctx context.Context, cfg cliConfig, in domain.CreateClaimInput, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "claims.create", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/claims", in, out)
}

func doClaimsSetStatus(ctx context.Context, cfg cliConfig, id uint, status domain.ClaimStatus) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "claims.update_status", map[string]any{"id": id, "status": status}, nil)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPatch, fmt.Sprintf("/api/claims/%d", id), map[string]any{"status": status}, nil)
}

func doClaimsGenerate(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "claims.generate", nil, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/claims/generate", nil, out)
}

func doNotesList(ctx context.Context, cfg cliConfig, claimID uint, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "notes.list", map[string]any{"claim_id": claimID}, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, fmt.Sprintf("/api/claims/%d/notes", claimID), nil, out)
}

func doNotesAdd(ctx context.Context, cfg cliConfig, in domain.CreateNoteInput, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "notes.create", in, out)
	}
	body := map[string]any{"author_id": in.AuthorID, "note": in.Note}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, fmt.Sprintf("/api/claims/%d/notes", in.ClaimID), body, out)
}

func doAdminsList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "admins.list", nil, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, "/api/admins", nil, out)
}

func doAdminsCreate(ctx context.Context, cfg cliConfig, in domain.CreateAdminInput, out any) error {
	if cfg.Transport == transportUDS {
		return newRPCClient(cfg.Socket).call(ctx, "admins.create", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/admins", in, out)
}

func filterByStatus(claims []domain.Claim, status string) []domain.Claim {
	if status == "" {
		return claims
	}
	out := make([]domain.Claim, 0, len(claims))
	for _, c := range claims {
		if string(c.Status) == status {
			out = append(out, c)
		}
	}
	return out
}
