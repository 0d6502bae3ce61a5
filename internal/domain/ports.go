package domain

import "context"

type ClaimRepository interface {
	Initialize(ctx context.Context) error
	Ping(ctx context.Context) error

	ListClaims(ctx context.Context) ([]Claim, error)
	GetClaim(ctx context.Context, id uint) (Claim, error)
	CreateClaim(ctx context.Context, value Claim) (Claim, error)
	// UpdateClaimStatus does not check that the claim exists; an unknown id
	// is a successful no-op reported with matched == false.
	UpdateClaimStatus(ctx context.Context, id uint, status ClaimStatus) (matched bool, err error)

	ListNotes(ctx context.Context, claimID uint) ([]ClaimNote, error)
	CreateNote(ctx context.Context, value ClaimNote) (ClaimNote, error)

	ListAdmins(ctx context.Context) ([]AdminUser, error)
	CreateAdmin(ctx context.Context, value AdminUser) (AdminUser, error)
}
