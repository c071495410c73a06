package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/repository"
	"github.com/brandcast/brandcast/pkg/utils"
)

// ErrNotConfigured means the brand has no active, posting-enabled credential
// for the platform. Callers must treat it as an expected per-platform
// condition, not a fault.
var ErrNotConfigured = errors.New("no active posting credential for platform")

type CredentialResolver interface {
	Resolve(ctx context.Context, brandID int64, p platform.Platform) (platform.Credential, error)
}

type credentialResolver struct {
	cr        repository.CredentialRepository
	secretKey []byte
}

func NewCredentialResolver(cr repository.CredentialRepository, secretKey []byte) CredentialResolver {
	return &credentialResolver{cr: cr, secretKey: secretKey}
}

func (r *credentialResolver) Resolve(ctx context.Context, brandID int64, p platform.Platform) (platform.Credential, error) {
	record, err := r.cr.GetActive(ctx, brandID, p.String())
	if err != nil {
		return platform.Credential{}, fmt.Errorf("credential lookup for brand %d on %s: %w", brandID, p, err)
	}
	if record == nil {
		return platform.Credential{}, ErrNotConfigured
	}

	accessToken, err := utils.Decrypt(record.AccessToken, r.secretKey)
	if err != nil {
		return platform.Credential{}, fmt.Errorf("decrypting access token for brand %d on %s: %w", brandID, p, err)
	}

	return platform.Credential{
		AccountID:   record.AccountID,
		AccessToken: accessToken,
	}, nil
}
