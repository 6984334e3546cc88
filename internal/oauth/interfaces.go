package oauth

import (
	"context"

	"github.com/joshdurbin/imagefeed/internal/domain"
)

// CodeExchanger performs the token endpoint call
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, tr domain.TokenRequest) (*domain.TokenResponse, error)
}

// TokenWriter persists the token obtained from an exchange
type TokenWriter interface {
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
