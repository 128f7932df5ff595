package amazonclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
)

const pathProfiles = "/v2/profiles"

// OAuthCheck é o resultado da verificação de credenciais.
type OAuthCheck struct {
	Token    TokenStatus            `json:"token"`
	Profiles []amazondomain.Profile `json:"profiles"`
}

func (c *AmazonClient) GetProfiles(ctx context.Context) ([]amazondomain.Profile, error) {
	return c.getProfiles(ctx, true)
}

func (c *AmazonClient) getProfiles(ctx context.Context, cacheable bool) ([]amazondomain.Profile, error) {
	body, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      pathProfiles,
		cacheable: cacheable,
	})
	if err != nil {
		return nil, err
	}

	var profiles []amazondomain.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		logrus.WithError(err).Error("amazon: erro ao decodificar perfis")
		return nil, fmt.Errorf("erro ao decodificar perfis: %w", err)
	}

	return profiles, nil
}

// CheckOAuth troca o refresh token e lista os perfis acessíveis, sem cache.
func (c *AmazonClient) CheckOAuth(ctx context.Context) (*OAuthCheck, error) {
	if err := c.tokenManager.RefreshToken(ctx); err != nil {
		return nil, err
	}

	profiles, err := c.getProfiles(ctx, false)
	if err != nil {
		return nil, err
	}

	return &OAuthCheck{
		Token:    c.tokenManager.Status(),
		Profiles: profiles,
	}, nil
}
