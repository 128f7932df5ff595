package amazonclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// listPaged percorre as páginas de um endpoint v2 com startIndex/count.
func listPaged[T any](ctx context.Context, c *AmazonClient, profileID, path string, query url.Values) ([]T, error) {
	out := make([]T, 0)

	for start := 0; ; start += c.pageSize {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("startIndex", strconv.Itoa(start))
		q.Set("count", strconv.Itoa(c.pageSize))

		body, err := c.do(ctx, request{
			method:    http.MethodGet,
			path:      path,
			query:     q,
			profileID: profileID,
			cacheable: true,
		})
		if err != nil {
			return nil, err
		}

		var page []T
		if err := json.Unmarshal(body, &page); err != nil {
			logrus.WithError(err).WithField("path", path).Error("amazon: erro ao decodificar página")
			return nil, fmt.Errorf("erro ao decodificar %s: %w", path, err)
		}

		out = append(out, page...)
		if len(page) < c.pageSize {
			return out, nil
		}
	}
}

// mutateInChunks envia o lote inteiro e, se a API recusar pelo tamanho, divide
// ao meio recursivamente. Em caso de erro, os resultados retornados cobrem apenas
// o prefixo de items que chegou a ser aplicado; o restante deve ser tratado como falho.
func mutateInChunks[T any](ctx context.Context, c *AmazonClient, profileID, method, path string, items []T) ([]amazondomain.MutationResult, error) {
	if len(items) == 0 {
		return []amazondomain.MutationResult{}, nil
	}

	body, err := c.do(ctx, request{
		method:    method,
		path:      path,
		body:      items,
		profileID: profileID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBatchTooLarge) && len(items) > 1 {
			mid := len(items) / 2
			logrus.WithFields(logrus.Fields{
				"path":  path,
				"items": len(items),
			}).Warn("amazon: lote recusado pelo tamanho, dividindo ao meio")

			left, err := mutateInChunks(ctx, c, profileID, method, path, items[:mid])
			if err != nil {
				return left, err
			}
			right, err := mutateInChunks(ctx, c, profileID, method, path, items[mid:])
			return append(left, right...), err
		}
		return []amazondomain.MutationResult{}, err
	}

	c.purge(profileID, path)

	var results []amazondomain.MutationResult
	if err := json.Unmarshal(body, &results); err != nil {
		return []amazondomain.MutationResult{}, fmt.Errorf("erro ao decodificar resultado de %s: %w", path, err)
	}

	if len(results) != len(items) {
		return []amazondomain.MutationResult{}, &domain.APIError{
			StatusCode: http.StatusOK,
			Endpoint:   path,
			Body:       fmt.Sprintf("resposta com %d itens para %d enviados", len(results), len(items)),
		}
	}

	return results, nil
}
