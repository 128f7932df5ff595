package applying

import (
	"context"

	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

// Submitter envia um lote de ações de uma mesma operação. O slice de erros é alinhado
// com actions (nil para itens aplicados); o erro de retorno indica falha da chamada inteira.
type Submitter interface {
	Submit(ctx context.Context, profileID string, op domain.OperationType, actions []domain.Action) ([]error, error)
}

// Applier aplica as ações de uma execução.
type Applier interface {
	Apply(ctx context.Context, profileID string, actions []domain.Action, dryRun bool) (*Report, error)
}
