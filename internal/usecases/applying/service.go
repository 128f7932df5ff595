package applying

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// Report é o desfecho de Apply. Results é alinhado com as ações recebidas.
type Report struct {
	Results   []domain.ActionResult
	Truncated bool
	Cancelled bool
}

func (r *Report) Count(outcome domain.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

type BatchApplier struct {
	submitter    Submitter
	minBid       decimal.Decimal
	maxBid       decimal.Decimal
	maxBatchSize int
	retryOnce    bool
}

func NewBatchApplier(submitter Submitter, rules config.Rules, retryOnce bool) *BatchApplier {
	size := rules.MaxBatchSize
	if size < 1 {
		size = 1
	}

	return &BatchApplier{
		submitter:    submitter,
		minBid:       rules.MinBidDecimal(),
		maxBid:       rules.MaxBidDecimal(),
		maxBatchSize: size,
		retryOnce:    retryOnce,
	}
}

type pending struct {
	index  int
	action domain.Action
}

// Apply particiona as ações por operação e envia lotes de até MaxBatchSize itens.
// O contexto é verificado apenas entre lotes: prazo vencido marca o restante como
// skipped(truncated) e cancelamento como skipped(cancelled). Um lote já enviado termina
// mesmo que o contexto seja cancelado durante o envio.
// O erro retornado é sempre fatal (autenticação); falhas de itens ficam no Report.
func (a *BatchApplier) Apply(ctx context.Context, profileID string, actions []domain.Action, dryRun bool) (*Report, error) {
	report := &Report{Results: make([]domain.ActionResult, len(actions))}
	done := make([]bool, len(actions))

	mark := func(p pending, outcome domain.Outcome, reason domain.SkipReason, err error) {
		res := domain.ActionResult{Action: p.action, Outcome: outcome, SkipReason: reason}
		if err != nil {
			res.Error = err.Error()
		}
		report.Results[p.index] = res
		done[p.index] = true
	}

	skipRemaining := func(reason domain.SkipReason) {
		for i, action := range actions {
			if !done[i] {
				mark(pending{index: i, action: action}, domain.OutcomeSkipped, reason, nil)
			}
		}
	}

	partitions := make(map[domain.OperationType][]pending)
	for i, action := range actions {
		p := pending{index: i, action: action}

		if err := action.Validate(a.minBid, a.maxBid); err != nil {
			logrus.WithFields(logrus.Fields{
				"entity_id": action.EntityID,
				"type":      action.Type,
			}).WithError(err).Warn("applier: ação descartada pela validação")
			mark(p, domain.OutcomeSkipped, domain.SkipValidation, err)
			continue
		}

		if dryRun {
			mark(p, domain.OutcomeSkipped, domain.SkipDryRun, nil)
			continue
		}

		op := action.Type.Operation()
		partitions[op] = append(partitions[op], p)
	}

	submitCtx := context.WithoutCancel(ctx)

	for _, op := range domain.Operations {
		items := partitions[op]

		for start := 0; start < len(items); start += a.maxBatchSize {
			if reason, stop := boundaryStop(ctx); stop {
				logrus.WithFields(logrus.Fields{
					"operation": op,
					"reason":    reason,
				}).Warn("applier: interrompendo antes do próximo lote")
				skipRemaining(reason)
				report.Truncated = reason == domain.SkipTruncated
				report.Cancelled = reason == domain.SkipCancelled
				return report, nil
			}

			batch := items[start:min(start+a.maxBatchSize, len(items))]
			if err := a.submitBatch(submitCtx, profileID, op, batch, mark); err != nil {
				logrus.WithError(err).WithField("operation", op).Error("applier: erro fatal, abortando aplicação")
				skipRemaining(domain.SkipAborted)
				return report, err
			}
		}
	}

	return report, nil
}

func boundaryStop(ctx context.Context) (domain.SkipReason, bool) {
	switch {
	case ctx.Err() == nil:
		return "", false
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.SkipTruncated, true
	default:
		return domain.SkipCancelled, true
	}
}

// submitBatch envia um lote e, quando habilitado, reenvia uma vez cada item que falhou.
// Um lote recusado por inteiro (sem resultado por item) também é reenviado item a item,
// para que um único item inválido não derrube os demais. Retorna erro apenas quando a
// falha é fatal.
func (a *BatchApplier) submitBatch(
	ctx context.Context,
	profileID string,
	op domain.OperationType,
	batch []pending,
	mark func(pending, domain.Outcome, domain.SkipReason, error),
) error {
	actions := make([]domain.Action, len(batch))
	for i, p := range batch {
		actions[i] = p.action
	}

	itemErrs, err := a.submitter.Submit(ctx, profileID, op, actions)
	if err != nil && domain.IsFatal(err) {
		return err
	}

	failed := make([]pending, 0)
	for i, p := range batch {
		itemErr := err
		if i < len(itemErrs) {
			itemErr = itemErrs[i]
		}

		if itemErr == nil {
			mark(p, domain.OutcomeApplied, "", nil)
			continue
		}
		if domain.IsFatal(itemErr) {
			return itemErr
		}
		// Item recusado localmente pelo integrador (id inválido): não foi enviado.
		if errors.Is(itemErr, domain.ErrValidation) {
			logrus.WithFields(logrus.Fields{
				"operation": op,
				"entity_id": p.action.EntityID,
			}).WithError(itemErr).Warn("applier: ação descartada pela validação")
			mark(p, domain.OutcomeSkipped, domain.SkipValidation, itemErr)
			continue
		}
		failed = append(failed, p)
		mark(p, domain.OutcomeFailed, "", itemErr)
	}

	if len(failed) == 0 {
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"operation": op,
		"batch":     len(batch),
		"failed":    len(failed),
	}).Warn("applier: lote com falhas")

	if !a.retryOnce || !individualRetry(err, len(batch)) {
		return nil
	}

	for _, p := range failed {
		errs, err := a.submitter.Submit(ctx, profileID, op, []domain.Action{p.action})
		if err == nil && len(errs) > 0 {
			err = errs[0]
		}

		if err == nil {
			mark(p, domain.OutcomeApplied, "", nil)
			continue
		}
		if domain.IsFatal(err) {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"operation": op,
			"entity_id": p.action.EntityID,
		}).WithError(err).Warn("applier: item falhou após nova tentativa")
		mark(p, domain.OutcomeFailed, "", fmt.Errorf("falhou após nova tentativa individual: %w", err))
	}

	return nil
}

// individualRetry diz se os itens que falharam devem ser reenviados um a um. Lotes
// recusados por cota ou erro transitório ficam como falhos até a próxima execução.
func individualRetry(batchErr error, batchSize int) bool {
	switch {
	case batchErr == nil:
		return true
	case batchSize < 2:
		return false
	case domain.IsRetryable(batchErr):
		return false
	default:
		return true
	}
}
