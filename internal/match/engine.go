package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"idreclaim/internal/realtime"
	"idreclaim/internal/report/models"
)

// LostStore is the slice of the lost-report store the engine needs: coarse
// candidate retrieval and the idempotent status write.
type LostStore interface {
	ListEligibleByType(ctx context.Context, docPrefix string) ([]models.LostReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.LostStatus) error
}

// FoundStore mirrors LostStore for found reports.
type FoundStore interface {
	ListEligibleByType(ctx context.Context, docPrefix string) ([]models.FoundReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.FoundStatus) error
}

// Alert describes one party's side of an accepted match.
type Alert struct {
	RecipientID   string
	DocumentType  string
	Region        string
	ReportID      uuid.UUID
	CounterpartID string
}

// Alerter persists a notification for the recipient and requests realtime
// delivery. Implemented by the notification service.
type Alerter interface {
	MatchAlert(ctx context.Context, alert Alert) error
}

// Engine runs the matching pipeline for one submitted report: retrieve the
// opposite-kind working set, score it, decide, transition both sides, and
// alert the affected parties. It runs synchronously inside the submitting
// request; there is no background loop.
type Engine struct {
	lost      LostStore
	found     FoundStore
	scorer    *Scorer
	threshold int
	alerter   Alerter
	publisher realtime.Publisher
	logger    *slog.Logger
}

type Option func(*Engine)

func WithThreshold(threshold int) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

func WithWeights(weights Weights) Option {
	return func(e *Engine) {
		e.scorer = NewScorer(weights)
	}
}

func NewEngine(lost LostStore, found FoundStore, alerter Alerter, publisher realtime.Publisher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		lost:      lost,
		found:     found,
		scorer:    NewScorer(DefaultWeights),
		threshold: DefaultThreshold,
		alerter:   alerter,
		publisher: publisher,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MatchLost searches open found reports for the document declared lost.
// Returns the number of accepted matches. The caller treats any error as a
// degraded (matched=false) submission, never as a submission failure.
func (e *Engine) MatchLost(ctx context.Context, lost models.LostReport) (int, error) {
	candidates, err := e.found.ListEligibleByType(ctx, DocTypePrefix(lost.DocumentType))
	if err != nil {
		return 0, fmt.Errorf("retrieve found candidates: %w", err)
	}

	byID := make(map[uuid.UUID]models.FoundReport, len(candidates))
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == lost.ID {
			continue
		}
		score := e.scorer.Score(LostAttributes(lost), FoundAttributes(c))
		candidatesScoredTotal.Inc()
		matchScores.Observe(float64(score))
		byID[c.ID] = c
		scored = append(scored, Scored{ID: c.ID, Score: score, CreatedAt: c.CreatedAt})
	}

	accepted := Decide(scored, e.threshold)
	if len(accepted) == 0 {
		return 0, nil
	}

	// The durable transition comes first; alerts describe applied state only.
	if err := e.lost.UpdateStatus(ctx, lost.ID, models.StatusMatched); err != nil {
		return 0, fmt.Errorf("transition lost report %s: %w", lost.ID, err)
	}

	matched := 0
	for _, a := range accepted {
		counterpart := byID[a.ID]
		if err := e.found.UpdateStatus(ctx, counterpart.ID, models.FoundMatched); err != nil {
			// Compensating log entry: the lost side already advanced.
			e.logger.ErrorContext(ctx, "match transition partially applied",
				"lost_id", lost.ID,
				"found_id", counterpart.ID,
				"error", err,
			)
			continue
		}
		matched++
		matchesAcceptedTotal.Inc()
		e.alertPair(ctx, counterpart.DocumentType, counterpart.Region, lost.ID,
			party{id: lost.OwnerID, counterpart: counterpart.FinderID},
			party{id: counterpart.FinderID, counterpart: lost.OwnerID},
		)
	}
	return matched, nil
}

// MatchFound searches open lost reports for the document just handed in.
func (e *Engine) MatchFound(ctx context.Context, found models.FoundReport) (int, error) {
	candidates, err := e.lost.ListEligibleByType(ctx, DocTypePrefix(found.DocumentType))
	if err != nil {
		return 0, fmt.Errorf("retrieve lost candidates: %w", err)
	}

	byID := make(map[uuid.UUID]models.LostReport, len(candidates))
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == found.ID {
			continue
		}
		score := e.scorer.Score(FoundAttributes(found), LostAttributes(c))
		candidatesScoredTotal.Inc()
		matchScores.Observe(float64(score))
		byID[c.ID] = c
		scored = append(scored, Scored{ID: c.ID, Score: score, CreatedAt: c.CreatedAt})
	}

	accepted := Decide(scored, e.threshold)
	if len(accepted) == 0 {
		return 0, nil
	}

	if err := e.found.UpdateStatus(ctx, found.ID, models.FoundMatched); err != nil {
		return 0, fmt.Errorf("transition found report %s: %w", found.ID, err)
	}

	matched := 0
	for _, a := range accepted {
		counterpart := byID[a.ID]
		if err := e.lost.UpdateStatus(ctx, counterpart.ID, models.StatusMatched); err != nil {
			e.logger.ErrorContext(ctx, "match transition partially applied",
				"found_id", found.ID,
				"lost_id", counterpart.ID,
				"error", err,
			)
			continue
		}
		matched++
		matchesAcceptedTotal.Inc()
		e.alertPair(ctx, found.DocumentType, found.Region, found.ID,
			party{id: counterpart.OwnerID, counterpart: found.FinderID},
			party{id: found.FinderID, counterpart: counterpart.OwnerID},
		)
	}
	return matched, nil
}

// MatchVaultTarget links a scan-triggered found report directly to the
// targeted owner's open reports of the same document type. Scoring is
// bypassed: the physical QR code already identifies the owner.
func (e *Engine) MatchVaultTarget(ctx context.Context, found models.FoundReport, ownerID string) (int, error) {
	candidates, err := e.lost.ListEligibleByType(ctx, DocTypePrefix(found.DocumentType))
	if err != nil {
		return 0, fmt.Errorf("retrieve lost candidates: %w", err)
	}

	matched := 0
	for _, c := range candidates {
		if c.OwnerID != ownerID {
			continue
		}
		if err := e.lost.UpdateStatus(ctx, c.ID, models.StatusMatched); err != nil {
			e.logger.ErrorContext(ctx, "vault match transition failed",
				"lost_id", c.ID, "error", err)
			continue
		}
		matched++
	}
	if matched == 0 {
		return 0, nil
	}

	if err := e.found.UpdateStatus(ctx, found.ID, models.FoundMatched); err != nil {
		e.logger.ErrorContext(ctx, "match transition partially applied",
			"found_id", found.ID, "error", err)
	}
	matchesAcceptedTotal.Inc()
	e.alertPair(ctx, found.DocumentType, found.Region, found.ID,
		party{id: ownerID, counterpart: found.FinderID},
		party{id: found.FinderID, counterpart: ownerID},
	)
	return matched, nil
}

type party struct {
	id          string
	counterpart string
}

// alertPair notifies both sides of an accepted match. Alert persistence and
// realtime pushes are best effort at this point: the status transition is
// already durable, so failures are logged, never propagated.
func (e *Engine) alertPair(ctx context.Context, documentType, region string, triggerID uuid.UUID, parties ...party) {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range parties {
		if !models.IsAddressable(p.id) {
			continue
		}
		g.Go(func() error {
			counterpart := p.counterpart
			if !models.IsAddressable(counterpart) {
				counterpart = models.AnonymousUser
			}
			alert := Alert{
				RecipientID:   p.id,
				DocumentType:  documentType,
				Region:        region,
				ReportID:      triggerID,
				CounterpartID: counterpart,
			}
			if err := e.alerter.MatchAlert(gctx, alert); err != nil {
				e.logger.ErrorContext(gctx, "match alert failed",
					"recipient", p.id, "report_id", triggerID, "error", err)
			}
			if err := e.publisher.Publish(gctx, realtime.AlertChannel(p.id), realtime.EventMatchFound, map[string]any{
				"report_id":     triggerID.String(),
				"document_type": documentType,
				"region":        region,
			}); err != nil {
				e.logger.WarnContext(gctx, "realtime match publish failed",
					"recipient", p.id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
