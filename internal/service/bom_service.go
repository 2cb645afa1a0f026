package service

import (
	"context"
	"encoding/json"
	"time"

	"bomtree/internal/dto"
	"bomtree/internal/model"
	"bomtree/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BomService rolls up material quantities across a whole assembly.
// Each BOM line contributes quantity × Π(amount_in_parent along the path from
// its node up to the root); repeated material ids are summed, within and
// across nodes.
type BomService interface {
	Aggregate(ctx context.Context, rootID uuid.UUID) (*dto.AggregatedBomResponse, error)
	// Recompute bypasses the cache read and re-warms the cached aggregate.
	// Used by the async worker after committed writes.
	Recompute(ctx context.Context, rootID uuid.UUID) error
	// Invalidate drops the cached aggregate for a root. Best-effort.
	Invalidate(ctx context.Context, rootID uuid.UUID) error
}

type bomService struct {
	nodes    repository.NodeRepository
	rdb      *redis.Client // nil in unit-test mode — cache is skipped
	cacheTTL time.Duration
}

func NewBomService(nodes repository.NodeRepository, rdb *redis.Client, cacheTTL time.Duration) BomService {
	return &bomService{nodes: nodes, rdb: rdb, cacheTTL: cacheTTL}
}

func bomCacheKey(rootID uuid.UUID) string { return "bom:" + rootID.String() }

func (s *bomService) Aggregate(ctx context.Context, rootID uuid.UUID) (*dto.AggregatedBomResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, bomCacheKey(rootID)).Bytes(); err == nil {
			var resp dto.AggregatedBomResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	resp, err := s.compute(ctx, rootID)
	if err != nil {
		return nil, err
	}
	s.warmCache(ctx, rootID, resp)
	return resp, nil
}

func (s *bomService) Recompute(ctx context.Context, rootID uuid.UUID) error {
	resp, err := s.compute(ctx, rootID)
	if err != nil {
		return err
	}
	s.warmCache(ctx, rootID, resp)
	return nil
}

func (s *bomService) Invalidate(ctx context.Context, rootID uuid.UUID) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, bomCacheKey(rootID)).Err()
}

func (s *bomService) warmCache(ctx context.Context, rootID uuid.UUID, resp *dto.AggregatedBomResponse) {
	if s.rdb == nil {
		return
	}
	// Best effort — a failed cache write never fails the request.
	if b, err := json.Marshal(resp); err == nil {
		_ = s.rdb.Set(ctx, bomCacheKey(rootID), b, s.cacheTTL).Err()
	}
}

func (s *bomService) compute(ctx context.Context, rootID uuid.UUID) (*dto.AggregatedBomResponse, error) {
	root, err := s.nodes.FindByID(ctx, rootID)
	if err != nil {
		return nil, notFoundOr(err, "node", rootID)
	}

	totals := make(map[uuid.UUID]*dto.AggregateTotal)
	visited := make(map[uuid.UUID]bool)
	if err := s.rollUp(ctx, root, decimal.NewFromInt(1), visited, totals); err != nil {
		return nil, err
	}

	resp := &dto.AggregatedBomResponse{
		RootID: rootID.String(),
		Totals: make(map[string]dto.AggregateTotal, len(totals)),
	}
	for id, t := range totals {
		resp.Totals[id.String()] = *t
	}
	return resp, nil
}

// rollUp is the recursive descent. The visited set is a defense-in-depth
// guard: construction-time validation makes cycles impossible, but if the
// stored data was ever corrupted the roll-up must terminate and fail closed
// instead of looping.
func (s *bomService) rollUp(ctx context.Context, node *model.CompositionNode, multiplier decimal.Decimal, visited map[uuid.UUID]bool, totals map[uuid.UUID]*dto.AggregateTotal) error {
	if visited[node.ID] {
		return &InvariantViolationError{NodeID: node.ID, Detail: "cycle detected during roll-up"}
	}
	visited[node.ID] = true

	for _, line := range node.BillOfMaterials {
		contribution := line.Quantity.Mul(multiplier)
		t, ok := totals[line.MaterialID]
		if !ok {
			totals[line.MaterialID] = &dto.AggregateTotal{Quantity: contribution, Unit: line.Unit}
			continue
		}
		if t.Unit != line.Unit {
			return &UnitMismatchError{MaterialID: line.MaterialID, UnitA: t.Unit, UnitB: line.Unit}
		}
		t.Quantity = t.Quantity.Add(contribution)
	}

	children, err := s.nodes.FindByParentIDs(ctx, []uuid.UUID{node.ID})
	if err != nil {
		return err
	}
	for i := range children {
		child := &children[i]
		if child.AmountInParent == nil || !child.AmountInParent.IsPositive() {
			return &InvariantViolationError{NodeID: child.ID, Detail: "child node has no positive amount_in_parent"}
		}
		// The child's own lines are expressed per one unit of the child;
		// the multiplier compounds down every level from root to line.
		if err := s.rollUp(ctx, child, multiplier.Mul(*child.AmountInParent), visited, totals); err != nil {
			return err
		}
	}
	return nil
}
