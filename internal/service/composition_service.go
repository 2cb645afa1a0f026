package service

import (
	"context"
	"errors"
	"fmt"

	"bomtree/internal/dto"
	"bomtree/internal/model"
	"bomtree/internal/repository"
	"bomtree/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CompositionService is the facade over the composition tree: transactional
// construction, scalar edits, cascading deletion, and the read/aggregate
// paths delegated to SubtreeService and BomService.
//
// Every write runs inside exactly one transaction: descendant inserts get
// their ids assigned immediately but become visible only at the outermost
// commit. No in-process locking is performed; two concurrent writers
// grafting into disjoint parts of the same tree under default isolation can
// interleave. Known limitation — the common case is single-writer-per-tree.
type CompositionService interface {
	CreateComposition(ctx context.Context, req dto.CreateCompositionRequest) (uuid.UUID, error)
	AddComponent(ctx context.Context, parentID uuid.UUID, req dto.AddComponentRequest) (uuid.UUID, error)
	UpdateNode(ctx context.Context, id uuid.UUID, req dto.UpdateNodeRequest) (*dto.TreeView, error)
	DeleteSubtree(ctx context.Context, id uuid.UUID) error

	GetSubtree(ctx context.Context, rootID uuid.UUID, depth int) (*dto.TreeView, error)
	GetAllRoots(ctx context.Context, depth int) ([]dto.TreeView, error)
	AggregateBillOfMaterials(ctx context.Context, rootID uuid.UUID) (*dto.AggregatedBomResponse, error)
}

type compositionService struct {
	nodes        repository.NodeRepository
	materials    repository.MaterialRepository
	owners       repository.OwnerRepository
	productTypes repository.ProductTypeRepository
	subtree      SubtreeService
	bom          BomService
	dispatcher   *worker.Dispatcher // nil in unit-test mode
}

func NewCompositionService(
	nodes repository.NodeRepository,
	materials repository.MaterialRepository,
	owners repository.OwnerRepository,
	productTypes repository.ProductTypeRepository,
	subtree SubtreeService,
	bom BomService,
	dispatcher *worker.Dispatcher,
) CompositionService {
	return &compositionService{
		nodes:        nodes,
		materials:    materials,
		owners:       owners,
		productTypes: productTypes,
		subtree:      subtree,
		bom:          bom,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFoundOr converts a gorm record-not-found into the domain NotFoundError.
func notFoundOr(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, IDs: []uuid.UUID{id}}
	}
	return err
}

// ── CreateComposition ────────────────────────────────────────────────────────
// 1. Validate the entire candidate in memory — reject before touching the store.
// 2. Existence-check owner, optional product type, and every referenced
//    material (one batched query for the whole definition).
// 3. One transaction: depth-first pre-order inserts, each row's id assigned
//    on insert so descendants can reference it as parent_id.

func (s *compositionService) CreateComposition(ctx context.Context, req dto.CreateCompositionRequest) (uuid.UUID, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid owner_id: %w", err)
	}
	var productTypeID *uuid.UUID
	if req.ProductTypeID != nil {
		tid, err := uuid.Parse(*req.ProductTypeID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid product_type_id: %w", err)
		}
		productTypeID = &tid
	}

	if err := ValidateTree(&req.Definition, true, nil); err != nil {
		return uuid.Nil, err
	}

	ok, err := s.owners.Exists(ctx, ownerID)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, &NotFoundError{Resource: "owner", IDs: []uuid.UUID{ownerID}}
	}
	if productTypeID != nil {
		ok, err := s.productTypes.Exists(ctx, *productTypeID)
		if err != nil {
			return uuid.Nil, err
		}
		if !ok {
			return uuid.Nil, &NotFoundError{Resource: "product type", IDs: []uuid.UUID{*productTypeID}}
		}
	}
	if err := s.checkMaterials(ctx, &req.Definition); err != nil {
		return uuid.Nil, err
	}

	var rootID uuid.UUID
	txErr := runTx(ctx, s.nodes.DB(), func(tx *gorm.DB) error {
		id, err := s.insertSubtree(tx, &req.Definition, nil, ownerID, productTypeID, 0)
		if err != nil {
			return err
		}
		rootID = id
		return nil
	})
	if txErr != nil {
		return uuid.Nil, wrapIntegrity("create composition", txErr)
	}

	s.notifyTreeChanged(ctx, rootID)
	return rootID, nil
}

// ── AddComponent ─────────────────────────────────────────────────────────────
// Grafts a validated sub-tree under an existing parent. Ownership is always
// inherited from the stored tree, never re-specified by the caller. The
// stored ancestor chain of the parent seeds the cycle check so a pinned id
// colliding with any ancestor is rejected before any write.

func (s *compositionService) AddComponent(ctx context.Context, parentID uuid.UUID, req dto.AddComponentRequest) (uuid.UUID, error) {
	parent, err := s.nodes.FindByID(ctx, parentID)
	if err != nil {
		return uuid.Nil, notFoundOr(err, "node", parentID)
	}

	ancestors, rootID, err := s.ancestorChain(ctx, parent)
	if err != nil {
		return uuid.Nil, err
	}

	if err := ValidateTree(&req.Definition, false, ancestors); err != nil {
		return uuid.Nil, err
	}
	if err := s.checkMaterials(ctx, &req.Definition); err != nil {
		return uuid.Nil, err
	}

	var newID uuid.UUID
	txErr := runTx(ctx, s.nodes.DB(), func(tx *gorm.DB) error {
		position, err := s.nodes.CountChildrenTx(tx, parent.ID)
		if err != nil {
			return err
		}
		id, err := s.insertSubtree(tx, &req.Definition, &parent.ID, parent.OwnerID, nil, int(position))
		if err != nil {
			return err
		}
		newID = id
		return nil
	})
	if txErr != nil {
		return uuid.Nil, wrapIntegrity("add component", txErr)
	}

	s.notifyTreeChanged(ctx, rootID)
	return newID, nil
}

// insertSubtree persists one node, its BOM lines and properties, then
// recurses into each child with the freshly assigned id as parent_id.
// All rows share the caller's transaction: everything persists or nothing.
func (s *compositionService) insertSubtree(tx *gorm.DB, def *dto.NodeDefinition, parentID *uuid.UUID, ownerID uuid.UUID, productTypeID *uuid.UUID, position int) (uuid.UUID, error) {
	node := &model.CompositionNode{
		ParentID:       parentID,
		AmountInParent: def.AmountInParent,
		OwnerID:        ownerID,
		ProductTypeID:  productTypeID,
		Name:           def.Name,
		Description:    def.Description,
		Position:       position,
	}
	if def.ID != nil {
		pinned, err := uuid.Parse(*def.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid node id: %w", err)
		}
		node.ID = pinned
	}
	if err := s.nodes.CreateTx(tx, node); err != nil {
		return uuid.Nil, err
	}

	for i, line := range def.BillOfMaterials {
		materialID, err := uuid.Parse(line.MaterialID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid material_id: %w", err)
		}
		unit := line.Unit
		if unit == "" {
			unit = "unit"
		}
		row := &model.MaterialLine{
			NodeID:     node.ID,
			MaterialID: materialID,
			Quantity:   line.Quantity,
			Unit:       unit,
			Position:   i,
		}
		if err := s.nodes.CreateLineTx(tx, row); err != nil {
			return uuid.Nil, err
		}
	}

	for _, prop := range def.Properties {
		row := &model.NodeProperty{NodeID: node.ID, Key: prop.Key, Value: prop.Value}
		if err := s.nodes.CreatePropertyTx(tx, row); err != nil {
			return uuid.Nil, err
		}
	}

	for i := range def.Components {
		if _, err := s.insertSubtree(tx, &def.Components[i], &node.ID, ownerID, nil, i); err != nil {
			return uuid.Nil, err
		}
	}
	return node.ID, nil
}

// checkMaterials existence-checks every material referenced anywhere in the
// candidate, batched into a single query.
func (s *compositionService) checkMaterials(ctx context.Context, def *dto.NodeDefinition) error {
	idSet := make(map[uuid.UUID]bool)
	collectMaterialIDs(def, idSet)
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	missing, err := s.materials.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &NotFoundError{Resource: "material", IDs: missing}
	}
	return nil
}

// ancestorChain walks parent_id references up to the root. The visited guard
// makes the walk terminate even on corrupted data.
func (s *compositionService) ancestorChain(ctx context.Context, node *model.CompositionNode) (map[uuid.UUID]bool, uuid.UUID, error) {
	chain := map[uuid.UUID]bool{node.ID: true}
	current := node
	for current.ParentID != nil {
		next, err := s.nodes.FindByID(ctx, *current.ParentID)
		if err != nil {
			return nil, uuid.Nil, notFoundOr(err, "node", *current.ParentID)
		}
		if chain[next.ID] {
			return nil, uuid.Nil, &InvariantViolationError{NodeID: next.ID, Detail: "cycle detected in stored ancestor chain"}
		}
		chain[next.ID] = true
		current = next
	}
	return chain, current.ID, nil
}

// ── UpdateNode ───────────────────────────────────────────────────────────────
// Scalar-only edits: name, description, product type. Structure (parent,
// amount, children) is never changed here.

func (s *compositionService) UpdateNode(ctx context.Context, id uuid.UUID, req dto.UpdateNodeRequest) (*dto.TreeView, error) {
	node, err := s.nodes.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "node", id)
	}

	if req.Name != nil {
		node.Name = *req.Name
	}
	if req.Description != nil {
		node.Description = req.Description
	}
	if req.ProductTypeID != nil {
		tid, err := uuid.Parse(*req.ProductTypeID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_type_id: %w", err)
		}
		ok, err := s.productTypes.Exists(ctx, tid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NotFoundError{Resource: "product type", IDs: []uuid.UUID{tid}}
		}
		node.ProductTypeID = &tid
	}

	if err := s.nodes.Update(ctx, node); err != nil {
		return nil, wrapIntegrity("update node", err)
	}

	view := buildView(node, 0, nil)
	return &view, nil
}

// ── DeleteSubtree ────────────────────────────────────────────────────────────
// Removes a node and its entire sub-tree, BOM lines and properties included,
// in one transaction. The id set is collected level by level inside the
// transaction so concurrent grafts cannot leave orphans behind the delete.

func (s *compositionService) DeleteSubtree(ctx context.Context, id uuid.UUID) error {
	node, err := s.nodes.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "node", id)
	}
	_, rootID, err := s.ancestorChain(ctx, node)
	if err != nil {
		return err
	}

	txErr := runTx(ctx, s.nodes.DB(), func(tx *gorm.DB) error {
		all := []uuid.UUID{node.ID}
		frontier := []uuid.UUID{node.ID}
		for len(frontier) > 0 {
			children, err := s.nodes.ChildIDsTx(tx, frontier)
			if err != nil {
				return err
			}
			all = append(all, children...)
			frontier = children
		}
		return s.nodes.DeleteNodesTx(tx, all)
	})
	if txErr != nil {
		return wrapIntegrity("delete subtree", txErr)
	}

	// Post-commit side effects are best-effort and never part of the
	// transaction: a failure is logged, not retried.
	if err := s.bom.Invalidate(ctx, rootID); err != nil {
		log.Error().Err(err).Str("root_id", rootID.String()).Msg("bom cache invalidation failed after delete")
	}
	if rootID != node.ID {
		s.enqueueRecompute(ctx, rootID)
	}
	return nil
}

// ── Read paths ───────────────────────────────────────────────────────────────

func (s *compositionService) GetSubtree(ctx context.Context, rootID uuid.UUID, depth int) (*dto.TreeView, error) {
	return s.subtree.GetSubtree(ctx, rootID, depth)
}

func (s *compositionService) GetAllRoots(ctx context.Context, depth int) ([]dto.TreeView, error) {
	return s.subtree.GetAllRoots(ctx, depth)
}

func (s *compositionService) AggregateBillOfMaterials(ctx context.Context, rootID uuid.UUID) (*dto.AggregatedBomResponse, error) {
	return s.bom.Aggregate(ctx, rootID)
}

// ── Post-commit plumbing ─────────────────────────────────────────────────────

func (s *compositionService) notifyTreeChanged(ctx context.Context, rootID uuid.UUID) {
	if err := s.bom.Invalidate(ctx, rootID); err != nil {
		log.Error().Err(err).Str("root_id", rootID.String()).Msg("bom cache invalidation failed after write")
	}
	s.enqueueRecompute(ctx, rootID)
}

func (s *compositionService) enqueueRecompute(ctx context.Context, rootID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueRecompute(ctx, rootID); err != nil {
		log.Error().Err(err).Str("root_id", rootID.String()).Msg("failed to enqueue bom recompute")
	}
}

func wrapIntegrity(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &IntegrityError{Op: op, Err: err}
	}
	return err
}
