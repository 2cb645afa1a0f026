package service

import (
	"context"

	"bomtree/internal/dto"
	"bomtree/internal/model"
	"bomtree/internal/repository"

	"github.com/google/uuid"
)

// MaxSubtreeDepth caps how many nested component levels a single read may
// materialize. Callers cannot force unbounded materialization of a deep or
// wide tree: beyond this depth Components is always an empty list.
const MaxSubtreeDepth = 5

// SubtreeService is the depth-bounded read path over stored trees.
type SubtreeService interface {
	GetSubtree(ctx context.Context, rootID uuid.UUID, depth int) (*dto.TreeView, error)
	GetAllRoots(ctx context.Context, depth int) ([]dto.TreeView, error)
}

type subtreeService struct {
	nodes repository.NodeRepository
}

func NewSubtreeService(nodes repository.NodeRepository) SubtreeService {
	return &subtreeService{nodes: nodes}
}

func clampDepth(depth int) int {
	if depth < 1 || depth > MaxSubtreeDepth {
		return MaxSubtreeDepth
	}
	return depth
}

func (s *subtreeService) GetSubtree(ctx context.Context, rootID uuid.UUID, depth int) (*dto.TreeView, error) {
	depth = clampDepth(depth)
	root, err := s.nodes.FindByID(ctx, rootID)
	if err != nil {
		return nil, notFoundOr(err, "node", rootID)
	}
	childrenByParent, err := s.fetchLevels(ctx, []uuid.UUID{root.ID}, depth)
	if err != nil {
		return nil, err
	}
	view := buildView(root, depth, childrenByParent)
	return &view, nil
}

func (s *subtreeService) GetAllRoots(ctx context.Context, depth int) ([]dto.TreeView, error) {
	depth = clampDepth(depth)
	roots, err := s.nodes.FindRoots(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(roots))
	for _, r := range roots {
		ids = append(ids, r.ID)
	}
	childrenByParent, err := s.fetchLevels(ctx, ids, depth)
	if err != nil {
		return nil, err
	}
	views := make([]dto.TreeView, 0, len(roots))
	for i := range roots {
		views = append(views, buildView(&roots[i], depth, childrenByParent))
	}
	return views, nil
}

// fetchLevels bulk-loads one level per query for levels 1..depth below the
// given frontier. Rows below depth are never fetched.
func (s *subtreeService) fetchLevels(ctx context.Context, frontier []uuid.UUID, depth int) (map[uuid.UUID][]model.CompositionNode, error) {
	childrenByParent := make(map[uuid.UUID][]model.CompositionNode)
	for level := 0; level < depth && len(frontier) > 0; level++ {
		children, err := s.nodes.FindByParentIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		next := make([]uuid.UUID, 0, len(children))
		for _, c := range children {
			childrenByParent[*c.ParentID] = append(childrenByParent[*c.ParentID], c)
			next = append(next, c.ID)
		}
		frontier = next
	}
	return childrenByParent, nil
}

// buildView is the pure transform from fetched rows to the bounded view,
// truncating children once the remaining depth hits zero.
func buildView(node *model.CompositionNode, remaining int, childrenByParent map[uuid.UUID][]model.CompositionNode) dto.TreeView {
	view := dto.TreeView{
		ID:              node.ID.String(),
		AmountInParent:  node.AmountInParent,
		OwnerID:         node.OwnerID.String(),
		Name:            node.Name,
		Description:     node.Description,
		BillOfMaterials: mapLines(node.BillOfMaterials),
		Components:      []dto.TreeView{},
	}
	if node.ParentID != nil {
		pid := node.ParentID.String()
		view.ParentID = &pid
	}
	if node.ProductTypeID != nil {
		tid := node.ProductTypeID.String()
		view.ProductTypeID = &tid
	}
	if remaining == 0 {
		return view
	}
	children := childrenByParent[node.ID]
	for i := range children {
		view.Components = append(view.Components, buildView(&children[i], remaining-1, childrenByParent))
	}
	return view
}

func mapLines(lines []model.MaterialLine) []dto.MaterialLineResponse {
	out := make([]dto.MaterialLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.MaterialLineResponse{
			MaterialID: l.MaterialID.String(),
			Quantity:   l.Quantity,
			Unit:       l.Unit,
		})
	}
	return out
}
