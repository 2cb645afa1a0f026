package service

import (
	"context"
	"sort"

	"bomtree/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// Map-backed stand-ins for the GORM repositories. DB() returns nil so runTx
// calls the transaction body directly (unit test mode).

type stubNodeRepo struct {
	nodes map[uuid.UUID]*model.CompositionNode
	lines map[uuid.UUID][]model.MaterialLine
	props map[uuid.UUID][]model.NodeProperty
}

func newStubNodeRepo() *stubNodeRepo {
	return &stubNodeRepo{
		nodes: make(map[uuid.UUID]*model.CompositionNode),
		lines: make(map[uuid.UUID][]model.MaterialLine),
		props: make(map[uuid.UUID][]model.NodeProperty),
	}
}

func (r *stubNodeRepo) loaded(n *model.CompositionNode) *model.CompositionNode {
	cp := *n
	cp.BillOfMaterials = append([]model.MaterialLine(nil), r.lines[n.ID]...)
	return &cp
}

func (r *stubNodeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CompositionNode, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.loaded(n), nil
}

func (r *stubNodeRepo) FindRoots(_ context.Context) ([]model.CompositionNode, error) {
	var roots []model.CompositionNode
	for _, n := range r.nodes {
		if n.ParentID == nil {
			roots = append(roots, *r.loaded(n))
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	return roots, nil
}

func (r *stubNodeRepo) FindByParentIDs(_ context.Context, parentIDs []uuid.UUID) ([]model.CompositionNode, error) {
	want := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var children []model.CompositionNode
	for _, n := range r.nodes {
		if n.ParentID != nil && want[*n.ParentID] {
			children = append(children, *r.loaded(n))
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Position < children[j].Position })
	return children, nil
}

func (r *stubNodeRepo) Update(_ context.Context, node *model.CompositionNode) error {
	if _, ok := r.nodes[node.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *node
	r.nodes[node.ID] = &cp
	return nil
}

func (r *stubNodeRepo) CreateTx(_ *gorm.DB, node *model.CompositionNode) error {
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	if _, exists := r.nodes[node.ID]; exists {
		return gorm.ErrDuplicatedKey
	}
	cp := *node
	r.nodes[node.ID] = &cp
	return nil
}

func (r *stubNodeRepo) CreateLineTx(_ *gorm.DB, line *model.MaterialLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	r.lines[line.NodeID] = append(r.lines[line.NodeID], *line)
	return nil
}

func (r *stubNodeRepo) CreatePropertyTx(_ *gorm.DB, prop *model.NodeProperty) error {
	if prop.ID == uuid.Nil {
		prop.ID = uuid.New()
	}
	r.props[prop.NodeID] = append(r.props[prop.NodeID], *prop)
	return nil
}

func (r *stubNodeRepo) CountChildrenTx(_ *gorm.DB, parentID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.nodes {
		if n.ParentID != nil && *n.ParentID == parentID {
			count++
		}
	}
	return count, nil
}

func (r *stubNodeRepo) ChildIDsTx(_ *gorm.DB, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	want := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var ids []uuid.UUID
	for _, n := range r.nodes {
		if n.ParentID != nil && want[*n.ParentID] {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (r *stubNodeRepo) DeleteNodesTx(_ *gorm.DB, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(r.nodes, id)
		delete(r.lines, id)
		delete(r.props, id)
	}
	return nil
}

func (r *stubNodeRepo) DB() *gorm.DB { return nil }

type stubMaterialRepo struct {
	materials map[uuid.UUID]*model.Material
}

func newStubMaterialRepo() *stubMaterialRepo {
	return &stubMaterialRepo{materials: make(map[uuid.UUID]*model.Material)}
}

func (r *stubMaterialRepo) add(name string) uuid.UUID {
	id := uuid.New()
	r.materials[id] = &model.Material{ID: id, Name: name, DefaultUnit: "unit"}
	return id
}

func (r *stubMaterialRepo) Create(_ context.Context, m *model.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.materials[m.ID] = m
	return nil
}

func (r *stubMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMaterialRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Material, error) {
	var out []model.Material
	for _, id := range ids {
		if m, ok := r.materials[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMaterialRepo) FindByName(_ context.Context, name string) (*model.Material, error) {
	for _, m := range r.materials {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMaterialRepo) List(_ context.Context) ([]model.Material, error) {
	var out []model.Material
	for _, m := range r.materials {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMaterialRepo) MissingIDs(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := r.materials[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type stubOwnerRepo struct {
	owners map[uuid.UUID]*model.Owner
}

func newStubOwnerRepo() *stubOwnerRepo {
	return &stubOwnerRepo{owners: make(map[uuid.UUID]*model.Owner)}
}

func (r *stubOwnerRepo) add(name string) uuid.UUID {
	id := uuid.New()
	r.owners[id] = &model.Owner{ID: id, Name: name, Email: name + "@test.local"}
	return id
}

func (r *stubOwnerRepo) Create(_ context.Context, o *model.Owner) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.owners[o.ID] = o
	return nil
}

func (r *stubOwnerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Owner, error) {
	o, ok := r.owners[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOwnerRepo) FindByEmail(_ context.Context, email string) (*model.Owner, error) {
	for _, o := range r.owners {
		if o.Email == email {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOwnerRepo) List(_ context.Context) ([]model.Owner, error) {
	var out []model.Owner
	for _, o := range r.owners {
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOwnerRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.owners[id]
	return ok, nil
}

type stubProductTypeRepo struct {
	types map[uuid.UUID]*model.ProductType
}

func newStubProductTypeRepo() *stubProductTypeRepo {
	return &stubProductTypeRepo{types: make(map[uuid.UUID]*model.ProductType)}
}

func (r *stubProductTypeRepo) add(name string) uuid.UUID {
	id := uuid.New()
	r.types[id] = &model.ProductType{ID: id, Name: name}
	return id
}

func (r *stubProductTypeRepo) Create(_ context.Context, t *model.ProductType) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.types[t.ID] = t
	return nil
}

func (r *stubProductTypeRepo) FindByName(_ context.Context, name string) (*model.ProductType, error) {
	for _, t := range r.types {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductTypeRepo) List(_ context.Context) ([]model.ProductType, error) {
	var out []model.ProductType
	for _, t := range r.types {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubProductTypeRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.types[id]
	return ok, nil
}

// newTestCompositionService wires a full service graph over the stubs with
// caching and async dispatch disabled.
func newTestCompositionService(nodes *stubNodeRepo, materials *stubMaterialRepo, owners *stubOwnerRepo, types *stubProductTypeRepo) CompositionService {
	subtree := NewSubtreeService(nodes)
	bom := NewBomService(nodes, nil, 0)
	return NewCompositionService(nodes, materials, owners, types, subtree, bom, nil)
}
