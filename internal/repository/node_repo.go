package repository

import (
	"context"

	"bomtree/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NodeRepository defines the data access contract for composition nodes and
// their owned rows (BOM lines, properties). Services depend on this interface,
// not on the concrete GORM implementation, enabling clean unit testing via stubs.
//
// Methods with a Tx suffix run inside a caller-owned transaction: rows created
// through them get their ids assigned immediately (INSERT … RETURNING) but
// become visible only when the outermost transaction commits.
type NodeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.CompositionNode, error)
	FindRoots(ctx context.Context) ([]model.CompositionNode, error)
	// FindByParentIDs bulk-loads one tree level: every child whose parent is
	// in parentIDs, BOM lines preloaded, ordered by position.
	FindByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]model.CompositionNode, error)
	Update(ctx context.Context, node *model.CompositionNode) error

	CreateTx(tx *gorm.DB, node *model.CompositionNode) error
	CreateLineTx(tx *gorm.DB, line *model.MaterialLine) error
	CreatePropertyTx(tx *gorm.DB, prop *model.NodeProperty) error
	CountChildrenTx(tx *gorm.DB, parentID uuid.UUID) (int64, error)
	ChildIDsTx(tx *gorm.DB, parentIDs []uuid.UUID) ([]uuid.UUID, error)
	// DeleteNodesTx removes the given nodes together with their BOM lines and
	// properties. Callers pass the full id set of a subtree.
	DeleteNodesTx(tx *gorm.DB, ids []uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type nodeRepo struct{ db *gorm.DB }

func NewNodeRepository(db *gorm.DB) NodeRepository { return &nodeRepo{db: db} }

func (r *nodeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CompositionNode, error) {
	var n model.CompositionNode
	err := r.db.WithContext(ctx).
		Preload("BillOfMaterials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nodeRepo) FindRoots(ctx context.Context) ([]model.CompositionNode, error) {
	var nodes []model.CompositionNode
	err := r.db.WithContext(ctx).
		Preload("BillOfMaterials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&nodes).Error
	return nodes, err
}

func (r *nodeRepo) FindByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]model.CompositionNode, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var nodes []model.CompositionNode
	err := r.db.WithContext(ctx).
		Preload("BillOfMaterials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("parent_id IN ?", parentIDs).
		Order("position ASC").
		Find(&nodes).Error
	return nodes, err
}

func (r *nodeRepo) Update(ctx context.Context, node *model.CompositionNode) error {
	return r.db.WithContext(ctx).Save(node).Error
}

func (r *nodeRepo) CreateTx(tx *gorm.DB, node *model.CompositionNode) error {
	return tx.Create(node).Error
}

func (r *nodeRepo) CreateLineTx(tx *gorm.DB, line *model.MaterialLine) error {
	return tx.Create(line).Error
}

func (r *nodeRepo) CreatePropertyTx(tx *gorm.DB, prop *model.NodeProperty) error {
	return tx.Create(prop).Error
}

func (r *nodeRepo) CountChildrenTx(tx *gorm.DB, parentID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&model.CompositionNode{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

func (r *nodeRepo) ChildIDsTx(tx *gorm.DB, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := tx.Model(&model.CompositionNode{}).
		Where("parent_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *nodeRepo) DeleteNodesTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("node_id IN ?", ids).Delete(&model.MaterialLine{}).Error; err != nil {
		return err
	}
	if err := tx.Where("node_id IN ?", ids).Delete(&model.NodeProperty{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.CompositionNode{}).Error
}

func (r *nodeRepo) DB() *gorm.DB { return r.db }
