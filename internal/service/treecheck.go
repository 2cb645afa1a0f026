package service

import (
	"bomtree/internal/dto"

	"github.com/google/uuid"
)

// treecheck.go — pure structural checks over an in-memory candidate tree.
// These functions never touch the store: the builder runs ValidateTree before
// opening a transaction, so a violation anywhere in the candidate aborts the
// whole create/add call with zero rows written. They are equally usable for
// re-validating a subtree fetched from the store.

// CheckAcyclic walks the structural nesting of a candidate with a visited-id
// set seeded from ancestors (the stored ancestor chain of the graft point,
// empty for a new root). Any pinned id seen twice along one path is a cycle.
func CheckAcyclic(def *dto.NodeDefinition, ancestors map[uuid.UUID]bool) error {
	seen := make(map[uuid.UUID]bool, len(ancestors))
	for id := range ancestors {
		seen[id] = true
	}
	return checkAcyclicPath(def, seen)
}

func checkAcyclicPath(def *dto.NodeDefinition, path map[uuid.UUID]bool) error {
	var id uuid.UUID
	pinned := false
	if def.ID != nil {
		parsed, err := uuid.Parse(*def.ID)
		if err == nil {
			pinned = true
			id = parsed
		}
	}
	if pinned {
		if path[id] {
			return &CycleError{NodeID: id}
		}
		path[id] = true
	}
	for i := range def.Components {
		if err := checkAcyclicPath(&def.Components[i], path); err != nil {
			return err
		}
	}
	if pinned {
		// Backtrack: the visited set is per ancestry path, not per tree.
		delete(path, id)
	}
	return nil
}

// CheckComposition enforces, for def itself, the non-empty composition rule
// and the root/child amount_in_parent rule: a root carries no multiplier, a
// child carries a strictly positive one.
func CheckComposition(def *dto.NodeDefinition, isRoot bool) error {
	if isRoot && def.AmountInParent != nil {
		return &CompositionError{NodeName: def.Name, Reason: "a root must not declare amount_in_parent"}
	}
	if !isRoot {
		if def.AmountInParent == nil {
			return &CompositionError{NodeName: def.Name, Reason: "a component must declare amount_in_parent"}
		}
		if !def.AmountInParent.IsPositive() {
			return &CompositionError{NodeName: def.Name, Reason: "amount_in_parent must be positive"}
		}
	}
	if len(def.BillOfMaterials) == 0 && len(def.Components) == 0 {
		return &CompositionError{NodeName: def.Name, Reason: "bill_of_materials and components are both empty"}
	}
	return nil
}

// CheckLeavesResolve descends the candidate and requires every leaf (no
// components) to consume materials directly. A non-leaf may have an empty
// bill as long as its descendants eventually resolve to materials.
func CheckLeavesResolve(def *dto.NodeDefinition) error {
	if len(def.Components) == 0 {
		if len(def.BillOfMaterials) == 0 {
			return &IncompleteBomError{NodeName: def.Name}
		}
		return nil
	}
	for i := range def.Components {
		if err := CheckLeavesResolve(&def.Components[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTree combines all structural checks over the whole candidate.
// topIsRoot distinguishes a new base product (no multiplier on top) from a
// sub-tree grafted under an existing parent (multiplier required on top).
func ValidateTree(def *dto.NodeDefinition, topIsRoot bool, ancestors map[uuid.UUID]bool) error {
	if err := CheckAcyclic(def, ancestors); err != nil {
		return err
	}
	if err := checkCompositionRecursive(def, topIsRoot); err != nil {
		return err
	}
	return CheckLeavesResolve(def)
}

func checkCompositionRecursive(def *dto.NodeDefinition, isRoot bool) error {
	if err := CheckComposition(def, isRoot); err != nil {
		return err
	}
	for i := range def.Components {
		if err := checkCompositionRecursive(&def.Components[i], false); err != nil {
			return err
		}
	}
	return nil
}

// collectMaterialIDs gathers every material id referenced anywhere in a
// candidate, deduplicated, so the builder can existence-check them in one
// batched query instead of per node.
func collectMaterialIDs(def *dto.NodeDefinition, into map[uuid.UUID]bool) {
	for _, line := range def.BillOfMaterials {
		if id, err := uuid.Parse(line.MaterialID); err == nil {
			into[id] = true
		}
	}
	for i := range def.Components {
		collectMaterialIDs(&def.Components[i], into)
	}
}
