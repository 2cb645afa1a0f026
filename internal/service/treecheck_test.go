package service

import (
	"testing"

	"bomtree/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func leafDef(name string, materialID uuid.UUID, qty string, amt *decimal.Decimal) dto.NodeDefinition {
	return dto.NodeDefinition{
		Name:           name,
		AmountInParent: amt,
		BillOfMaterials: []dto.MaterialLineDefinition{
			{MaterialID: materialID.String(), Quantity: decimal.RequireFromString(qty), Unit: "kg"},
		},
	}
}

func TestCheckComposition_RootMustNotDeclareAmount(t *testing.T) {
	def := leafDef("Chair", uuid.New(), "1", amount("2"))

	err := CheckComposition(&def, true)

	var compErr *CompositionError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "Chair", compErr.NodeName)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckComposition_ComponentRequiresAmount(t *testing.T) {
	def := leafDef("Leg", uuid.New(), "1", nil)

	err := CheckComposition(&def, false)

	var compErr *CompositionError
	require.ErrorAs(t, err, &compErr)
	assert.Contains(t, compErr.Reason, "must declare amount_in_parent")
}

func TestCheckComposition_AmountMustBePositive(t *testing.T) {
	for _, bad := range []string{"0", "-1.5"} {
		def := leafDef("Leg", uuid.New(), "1", amount(bad))
		err := CheckComposition(&def, false)
		assert.ErrorIs(t, err, ErrValidation, "amount %s", bad)
	}
}

func TestCheckComposition_EmptyNodeRejected(t *testing.T) {
	def := dto.NodeDefinition{Name: "Empty"}

	err := CheckComposition(&def, true)

	var compErr *CompositionError
	require.ErrorAs(t, err, &compErr)
	assert.Contains(t, compErr.Reason, "both empty")
}

func TestCheckLeavesResolve_LeafWithoutBomRejected(t *testing.T) {
	def := dto.NodeDefinition{
		Name: "Chair",
		Components: []dto.NodeDefinition{
			{Name: "Seat", AmountInParent: amount("1")}, // leaf, no materials
		},
	}

	err := CheckLeavesResolve(&def)

	var bomErr *IncompleteBomError
	require.ErrorAs(t, err, &bomErr)
	assert.Equal(t, "Seat", bomErr.NodeName)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckLeavesResolve_IntermediateMayHaveEmptyBom(t *testing.T) {
	def := dto.NodeDefinition{
		Name: "Chair",
		Components: []dto.NodeDefinition{
			leafDef("Seat", uuid.New(), "0.5", amount("1")),
		},
	}

	assert.NoError(t, CheckLeavesResolve(&def))
}

func TestCheckAcyclic_PinnedIDRepeatedOnPath(t *testing.T) {
	dup := uuid.New().String()
	def := dto.NodeDefinition{
		ID:   &dup,
		Name: "Chair",
		Components: []dto.NodeDefinition{
			{
				Name:           "Seat",
				AmountInParent: amount("1"),
				Components: []dto.NodeDefinition{
					{ID: &dup, Name: "Chair again", AmountInParent: amount("1")},
				},
			},
		},
	}

	err := CheckAcyclic(&def, nil)

	var cycErr *CycleError
	require.ErrorAs(t, err, &cycErr)
	assert.Equal(t, dup, cycErr.NodeID.String())
}

func TestCheckAcyclic_SameIDOnSiblingBranchesAllowed(t *testing.T) {
	// The visited set tracks one ancestry path, not the whole tree:
	// duplicate ids across sibling branches are a uniqueness problem for the
	// database, not a cycle.
	shared := uuid.New().String()
	def := dto.NodeDefinition{
		Name: "Chair",
		Components: []dto.NodeDefinition{
			{ID: &shared, Name: "Left leg", AmountInParent: amount("1")},
			{ID: &shared, Name: "Right leg", AmountInParent: amount("1")},
		},
	}

	assert.NoError(t, CheckAcyclic(&def, nil))
}

func TestCheckAcyclic_AncestorCollision(t *testing.T) {
	ancestorID := uuid.New()
	pinned := ancestorID.String()
	def := dto.NodeDefinition{ID: &pinned, Name: "Backrest", AmountInParent: amount("1")}

	err := CheckAcyclic(&def, map[uuid.UUID]bool{ancestorID: true})

	var cycErr *CycleError
	require.ErrorAs(t, err, &cycErr)
	assert.Equal(t, ancestorID, cycErr.NodeID)
}

func TestValidateTree_ValidNestedTree(t *testing.T) {
	wood := uuid.New()
	screws := uuid.New()
	def := dto.NodeDefinition{
		Name:        "Chair",
		Description: strPtr("Four-legged oak chair"),
		BillOfMaterials: []dto.MaterialLineDefinition{
			{MaterialID: screws.String(), Quantity: decimal.NewFromInt(8), Unit: "unit"},
		},
		Components: []dto.NodeDefinition{
			{
				Name:           "Seat",
				AmountInParent: amount("1"),
				Components: []dto.NodeDefinition{
					leafDef("Cushion", wood, "0.5", amount("2")),
				},
			},
			leafDef("Leg", wood, "0.8", amount("4")),
		},
	}

	assert.NoError(t, ValidateTree(&def, true, nil))
}

func TestValidateTree_ReportsDeepViolation(t *testing.T) {
	def := dto.NodeDefinition{
		Name: "Chair",
		Components: []dto.NodeDefinition{
			{
				Name:           "Seat",
				AmountInParent: amount("1"),
				Components: []dto.NodeDefinition{
					leafDef("Cushion", uuid.New(), "1", amount("0")), // zero amount, 2 levels down
				},
			},
		},
	}

	err := ValidateTree(&def, true, nil)

	var compErr *CompositionError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "Cushion", compErr.NodeName)
}
