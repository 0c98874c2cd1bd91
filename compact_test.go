package pvac

import (
	"testing"

	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"github.com/stretchr/testify/require"
)

func TestCompactEdgesAggregatesSameBucket(t *testing.T) {
	tag := bitvec.New(8)
	tag.SetBit(1)
	ct := Ciphertext{
		Layers: []Layer{{Rule: Base}},
		Edges: []Edge{
			{LayerID: 0, Idx: 3, Sign: Plus, Weight: field.FromU64(5), Tag: tag.Clone()},
			{LayerID: 0, Idx: 3, Sign: Plus, Weight: field.FromU64(7), Tag: tag.Clone()},
		},
	}
	compactEdges(&ct)
	require.Len(t, ct.Edges, 1)
	require.True(t, field.Eq(field.FromU64(12), ct.Edges[0].Weight))
}

func TestCompactEdgesDropsZeroWeightZeroTagBucket(t *testing.T) {
	tag := bitvec.New(8)
	ct := Ciphertext{
		Layers: []Layer{{Rule: Base}},
		Edges: []Edge{
			{LayerID: 0, Idx: 1, Sign: Plus, Weight: field.FromU64(5), Tag: tag.Clone()},
			{LayerID: 0, Idx: 1, Sign: Plus, Weight: field.Neg(field.FromU64(5)), Tag: tag.Clone()},
		},
	}
	compactEdges(&ct)
	require.Len(t, ct.Edges, 0)
}

func TestCompactLayersKeepsProdParentsAndPrunesDeadLayer(t *testing.T) {
	ct := Ciphertext{
		Layers: []Layer{
			{Rule: Base},                  // 0: dead, no edge, not a PROD parent
			{Rule: Base},                  // 1: PROD parent, kept
			{Rule: Prod, PA: 1, PB: 1},    // 2: reachable via its own edge
		},
		Edges: []Edge{
			{LayerID: 2, Idx: 0, Sign: Plus, Weight: field.One, Tag: bitvec.New(4)},
		},
	}
	compactLayers(&ct)

	require.Len(t, ct.Layers, 2)
	require.Equal(t, Prod, ct.Layers[1].Rule)
	require.Equal(t, uint32(0), ct.Layers[1].PA)
	require.Equal(t, uint32(0), ct.Layers[1].PB)
	require.Equal(t, uint32(1), ct.Edges[0].LayerID)
}

func TestCompactLayersDropsTrulyUnreferencedLayer(t *testing.T) {
	ct := Ciphertext{
		Layers: []Layer{
			{Rule: Base},
			{Rule: Base},
		},
		Edges: []Edge{
			{LayerID: 1, Idx: 0, Sign: Plus, Weight: field.One, Tag: bitvec.New(4)},
		},
	}
	compactLayers(&ct)

	require.Len(t, ct.Layers, 1)
	require.Equal(t, uint32(0), ct.Edges[0].LayerID)
}

func TestGuardBudgetCompactsOnlyWhenOverBudget(t *testing.T) {
	p, err := NewParametersFromLiteral(func() ParametersLiteral {
		lit := testLiteral()
		lit.EdgeBudget = 1
		return lit
	}())
	require.NoError(t, err)

	tag := bitvec.New(8)
	ct := Ciphertext{
		Layers: []Layer{{Rule: Base}},
		Edges: []Edge{
			{LayerID: 0, Idx: 1, Sign: Plus, Weight: field.FromU64(1), Tag: tag.Clone()},
			{LayerID: 0, Idx: 1, Sign: Plus, Weight: field.FromU64(2), Tag: tag.Clone()},
			{LayerID: 0, Idx: 2, Sign: Plus, Weight: field.FromU64(3), Tag: tag.Clone()},
		},
	}
	guardBudget(p, &ct) // 3 edges > budget of 1, triggers compaction down to 2 buckets
	require.Len(t, ct.Edges, 2)
}
