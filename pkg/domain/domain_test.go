package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &domain.NotFoundError{Op: "remove", ID: "x"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `"x"`)

	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "remove", nf.Op)
}

func TestHooks_Chain(t *testing.T) {
	var calls []string
	a := domain.Hooks{OnMutation: func(e domain.MutationEvent) { calls = append(calls, "a:"+e.ItemID) }}
	b := domain.Hooks{OnMutation: func(e domain.MutationEvent) { calls = append(calls, "b:"+e.ItemID) }}

	a.Chain(b).Emit(domain.MutationEvent{ItemID: "1"})
	domain.Hooks{}.Chain(b).Emit(domain.MutationEvent{ItemID: "2"})
	a.Chain(domain.Hooks{}).Emit(domain.MutationEvent{ItemID: "3"})
	domain.Hooks{}.Emit(domain.MutationEvent{ItemID: "4"})

	assert.Equal(t, []string{"a:1", "b:1", "b:2", "a:3"}, calls)
}

func TestNodeSpec_Walk(t *testing.T) {
	spec := domain.NodeSpec{
		ID: "root",
		Children: []domain.NodeSpec{
			{ID: "a", Children: []domain.NodeSpec{{ID: "a1"}}},
			{ID: "b", Classes: []string{"skip"}, Children: []domain.NodeSpec{{ID: "b1"}}},
		},
	}

	var visited []string
	spec.Walk(func(path []string, s domain.NodeSpec) bool {
		visited = append(visited, fmt.Sprint(path))
		return !s.HasClass("skip")
	})

	assert.Equal(t, []string{"[root]", "[root a]", "[root a a1]", "[root b]"}, visited)
}
