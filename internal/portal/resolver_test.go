package portal

import (
	"context"
	"testing"
	"time"

	"portal-agent/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(s *fakeSession) *Resolver {
	return NewResolver(s, zap.NewNop(), 10*time.Millisecond)
}

func TestResolveNearTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("anchor itself is input-capable", func(t *testing.T) {
		anchor := &fakeNode{tag: "input"}

		el, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Same(t, anchor, el.(*fakeNode))
		assert.Equal(t, "self", tier)
	})

	t.Run("textarea anchor is input-capable", func(t *testing.T) {
		anchor := &fakeNode{tag: "textarea"}

		_, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Equal(t, "self", tier)
	})

	t.Run("descendant input", func(t *testing.T) {
		input := &fakeNode{tag: "input"}
		anchor := &fakeNode{tag: "label", children: map[string]*fakeNode{".//input": input}}

		el, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Same(t, input, el.(*fakeNode))
		assert.Equal(t, "descendant", tier)
	})

	t.Run("descendant textarea when no input", func(t *testing.T) {
		area := &fakeNode{tag: "textarea"}
		anchor := &fakeNode{tag: "div", children: map[string]*fakeNode{".//textarea": area}}

		el, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Same(t, area, el.(*fakeNode))
		assert.Equal(t, "descendant", tier)
	})

	t.Run("following sibling", func(t *testing.T) {
		input := &fakeNode{tag: "input"}
		anchor := &fakeNode{tag: "label", children: map[string]*fakeNode{
			"following-sibling::input[1]": input,
		}}

		el, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Same(t, input, el.(*fakeNode))
		assert.Equal(t, "following_sibling", tier)
	})

	t.Run("preceding sibling", func(t *testing.T) {
		input := &fakeNode{tag: "input"}
		anchor := &fakeNode{tag: "label", children: map[string]*fakeNode{
			"preceding-sibling::input[1]": input,
		}}

		el, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Same(t, input, el.(*fakeNode))
		assert.Equal(t, "preceding_sibling", tier)
	})

	t.Run("parent subtree", func(t *testing.T) {
		input := &fakeNode{tag: "input"}
		parent := &fakeNode{tag: "li", children: map[string]*fakeNode{".//input": input}}
		anchor := &fakeNode{tag: "label", children: map[string]*fakeNode{"..": parent}}

		el, tier, ok := resolveNear(ctx, anchor)
		require.True(t, ok)
		assert.Same(t, input, el.(*fakeNode))
		assert.Equal(t, "parent_subtree", tier)
	})

	t.Run("nothing nearby", func(t *testing.T) {
		anchor := &fakeNode{tag: "label"}

		_, _, ok := resolveNear(ctx, anchor)
		assert.False(t, ok)
	})
}

func TestResolverLabelPathSwap(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()

	// The label anchor never appears, but the input sibling path does.
	input := &fakeNode{tag: "input"}
	session.nodes["/html/body/div[1]/ul/li[1]/input"] = input

	loc := entity.Locator{
		Name:    "swap_target",
		Primary: "/html/body/div[1]/ul/li[1]/label",
	}

	el, ok := newTestResolver(session).Resolve(ctx, loc, 5*time.Millisecond)
	require.True(t, ok)
	assert.Same(t, input, el.(*fakeNode))
}

func TestResolverExplicitFallbacks(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()

	input := &fakeNode{tag: "input"}
	session.nodes["/html/body/alt/input"] = input

	loc := entity.Locator{
		Name:      "fallback_target",
		Primary:   "/html/body/main/span",
		Fallbacks: []string{"/html/body/alt/input"},
	}

	el, ok := newTestResolver(session).Resolve(ctx, loc, 5*time.Millisecond)
	require.True(t, ok)
	assert.Same(t, input, el.(*fakeNode))
}

func TestResolverNotFoundIsNegative(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()

	_, ok := newTestResolver(session).Resolve(ctx, usernameField, 5*time.Millisecond)
	assert.False(t, ok)
}

func TestFallbackPathsDeduplicatesSwap(t *testing.T) {
	loc := entity.Locator{
		Primary:   "/a/b/label",
		Fallbacks: []string{"/a/b/input"},
	}

	paths := fallbackPaths(loc)
	assert.Equal(t, []string{"/a/b/input"}, paths)
}
