package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooncheol/bapsang/internal/config"
)

func TestExtractFacts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		budget  int64
		want    FactType
		content string
		none    bool
	}{
		{
			name:    "allergy keyword",
			input:   "저는 땅콩 알레르기가 있어요",
			want:    TypeAllergy,
			content: "사용자 제한사항: 저는 땅콩 알레르기가 있어요",
		},
		{
			name:    "dietary restriction",
			input:   "버섯은 못 먹어요",
			want:    TypeAllergy,
			content: "사용자 제한사항: 버섯은 못 먹어요",
		},
		{
			name:    "taste preference",
			input:   "매운 음식 좋아해요",
			want:    TypePreference,
			content: "사용자 선호: 매운 음식 좋아해요",
		},
		{
			name:    "restriction outranks preference",
			input:   "알레르기 때문에 땅콩은 싫어해요",
			want:    TypeAllergy,
			content: "사용자 제한사항: 알레르기 때문에 땅콩은 싫어해요",
		},
		{
			name:    "explicit budget",
			input:   "김치찌개 재료 사줘",
			budget:  30000,
			want:    TypePreference,
			content: "사용자 예산 선호: 30,000원",
		},
		{
			name:  "nothing memorable",
			input: "스테이크 만들어줘",
			none:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := ExtractFacts(tt.input, tt.budget, "s1")
			if tt.none {
				assert.Empty(t, facts)
				return
			}
			require.Len(t, facts, 1)
			assert.Equal(t, tt.want, facts[0].Type)
			assert.Equal(t, tt.content, facts[0].Content)
			assert.Equal(t, []string{"s1"}, facts[0].Sessions)
			assert.False(t, facts[0].Reinforced)
			assert.NotEmpty(t, facts[0].ID)
		})
	}
}

func TestFactKeyNormalization(t *testing.T) {
	a := FactKey(TypePreference, "  매운 거   좋아함 ")
	b := FactKey(TypePreference, "매운 거 좋아함")
	assert.Equal(t, a, b)

	// Same content under a different type is a different fact.
	c := FactKey(TypeAllergy, "매운 거 좋아함")
	assert.NotEqual(t, a, c)
}

func TestMergeUnionOnly(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Merge(ctx, "u1", ExtractFacts("땅콩 알레르기가 있어요", 0, "s1")))
	require.NoError(t, store.Merge(ctx, "u1", ExtractFacts("매운 음식 좋아해요", 0, "s1")))

	facts, err := store.Facts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.False(t, facts[0].Reinforced)

	// Restating the allergy in a second session reinforces instead of
	// duplicating.
	require.NoError(t, store.Merge(ctx, "u1", ExtractFacts("땅콩 알레르기가 있어요", 0, "s2")))

	facts, err = store.Facts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, TypeAllergy, facts[0].Type)
	assert.ElementsMatch(t, []string{"s1", "s2"}, facts[0].Sessions)
	assert.True(t, facts[0].Reinforced)
	assert.False(t, facts[1].Reinforced)
}

func TestMergeSameSessionDoesNotReinforce(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Merge(ctx, "u1", ExtractFacts("견과류는 못 먹어요", 0, "s1")))
	}

	facts, err := store.Facts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, []string{"s1"}, facts[0].Sessions)
	assert.False(t, facts[0].Reinforced)
}

func TestInMemoryConcurrentMerges(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("s%d", i)
			err := store.Merge(ctx, "u1", ExtractFacts("유제품은 못 먹어요", 0, sid))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	facts, err := store.Facts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Len(t, facts[0].Sessions, 20)
	assert.True(t, facts[0].Reinforced)
}

func TestFactsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Merge(ctx, "u1", ExtractFacts("해산물 알레르기 있어요", 0, "s1")))

	facts, err := store.Facts(ctx, "u1")
	require.NoError(t, err)
	facts[0].Content = "변조"

	fresh, err := store.Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "사용자 제한사항: 해산물 알레르기 있어요", fresh[0].Content)
}

func TestMergeEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Merge(ctx, "u1", nil))

	facts, err := store.Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestNewSelectsBackend(t *testing.T) {
	store, err := New(config.MemoryConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryStore{}, store)
	require.NoError(t, store.Close())

	store, err = New(config.MemoryConfig{Backend: "badger"})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, store)
	require.NoError(t, store.Close())

	_, err = New(config.MemoryConfig{Backend: "redis"})
	assert.Error(t, err)
}
