package rank

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/corpus"
	"github.com/rushteam/cfkit/store"
)

func buildStore(t *testing.T, ratings []core.Rating) *corpus.Corpus {
	t.Helper()
	c, err := corpus.FromRatings(context.Background(), ratings)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRanker_Popularity(t *testing.T) {
	ctx := context.Background()
	c := buildStore(t, []core.Rating{
		{UserID: 1, ItemID: 101, Score: 5},
		{UserID: 1, ItemID: 102, Score: 4},
		{UserID: 2, ItemID: 102, Score: 4},
		{UserID: 3, ItemID: 102, Score: 4},
	})
	r := NewRanker(c)

	tests := []struct {
		name   string
		itemID int64
		want   float64
	}{
		// n=1, avg=5: (1 − 1.1^-1)*5 + 3*1.1^-1
		{name: "single five star", itemID: 101, want: (1-1/1.1)*5 + 3/1.1},
		// n=3, avg=4
		{name: "three ratings", itemID: 102, want: (1-math.Pow(1.1, -3))*4 + 3*math.Pow(1.1, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Popularity(ctx, tt.itemID)
			if err != nil {
				t.Fatalf("Popularity() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Popularity(%d) = %v, want %v", tt.itemID, got, tt.want)
			}
		})
	}

	t.Run("unknown item", func(t *testing.T) {
		if _, err := r.Popularity(ctx, 999); !core.IsNotFound(err) {
			t.Errorf("Popularity(999) error = %v, want NOT_FOUND", err)
		}
	})
}

func TestRanker_ShrinkageTowardPrior(t *testing.T) {
	ctx := context.Background()
	// 同为 5 星均分的物品：评分越多，分数越接近均值 5；
	// 证据单薄的物品被先验 3 拉低
	c := buildStore(t, []core.Rating{
		{UserID: 1, ItemID: 201, Score: 5},
		{UserID: 1, ItemID: 202, Score: 5},
		{UserID: 2, ItemID: 202, Score: 5},
		{UserID: 1, ItemID: 203, Score: 5},
		{UserID: 2, ItemID: 203, Score: 5},
		{UserID: 3, ItemID: 203, Score: 5},
	})
	r := NewRanker(c)

	var prev float64
	for i, itemID := range []int64{201, 202, 203} {
		got, err := r.Popularity(ctx, itemID)
		if err != nil {
			t.Fatal(err)
		}
		if got <= 3.0 || got >= 5.0 {
			t.Errorf("Popularity(%d) = %v, want strictly between prior 3 and avg 5", itemID, got)
		}
		if i > 0 && got <= prev {
			t.Errorf("Popularity(%d) = %v, want > %v (more evidence, closer to avg)", itemID, got, prev)
		}
		prev = got
	}
}

// ratingsCountingStore 统计 RatingsOf 的调用次数，验证记忆化。
type ratingsCountingStore struct {
	core.RatingStore
	calls atomic.Int64
}

func (s *ratingsCountingStore) RatingsOf(ctx context.Context, itemID int64) ([]int, error) {
	s.calls.Add(1)
	return s.RatingStore.RatingsOf(ctx, itemID)
}

func TestRanker_Memoization(t *testing.T) {
	ctx := context.Background()
	c := buildStore(t, []core.Rating{{UserID: 1, ItemID: 101, Score: 4}})
	cs := &ratingsCountingStore{RatingStore: c}
	r := NewRanker(cs)

	first, err := r.Popularity(ctx, 101)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		got, err := r.Popularity(ctx, 101)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Errorf("memoized Popularity() = %v, want %v", got, first)
		}
	}
	if got := cs.calls.Load(); got != 1 {
		t.Errorf("RatingsOf calls = %d, want 1", got)
	}
}

func TestRanker_Ranking(t *testing.T) {
	ctx := context.Background()
	c := buildStore(t, []core.Rating{
		// 301：三条 5 星 → 最热
		{UserID: 1, ItemID: 301, Score: 5},
		{UserID: 2, ItemID: 301, Score: 5},
		{UserID: 3, ItemID: 301, Score: 5},
		// 303 与 302：完全相同的评分 → 同分，靠 ID 升序定序
		{UserID: 1, ItemID: 303, Score: 4},
		{UserID: 1, ItemID: 302, Score: 4},
		// 304：一条 1 星 → 垫底
		{UserID: 2, ItemID: 304, Score: 1},
	})
	r := NewRanker(c)

	got, err := r.Ranking(ctx)
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}
	want := []int64{301, 302, 303, 304}
	if len(got) != len(want) {
		t.Fatalf("Ranking() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ranking()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	// 确定性：重复调用结果一致
	again, err := r.Ranking(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if again[i] != got[i] {
			t.Fatalf("Ranking() not deterministic: %v vs %v", again, got)
		}
	}
}

func TestRanker_Export(t *testing.T) {
	ctx := context.Background()
	c := buildStore(t, []core.Rating{
		{UserID: 1, ItemID: 401, Score: 5},
		{UserID: 2, ItemID: 401, Score: 5},
		{UserID: 1, ItemID: 402, Score: 1},
	})
	r := NewRanker(c)

	mem := store.NewMemoryStore()
	defer mem.Close()

	if err := r.Export(ctx, mem, ""); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	members, err := mem.ZRange(ctx, DefaultRankingKey, 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("ZRange() len = %d, want 2", len(members))
	}
	// ZRange 按分数降序：401 的流行度高于 402
	if members[0] != "401" || members[1] != "402" {
		t.Errorf("ZRange() = %v, want [401 402]", members)
	}

	score, err := mem.ZScore(ctx, DefaultRankingKey, "401")
	if err != nil {
		t.Fatal(err)
	}
	want, err := r.Popularity(ctx, 401)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("ZScore(401) = %v, want %v", score, want)
	}
}
