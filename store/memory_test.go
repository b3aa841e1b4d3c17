package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/rushteam/cfkit/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if _, err := m.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) error = %v, want store not found", err)
	}

	if err := m.Set(ctx, "k1", []byte("v1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := m.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("Get(k1) = %q, want %q", got, "v1")
	}

	if err := m.Delete(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want store not found", err)
	}
}

func TestMemoryStore_Batch(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	kvs := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := m.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}

	got, err := m.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("BatchGet() len = %d, want 2 (missing keys skipped)", len(got))
	}
	if !bytes.Equal(got["a"], []byte("1")) || !bytes.Equal(got["b"], []byte("2")) {
		t.Errorf("BatchGet() = %v", got)
	}
}

func TestMemoryStore_ZSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	// 分数降序；同分按 member 升序
	adds := []struct {
		member string
		score  float64
	}{
		{"low", 1.0},
		{"high", 9.0},
		{"mid-b", 5.0},
		{"mid-a", 5.0},
	}
	for _, a := range adds {
		if err := m.ZAdd(ctx, "board", a.score, a.member); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{name: "full range", start: 0, stop: -1, want: []string{"high", "mid-a", "mid-b", "low"}},
		{name: "top two", start: 0, stop: 1, want: []string{"high", "mid-a"}},
		{name: "tail", start: 3, stop: -1, want: []string{"low"}},
		{name: "out of range", start: 10, stop: 20, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ZRange(ctx, "board", tt.start, tt.stop)
			if err != nil {
				t.Fatalf("ZRange() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ZRange() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ZRange()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	score, err := m.ZScore(ctx, "board", "high")
	if err != nil {
		t.Fatal(err)
	}
	if score != 9.0 {
		t.Errorf("ZScore(high) = %v, want 9.0", score)
	}
	if _, err := m.ZScore(ctx, "board", "nope"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(missing member) error = %v, want store not found", err)
	}

	// ZAdd 覆盖已有 member 的分数
	if err := m.ZAdd(ctx, "board", 10.0, "low"); err != nil {
		t.Fatal(err)
	}
	got, err := m.ZRange(ctx, "board", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "low" {
		t.Errorf("ZRange() after rescore = %v, want [low]", got)
	}
}

func TestMemoryStore_Hash(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if err := m.HSet(ctx, "h", "f1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := m.HSet(ctx, "h", "f2", []byte("v2")); err != nil {
		t.Fatal(err)
	}

	got, err := m.HGet(ctx, "h", "f1")
	if err != nil {
		t.Fatalf("HGet() error = %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("HGet(h, f1) = %q, want %q", got, "v1")
	}
	if _, err := m.HGet(ctx, "h", "nope"); !core.IsStoreNotFound(err) {
		t.Errorf("HGet(missing field) error = %v, want store not found", err)
	}

	all, err := m.HGetAll(ctx, "h")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("HGetAll() len = %d, want 2", len(all))
	}
	if !bytes.Equal(all["f2"], []byte("v2")) {
		t.Errorf("HGetAll()[f2] = %q, want %q", all["f2"], "v2")
	}
}

func TestMemoryStore_Name(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()
	if m.Name() != "memory" {
		t.Errorf("Name() = %q, want %q", m.Name(), "memory")
	}
}
