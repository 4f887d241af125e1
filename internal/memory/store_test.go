package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock(ts string) func() time.Time {
	t, _ := time.ParseInLocation(TimestampFormat, ts, time.Local)
	return func() time.Time { return t }
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.json")
	return NewStore(NewJSONFile(path), nil), path
}

func TestStore_AddNew(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.WithClock(fixedClock("2024-05-01 10:00:00"))

	if err := store.Add(ctx, "Kangaroos hop"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Add(ctx, "Bingo likes drawing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := store.Load(ctx)
	if len(data.Memories) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(data.Memories))
	}
	if data.Memories[1].Content != "Bingo likes drawing" {
		t.Errorf("expected append order, got %+v", data.Memories)
	}
	if data.Memories[0].Timestamp != "2024-05-01 10:00:00" {
		t.Errorf("unexpected timestamp %q", data.Memories[0].Timestamp)
	}
}

func TestStore_AddDuplicateRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.WithClock(fixedClock("2024-05-01 10:00:00"))
	store.Add(ctx, "Kangaroos hop")
	store.Add(ctx, "Bingo likes drawing")

	store.WithClock(fixedClock("2024-06-02 11:30:00"))
	if err := store.Add(ctx, "KANGAROOS HOP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := store.Load(ctx)
	if len(data.Memories) != 2 {
		t.Fatalf("duplicate must not add a record, got %d", len(data.Memories))
	}
	if data.Memories[0].Content != "Kangaroos hop" {
		t.Errorf("content must be unchanged, got %q", data.Memories[0].Content)
	}
	if data.Memories[0].Timestamp != "2024-06-02 11:30:00" {
		t.Errorf("timestamp must be refreshed, got %q", data.Memories[0].Timestamp)
	}
	if data.Memories[1].Timestamp != "2024-05-01 10:00:00" {
		t.Errorf("other records must be untouched, got %q", data.Memories[1].Timestamp)
	}
}

func TestStore_AddBlankIsNoop(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	if err := store.Add(ctx, "   "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("blank summary must not touch the memory file")
	}
}

func TestStore_LoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	if got := store.Load(ctx); got.Memories == nil || len(got.Memories) != 0 {
		t.Errorf("missing file: expected empty memories, got %+v", got)
	}

	os.WriteFile(path, []byte("{not json"), 0644)
	if got := store.Load(ctx); got.Memories == nil || len(got.Memories) != 0 {
		t.Errorf("corrupt file: expected empty memories, got %+v", got)
	}

	os.WriteFile(path, []byte(`{"other": 1}`), 0644)
	if got := store.Load(ctx); got.Memories == nil || len(got.Memories) != 0 {
		t.Errorf("missing key: expected empty memories, got %+v", got)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	in := &Data{Memories: []Record{
		{Content: "first", Timestamp: "2024-01-01 00:00:00"},
		{Content: "second ☀️", Timestamp: "2024-01-02 00:00:00"},
	}}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := store.Load(ctx)
	if len(out.Memories) != 2 || out.Memories[1] != in.Memories[1] {
		t.Errorf("round trip mismatch: %+v", out)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "\n  \"memories\": [") {
		t.Errorf("expected two-space indented JSON, got:\n%s", raw)
	}
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "memory.json")
	store := NewStore(NewJSONFile(path), nil)

	if err := store.Add(ctx, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestStore_Init(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	if err := store.Init(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected memory file: %v", err)
	}
	if !strings.Contains(string(raw), `"memories": []`) {
		t.Errorf("expected empty memories, got %s", raw)
	}

	store.Add(ctx, "keep me")
	if err := store.Init(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Load(ctx).Memories) != 1 {
		t.Error("Init must not overwrite existing memories")
	}
}

func TestStore_Context(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if got := store.Context(ctx); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}

	store.WithClock(fixedClock("2024-05-01 10:00:00"))
	store.Add(ctx, "Kangaroos hop")
	store.Add(ctx, "Bingo likes drawing")

	want := DefaultContextHeader +
		"Memory 1 (2024-05-01 10:00:00): Kangaroos hop\n\n" +
		"Memory 2 (2024-05-01 10:00:00): Bingo likes drawing\n\n"
	if got := store.Context(ctx); got != want {
		t.Errorf("unexpected context:\n%q\nwant:\n%q", got, want)
	}

	store.WithContextHeader("Memories:\n")
	if got := store.Context(ctx); !strings.HasPrefix(got, "Memories:\nMemory 1") {
		t.Errorf("expected custom header, got %q", got)
	}
}

func TestStore_Display(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if got := store.Display(ctx); got != NoMemoriesText {
		t.Errorf("expected %q, got %q", NoMemoriesText, got)
	}

	store.WithClock(fixedClock("2024-05-01 10:00:00"))
	store.Add(ctx, "Kangaroos hop")

	want := "# Bluey's Memories 🐾\n\n### Memory 1\n*Saved on: 2024-05-01 10:00:00*\n\nKangaroos hop\n\n---\n\n"
	if got := store.Display(ctx); got != want {
		t.Errorf("unexpected display:\n%q\nwant:\n%q", got, want)
	}
}

func TestStore_ConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			store.Add(ctx, strings.Repeat("x", i+1))
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := len(store.Load(ctx).Memories); got != 10 {
		t.Errorf("expected 10 memories, got %d", got)
	}
}

func TestStore_ContextDuringConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for i := 0; i < 20; i++ {
		if err := store.Add(ctx, fmt.Sprintf("seed %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			store.Add(ctx, fmt.Sprintf("extra %d", i))
		}
	}()

	empty := 0
	for i := 0; i < 300; i++ {
		if store.Context(ctx) == "" {
			empty++
		}
	}
	wg.Wait()

	if empty > 0 {
		t.Errorf("Context returned empty %d times while memories were stored", empty)
	}
	if got := len(store.Load(ctx).Memories); got != 70 {
		t.Errorf("expected 70 memories, got %d", got)
	}
}

func TestJSONFile_ReadersNeverSeePartialWrites(t *testing.T) {
	ctx := context.Background()
	backend := NewJSONFile(filepath.Join(t.TempDir(), "memory.json"))

	data := Empty()
	for i := 0; i < 200; i++ {
		data.Upsert(fmt.Sprintf("memory number %d", i), "2024-05-01 10:00:00")
	}
	if err := backend.Save(ctx, data); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				backend.Save(ctx, data)
			}
		}
	}()

	for i := 0; i < 300; i++ {
		got, err := backend.Load(ctx)
		if err != nil {
			t.Errorf("load during save failed: %v", err)
			break
		}
		if len(got.Memories) != 200 {
			t.Errorf("expected 200 memories, got %d", len(got.Memories))
			break
		}
	}
	close(stop)
	wg.Wait()

	entries, err := os.ReadDir(filepath.Dir(backend.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestData_Upsert(t *testing.T) {
	d := Empty()
	if d.Upsert("a", "t1") {
		t.Error("first insert must not report a refresh")
	}
	if !d.Upsert("A", "t2") {
		t.Error("case-insensitive match must report a refresh")
	}
	if d.Upsert("a ", "t3") {
		t.Error("only exact matches are duplicates")
	}
	if len(d.Memories) != 2 || d.Memories[0].Timestamp != "t2" {
		t.Errorf("unexpected data %+v", d.Memories)
	}
}
