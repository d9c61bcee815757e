package shortcuts

import (
	"testing"

	"vgi/internal/vdf"
)

func TestFindNumericContainerNestedTwoLevels(t *testing.T) {
	entries := vdf.NewMap()
	entries.Set("0", vdf.NewMap())
	entries.Set("1", vdf.NewMap())

	inner := vdf.NewMap()
	inner.Set("shortcuts", entries)

	root := vdf.NewMap()
	root.Set("UserLocalConfigStore", inner)

	got := FindNumericContainer(root)
	if got != entries {
		t.Fatal("expected the existing numeric container, not a new node")
	}
}

func TestFindNumericContainerNone(t *testing.T) {
	root := vdf.NewMap()
	root.Set("a", vdf.String("x"))
	child := vdf.NewMap()
	child.Set("not-numeric", vdf.String("y"))
	root.Set("b", child)

	if got := FindNumericContainer(root); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestFindNumericContainerEmptyMapDoesNotQualify(t *testing.T) {
	root := vdf.NewMap()
	root.Set("shortcuts", vdf.NewMap())

	if got := FindNumericContainer(root); got != nil {
		t.Fatal("an empty map must not qualify as a numeric container")
	}
}

func TestFindNumericContainerPreOrderTieBreak(t *testing.T) {
	first := vdf.NewMap()
	first.Set("0", vdf.String("a"))
	second := vdf.NewMap()
	second.Set("0", vdf.String("b"))

	root := vdf.NewMap()
	root.Set("alpha", first)
	root.Set("beta", second)

	if got := FindNumericContainer(root); got != first {
		t.Fatal("expected the first qualifying container in pre-order")
	}
}

func TestLocateOrCreateFallback(t *testing.T) {
	root := vdf.NewMap()

	container := LocateOrCreate(root, FallbackContainerKey)
	if container == nil || !container.IsMap() {
		t.Fatal("expected a created container")
	}

	// Same node on a second call.
	if again := LocateOrCreate(root, FallbackContainerKey); again != container {
		t.Fatal("expected the fallback container to be reused")
	}
}
