package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/crystal/pkg/layout"
)

func TestBuild_Structure(t *testing.T) {
	doc, err := ReadFile("testdata/dashboard.toml")
	if err != nil {
		t.Fatal(err)
	}

	root, err := doc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var ids []string
	kinds := map[string]layout.Kind{}
	for n := range layout.Walk(root) {
		ids = append(ids, n.ID())
		kinds[n.ID()] = n.Kind()
	}
	if diff := cmp.Diff(doc.IDs(), ids); diff != "" {
		t.Errorf("built tree order mismatch (-doc +tree):\n%s", diff)
	}
	want := map[string]layout.Kind{
		"root":    layout.KindVertical,
		"main":    layout.KindHorizontal,
		"sidebar": layout.KindEmpty,
		"content": layout.KindBlock,
		"card":    layout.KindEmpty,
		"status":  layout.KindEmpty,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	main, _ := layout.Find(root, "main")
	if h := main.(*layout.Horizontal); h.Spacing != 8 || h.Padding != 4 {
		t.Errorf("main spacing/padding = %v/%v, want 8/4", h.Spacing, h.Padding)
	}
}

func TestBuild_Solves(t *testing.T) {
	doc, err := ReadFile("testdata/regression.json")
	if err != nil {
		t.Fatal(err)
	}
	root, err := doc.Build()
	if err != nil {
		t.Fatal(err)
	}

	if errs := layout.Solve(root, doc.Viewport.Size()); len(errs) != 0 {
		t.Errorf("unexpected layout errors: %v", errs)
	}

	want := map[string]layout.Size{
		"root":    {Width: 250, Height: 250},
		"child-1": {Width: 250, Height: 250},
		"child-2": {Width: 0, Height: 20},
		"child-3": {Width: 0, Height: 250},
	}
	for id, size := range want {
		n, ok := layout.Find(root, id)
		if !ok {
			t.Fatalf("node %q missing", id)
		}
		if n.Size() != size {
			t.Errorf("%s size = %v, want %v", id, n.Size(), size)
		}
	}
}

func TestBuild_FreshTreeEachCall(t *testing.T) {
	doc, err := ReadFile("testdata/dashboard.toml")
	if err != nil {
		t.Fatal(err)
	}

	a, _ := doc.Build()
	b, _ := doc.Build()
	if a == b {
		t.Fatal("Build returned the same tree twice")
	}

	layout.Solve(a, layout.Size{Width: 800, Height: 600})
	if b.Size() != (layout.Size{}) {
		t.Errorf("solving one tree changed another: %v", b.Size())
	}
}

func TestBuild_Invalid(t *testing.T) {
	doc := Document{Root: NodeSpec{ID: "root", Kind: "triangle"}}
	if root, err := doc.Build(); err == nil || root != nil {
		t.Errorf("Build() = %v, %v; want an error", root, err)
	}
}

func TestFromNode(t *testing.T) {
	doc, err := ReadFile("testdata/dashboard.toml")
	if err != nil {
		t.Fatal(err)
	}
	root, err := doc.Build()
	if err != nil {
		t.Fatal(err)
	}

	got := FromNode(root)

	// Kinds are normalized to their canonical names.
	want := doc.Root
	var fill func(n *NodeSpec)
	fill = func(n *NodeSpec) {
		if n.Kind == "" {
			n.Kind = "empty"
		}
		for i := range n.Children {
			fill(&n.Children[i])
		}
	}
	fill(&want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromNode() mismatch (-want +got):\n%s", diff)
	}
}
