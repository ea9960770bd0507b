package xsdedit

import (
	"errors"
	"testing"
)

func TestInsertChildRejectsCycle(t *testing.T) {
	root := NewComplexType("T")
	seq := NewCompositor(KindSequence)
	if err := root.insertChild(seq, 0); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := seq.insertChild(root, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("inserting ancestor under descendant: err = %v, want ErrCycle", err)
	}
	if err := seq.insertChild(seq, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("inserting node under itself: err = %v, want ErrCycle", err)
	}
}

func TestInsertChildRejectsOwnedNode(t *testing.T) {
	a := NewCompositor(KindSequence)
	b := NewCompositor(KindChoice)
	child := NewElement("x")
	if err := a.insertChild(child, 0); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := b.insertChild(child, 0); !errors.Is(err, ErrAlreadyOwned) {
		t.Errorf("err = %v, want ErrAlreadyOwned", err)
	}
}

func TestInsertChildIndexBounds(t *testing.T) {
	seq := NewCompositor(KindSequence)
	if err := seq.insertChild(NewElement("a"), 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
	if err := seq.insertChild(NewElement("a"), -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSimpleTypeSingleContentModel(t *testing.T) {
	st := NewSimpleType("T")
	if err := st.insertChild(NewRestriction("xs:string"), 0); err != nil {
		t.Fatalf("first content model rejected: %v", err)
	}
	if err := st.insertChild(NewList("xs:int"), 1); !errors.Is(err, ErrContentConflict) {
		t.Errorf("err = %v, want ErrContentConflict", err)
	}
	// Removing the restriction frees the slot.
	if _, err := st.detachChild(st.ChildAt(0)); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if err := st.insertChild(NewList("xs:int"), 0); err != nil {
		t.Errorf("insert after detach failed: %v", err)
	}
}

func TestDetachChild(t *testing.T) {
	seq := NewCompositor(KindSequence)
	a := NewElement("a")
	b := NewElement("b")
	seq.insertChild(a, 0)
	seq.insertChild(b, 1)

	idx, err := seq.detachChild(a)
	if err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if idx != 0 || a.Parent() != nil || seq.ChildCount() != 1 {
		t.Errorf("detach: idx=%d parent=%v count=%d", idx, a.Parent(), seq.ChildCount())
	}

	if _, err := seq.detachChild(a); !errors.Is(err, ErrNotAChild) {
		t.Errorf("double detach: err = %v, want ErrNotAChild", err)
	}
}

func TestNodeIdentityIsUnique(t *testing.T) {
	seen := make(map[NodeID]bool)
	for i := 0; i < 100; i++ {
		n := NewElement("e")
		if seen[n.ID()] {
			t.Fatalf("duplicate node ID %d", n.ID())
		}
		seen[n.ID()] = true
	}
}

func TestCloneSubtreeFreshIdentities(t *testing.T) {
	ct := NewComplexType("T")
	seq := NewCompositor(KindSequence)
	el := NewElement("item")
	el.setDocumentation("a doc")
	seq.insertChild(el, 0)
	ct.insertChild(seq, 0)

	clone := ct.cloneSubtree()
	if clone.Parent() != nil {
		t.Error("clone should be detached")
	}
	if !StructurallyEqual(ct, clone) {
		t.Error("clone is not structurally equal to the source")
	}

	ids := make(map[NodeID]bool)
	ct.Walk(func(n *Node) bool { ids[n.ID()] = true; return true })
	clone.Walk(func(n *Node) bool {
		if ids[n.ID()] {
			t.Errorf("clone shares node ID %d with source", n.ID())
		}
		return true
	})
}

func TestStructurallyEqualIgnoresIdentity(t *testing.T) {
	a := NewElement("item")
	b := NewElement("item")
	if !StructurallyEqual(a, b) {
		t.Error("same-shaped nodes should compare equal")
	}
	b.setName("other")
	if StructurallyEqual(a, b) {
		t.Error("differently named nodes should not compare equal")
	}
}

func TestRootAndFindByID(t *testing.T) {
	tree, err := Parse(personSchema)
	if err != nil {
		t.Fatalf("Failed to parse schema: %v", err)
	}
	var leaf *Node
	tree.Walk(func(n *Node) bool {
		leaf = n
		return true
	})
	if leaf.Root() != tree {
		t.Error("Root did not return the schema node")
	}
	if tree.FindByID(leaf.ID()) != leaf {
		t.Error("FindByID did not locate the node")
	}
	if tree.FindByID(NodeID(0)) != nil {
		t.Error("FindByID found a node for an unused ID")
	}
}

func TestChildrenReturnsCopy(t *testing.T) {
	seq := NewCompositor(KindSequence)
	seq.insertChild(NewElement("a"), 0)
	kids := seq.Children()
	kids[0] = nil
	if seq.ChildAt(0) == nil {
		t.Error("mutating the returned slice changed the tree")
	}
}

func TestNewCompositorPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewCompositor accepted a non-compositor kind")
		}
	}()
	NewCompositor(KindElement)
}

func TestSetOccursValidates(t *testing.T) {
	el := NewElement("a")
	if err := el.setOccurs(Occurs{Min: -1, Max: 1}); !errors.Is(err, ErrInvalidCardinality) {
		t.Errorf("negative min: err = %v", err)
	}
	if err := el.setOccurs(Occurs{Min: 3, Max: 2}); !errors.Is(err, ErrInvalidCardinality) {
		t.Errorf("max below min: err = %v", err)
	}
	if err := el.setOccurs(Occurs{Min: 2, Max: Unbounded}); err != nil {
		t.Errorf("unbounded max rejected: %v", err)
	}
}
