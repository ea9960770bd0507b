package xsdedit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDocument(t *testing.T, text string) *Document {
	t.Helper()
	doc := NewDocument()
	require.NoError(t, doc.Load(text))
	return doc
}

func TestAddChildCommand(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	el := NewElement("company")

	require.NoError(t, doc.Execute(AddChild(schema, el, -1)))
	assert.Equal(t, 3, schema.ChildCount())
	assert.Same(t, el, schema.ChildAt(2))

	require.NoError(t, doc.Undo())
	assert.Equal(t, 2, schema.ChildCount())
	assert.Nil(t, el.Parent())

	require.NoError(t, doc.Redo())
	assert.Same(t, el, schema.ChildAt(2))
}

func TestAddChildValidatesBeforeMutating(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	seq := schema.ChildAt(1).ChildAt(0)

	err := doc.Execute(AddChild(seq, schema, 0))
	assert.ErrorIs(t, err, ErrCycle)
	// Nothing changed and nothing was recorded.
	assert.Equal(t, 2, seq.ChildCount())
	assert.False(t, doc.CanUndo())
}

func TestRemoveChildRestoresPosition(t *testing.T) {
	doc := loadDocument(t, personSchema)
	seq := doc.Root().ChildAt(1).ChildAt(0)
	name := seq.ChildAt(0)
	age := seq.ChildAt(1)

	require.NoError(t, doc.Execute(RemoveChild(name)))
	assert.Equal(t, 1, seq.ChildCount())
	assert.Same(t, age, seq.ChildAt(0))

	require.NoError(t, doc.Undo())
	require.Equal(t, 2, seq.ChildCount())
	assert.Same(t, name, seq.ChildAt(0))
	assert.Same(t, age, seq.ChildAt(1))
}

// A burst of renames merges into one entry: a single undo restores the
// name from before the first keystroke.
func TestRenameMerging(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	require.NoError(t, doc.Execute(Rename(person, "p")))
	require.NoError(t, doc.Execute(Rename(person, "pe")))
	require.NoError(t, doc.Execute(Rename(person, "peer")))
	assert.Equal(t, "peer", person.Name())

	require.NoError(t, doc.Undo())
	assert.Equal(t, "person", person.Name())
	assert.False(t, doc.CanUndo())

	require.NoError(t, doc.Redo())
	assert.Equal(t, "peer", person.Name())
}

func TestRenameDoesNotMergeAcrossNodes(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)
	personType := doc.Root().ChildAt(1)

	require.NoError(t, doc.Execute(Rename(person, "individual")))
	require.NoError(t, doc.Execute(Rename(personType, "IndividualType")))

	require.NoError(t, doc.Undo())
	assert.Equal(t, "PersonType", personType.Name())
	assert.Equal(t, "individual", person.Name())
}

func TestRenameRejectsEmptyName(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	err := doc.Execute(Rename(person, ""))
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, "person", person.Name())
	assert.False(t, doc.CanUndo())
}

func TestChangeCardinality(t *testing.T) {
	doc := loadDocument(t, personSchema)
	age := doc.Root().ChildAt(1).ChildAt(0).ChildAt(1)

	require.NoError(t, doc.Execute(ChangeCardinality(age, Occurs{Min: 0, Max: Unbounded})))
	assert.Equal(t, Occurs{Min: 0, Max: Unbounded}, age.Occurs())

	err := doc.Execute(ChangeCardinality(age, Occurs{Min: 5, Max: 2}))
	assert.ErrorIs(t, err, ErrInvalidCardinality)
	assert.Equal(t, Occurs{Min: 0, Max: Unbounded}, age.Occurs())

	require.NoError(t, doc.Undo())
	assert.Equal(t, Occurs{Min: 0, Max: 1}, age.Occurs())
}

// Duplicate then delete the copy, then undo both: the tree must return
// to the duplicated state with the same clone instance.
func TestDuplicateThenDelete(t *testing.T) {
	doc := loadDocument(t, personSchema)
	seq := doc.Root().ChildAt(1).ChildAt(0)
	name := seq.ChildAt(0)

	dup := DuplicateSubtree(name)
	require.NoError(t, doc.Execute(dup))
	clone := dup.(*duplicateCommand).Clone()
	require.NotNil(t, clone)
	require.Equal(t, 3, seq.ChildCount())
	assert.Same(t, clone, seq.ChildAt(1))
	assert.True(t, StructurallyEqual(name, clone))
	assert.NotEqual(t, name.ID(), clone.ID())

	require.NoError(t, doc.Execute(RemoveChild(clone)))
	assert.Equal(t, 2, seq.ChildCount())

	require.NoError(t, doc.Undo())
	assert.Same(t, clone, seq.ChildAt(1))

	require.NoError(t, doc.Undo())
	assert.Equal(t, 2, seq.ChildCount())
	assert.Nil(t, clone.Parent())

	// Redo reinserts the identical clone, not a second copy.
	require.NoError(t, doc.Redo())
	assert.Same(t, clone, seq.ChildAt(1))
}

func TestMoveChild(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	seq := schema.ChildAt(1).ChildAt(0)
	name := seq.ChildAt(0)

	require.NoError(t, doc.Execute(MoveChild(name, schema, -1)))
	assert.Equal(t, 1, seq.ChildCount())
	assert.Same(t, name, schema.ChildAt(2))

	require.NoError(t, doc.Undo())
	assert.Same(t, name, seq.ChildAt(0))
	assert.Equal(t, 2, schema.ChildCount())
}

func TestMoveChildRejectsCycle(t *testing.T) {
	doc := loadDocument(t, personSchema)
	personType := doc.Root().ChildAt(1)
	seq := personType.ChildAt(0)

	err := doc.Execute(MoveChild(personType, seq, 0))
	assert.ErrorIs(t, err, ErrCycle)
	assert.Same(t, doc.Root(), personType.Parent())
}

func TestSetFacetValue(t *testing.T) {
	text := `<xs:schema xmlns:xs="` + XSDNamespace + `">
  <xs:simpleType name="Age">
    <xs:restriction base="xs:integer">
      <xs:maxInclusive value="120"/>
      <xs:fractionDigits value="0"/>
    </xs:restriction>
  </xs:simpleType>
</xs:schema>`
	doc := loadDocument(t, text)
	restriction := doc.Root().ChildAt(0).ChildAt(0)
	maxInc := restriction.ChildAt(0)
	frac := restriction.ChildAt(1)

	require.NoError(t, doc.Execute(SetFacetValue(maxInc, "130")))
	assert.Equal(t, "130", maxInc.Facet().Value)

	err := doc.Execute(SetFacetValue(frac, "2"))
	assert.ErrorIs(t, err, ErrImmutableFacet)
	assert.Equal(t, "0", frac.Facet().Value)

	require.NoError(t, doc.Undo())
	assert.Equal(t, "120", maxInc.Facet().Value)
}

func TestSetDocumentationMerges(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	require.NoError(t, doc.Execute(SetDocumentation(person, "A")))
	require.NoError(t, doc.Execute(SetDocumentation(person, "A person")))
	assert.Equal(t, "A person", person.Documentation())

	require.NoError(t, doc.Undo())
	assert.Equal(t, "", person.Documentation())
	assert.False(t, doc.CanUndo())
}

func TestSetTypeRefResolves(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	personType := schema.ChildAt(1)
	age := personType.ChildAt(0).ChildAt(1)

	require.NoError(t, doc.Execute(SetTypeRef(age, "PersonType")))
	assert.Equal(t, "PersonType", age.Element().TypeRef)
	assert.Same(t, personType, age.Element().ResolvedType)

	require.NoError(t, doc.Undo())
	assert.Equal(t, "xs:int", age.Element().TypeRef)
	assert.Nil(t, age.Element().ResolvedType)

	// Setting a type on something that has none.
	err := doc.Execute(SetTypeRef(personType, "xs:string"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetAttributeUse(t *testing.T) {
	doc := loadDocument(t, personSchema)
	id := doc.Root().ChildAt(1).ChildAt(1)

	require.NoError(t, doc.Execute(SetAttributeUse(id, UseOptional)))
	assert.Equal(t, UseOptional, id.Attribute().Use)

	require.NoError(t, doc.Undo())
	assert.Equal(t, UseRequired, id.Attribute().Use)
}

func TestCompoundCommand(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	person := schema.ChildAt(0)
	el := NewElement("address")

	cmd := Compound("add and rename",
		AddChild(schema, el, -1),
		Rename(person, "individual"),
	)
	require.NoError(t, doc.Execute(cmd))
	assert.Equal(t, 3, schema.ChildCount())
	assert.Equal(t, "individual", person.Name())

	// One undo reverts both steps.
	require.NoError(t, doc.Undo())
	assert.Equal(t, 2, schema.ChildCount())
	assert.Equal(t, "person", person.Name())
}

func TestCompoundRollsBackOnFailure(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	person := schema.ChildAt(0)
	el := NewElement("address")

	cmd := Compound("partial failure",
		AddChild(schema, el, -1),
		Rename(person, ""),
	)
	err := doc.Execute(cmd)
	assert.ErrorIs(t, err, ErrInvalidName)
	// The applied prefix was rolled back.
	assert.Equal(t, 2, schema.ChildCount())
	assert.Nil(t, el.Parent())
	assert.False(t, doc.CanUndo())
}

func TestCommandErrorCarriesDescription(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	err := doc.Execute(Rename(person, ""))
	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "rename", ce.Cmd)
}
