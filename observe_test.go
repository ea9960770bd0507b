package xsdedit

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []Event
}

func (r *recorder) Notify(ev Event) { r.events = append(r.events, ev) }

func TestBusPublishesToNodeListener(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	rec := &recorder{}
	doc.Subscribe(person.ID(), rec)

	require.NoError(t, doc.Execute(Rename(person, "individual")))
	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, PropertyChanged, ev.Kind)
	assert.Same(t, person, ev.Node)
	assert.Equal(t, "name", ev.Property)
	assert.Equal(t, "person", ev.Old)
	assert.Equal(t, "individual", ev.New)
}

// Events bubble to ancestors: a listener on the schema root sees every
// change in the document.
func TestBusEventsBubble(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()
	age := schema.ChildAt(1).ChildAt(0).ChildAt(1)

	rootRec := &recorder{}
	doc.Subscribe(schema.ID(), rootRec)
	siblingRec := &recorder{}
	doc.Subscribe(schema.ChildAt(0).ID(), siblingRec)

	require.NoError(t, doc.Execute(Rename(age, "years")))
	assert.Len(t, rootRec.events, 1)
	// Unrelated subtrees stay quiet.
	assert.Empty(t, siblingRec.events)
}

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		doc.Subscribe(person.ID(), ListenerFunc(func(Event) {
			order = append(order, i)
		}))
	}

	require.NoError(t, doc.Execute(Rename(person, "x")))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestBusIsolatesPanickingListener(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	doc := NewDocument(WithLogger(logger))
	require.NoError(t, doc.Load(personSchema))
	person := doc.Root().ChildAt(0)

	doc.Subscribe(person.ID(), ListenerFunc(func(Event) {
		panic("listener bug")
	}))
	rec := &recorder{}
	doc.Subscribe(person.ID(), rec)

	require.NoError(t, doc.Execute(Rename(person, "x")))
	// The panic did not stop delivery to later listeners.
	assert.Len(t, rec.events, 1)
}

func TestBusUnsubscribe(t *testing.T) {
	doc := loadDocument(t, personSchema)
	person := doc.Root().ChildAt(0)

	rec := &recorder{}
	sub := doc.Subscribe(person.ID(), rec)
	doc.Unsubscribe(person.ID(), sub)

	require.NoError(t, doc.Execute(Rename(person, "x")))
	assert.Empty(t, rec.events)
}

// Subscriptions key on node identity, so a node removed and restored
// by undo keeps its listeners.
func TestBusSubscriptionSurvivesUndo(t *testing.T) {
	doc := loadDocument(t, personSchema)
	seq := doc.Root().ChildAt(1).ChildAt(0)
	name := seq.ChildAt(0)

	rec := &recorder{}
	doc.Subscribe(name.ID(), rec)

	require.NoError(t, doc.Execute(RemoveChild(name)))
	require.NoError(t, doc.Undo())
	require.NoError(t, doc.Execute(Rename(name, "fullName")))

	var sawRename bool
	for _, ev := range rec.events {
		if ev.Kind == PropertyChanged && ev.Property == "name" {
			sawRename = true
		}
	}
	assert.True(t, sawRename)
}

func TestBusChildEvents(t *testing.T) {
	doc := loadDocument(t, personSchema)
	schema := doc.Root()

	rec := &recorder{}
	doc.Subscribe(schema.ID(), rec)

	el := NewElement("company")
	require.NoError(t, doc.Execute(AddChild(schema, el, -1)))
	require.NoError(t, doc.Undo())

	require.Len(t, rec.events, 2)
	assert.Equal(t, ChildAdded, rec.events[0].Kind)
	assert.Same(t, el, rec.events[0].Child)
	assert.Equal(t, ChildRemoved, rec.events[1].Kind)
}

func TestBusNilSafePublish(t *testing.T) {
	var bus *Bus
	// Must not panic.
	bus.Publish(Event{Kind: PropertyChanged, Node: NewElement("a")})
}
