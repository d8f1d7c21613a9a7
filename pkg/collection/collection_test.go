package collection

import (
	"testing"

	"github.com/sentrywaf/engine/pkg/arena"
	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

func memManager() Manager {
	store := map[string][]*field.Field{}
	return Manager{
		Name:   "mem",
		Scheme: "mem",
		RegisterFn: func(uri string) (interface{}, error) {
			return uri, nil
		},
		PopulateFn: func(inst interface{}, d *dpi.DPI) ([]*field.Field, error) {
			list, ok := store[inst.(string)]
			if !ok {
				return nil, types.NewError(types.Declined, "no data for %s", inst)
			}
			return list, nil
		},
		PersistFn: func(inst interface{}, d *dpi.DPI, collection []*field.Field) error {
			store[inst.(string)] = collection
			return nil
		},
	}
}

func TestConfigureSelectsManagerByScheme(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(memManager()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	b, err := r.Configure("session", "mem://sessions")
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if b.Name() != "session" {
		t.Fatalf("Name() = %q, want session", b.Name())
	}
}

func TestConfigureNoMatchingSchemeDeclines(t *testing.T) {
	r := NewRegistry()
	_, err := r.Configure("session", "redis://host")
	if types.KindOf(err) != types.Declined {
		t.Fatalf("Configure() kind = %v, want Declined", types.KindOf(err))
	}
}

func TestConfigureFallsThroughDecliningManagers(t *testing.T) {
	r := NewRegistry()
	declining := Manager{
		Name:   "declines",
		Scheme: "mem",
		RegisterFn: func(uri string) (interface{}, error) {
			return nil, types.NewError(types.Declined, "not mine")
		},
	}
	accepting := memManager()
	_ = r.Register(declining)
	_ = r.Register(accepting)

	b, err := r.Configure("session", "mem://sessions")
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if b.manager.Name != "mem" {
		t.Fatalf("bound manager = %q, want mem", b.manager.Name)
	}
}

func TestPopulateAndPersistRoundTrip(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(memManager())
	b, err := r.Configure("session", "mem://sessions")
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	a := arena.New()
	d := dpi.New()
	if err := b.Populate(d, a); err != nil {
		t.Fatalf("Populate() error = %v (want Declined swallowed)", err)
	}
	f, _ := d.Get("session")
	if f == nil {
		t.Fatal("expected empty collection field to be bound")
	}

	d2 := dpi.New()
	seed := []*field.Field{field.Create("hits", types.FieldTypeNum, int64(3))}
	if err := d2.AddList("session", seed); err != nil {
		t.Fatalf("AddList() error = %v", err)
	}
	if err := b.Persist(d2); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	d3 := dpi.New()
	if err := b.Populate(d3, a); err != nil {
		t.Fatalf("Populate() after persist error = %v", err)
	}
	f3, _ := d3.Get("session")
	v, _ := f3.Value()
	list := v.([]*field.Field)
	if len(list) != 1 || list[0].Name() != "hits" {
		t.Fatalf("populated list = %v, want one hits field", list)
	}
}
