package engine

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sentrywaf/engine/pkg/collection"
	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/kvstore"
	"github.com/sentrywaf/engine/pkg/log"
	"github.com/sentrywaf/engine/pkg/metrics"
	"github.com/sentrywaf/engine/pkg/types"
)

// kvCollectionScheme is the URI scheme a collection binding uses to
// persist its fields in the engine's KV store, e.g. "kv://session".
const kvCollectionScheme = "kv"

// storedField is the on-the-wire shape a collection's fields are
// marshaled to for KV persistence. Only NUM, NULSTR and BYTESTR fields
// round-trip; fields of any other type are written but skipped with a
// warning when read back. A dynamic field is stored as the value its
// getter returns at persist time.
type storedField struct {
	Name  string          `json:"name"`
	Type  types.FieldType `json:"type"`
	Value json.RawMessage `json:"value"`
}

type kvInstance struct {
	store *kvstore.Store
	key   string
}

// registerKVCollectionManager adds a collection manager backed by
// store to reg under the "kv" scheme.
func registerKVCollectionManager(reg *collection.Registry, store *kvstore.Store) error {
	return reg.Register(collection.Manager{
		Name:   "kv",
		Scheme: kvCollectionScheme,
		RegisterFn: func(uri string) (interface{}, error) {
			key := strings.TrimPrefix(uri, kvCollectionScheme+"://")
			if key == "" {
				return nil, types.NewError(types.Invalid, "kv collection manager: empty key in uri %q", uri)
			}
			return &kvInstance{store: store, key: key}, nil
		},
		PopulateFn: func(inst interface{}, d *dpi.DPI) ([]*field.Field, error) {
			ki := inst.(*kvInstance)
			timer := metrics.NewTimer()
			val, err := store.Get(ki.key)
			timer.ObserveDurationVec(metrics.KVOperationDuration, "default", "get")
			if types.KindOf(err) == types.NotFound {
				metrics.KVOperationsTotal.WithLabelValues("default", "get", "not_found").Inc()
				metrics.UpdateComponent("kvstore", true, "")
				return nil, nil
			}
			if err != nil {
				metrics.KVOperationsTotal.WithLabelValues("default", "get", "error").Inc()
				metrics.UpdateComponent("kvstore", false, err.Error())
				return nil, err
			}
			metrics.KVOperationsTotal.WithLabelValues("default", "get", "ok").Inc()
			metrics.UpdateComponent("kvstore", true, "")

			var stored []storedField
			if err := json.Unmarshal(val.Data, &stored); err != nil {
				return nil, types.NewError(types.Invalid, "kv collection %q: corrupt stored value: %v", ki.key, err)
			}
			fields := make([]*field.Field, 0, len(stored))
			for _, sf := range stored {
				f, err := unmarshalStoredField(sf)
				if err != nil {
					log.WithComponent("kvcollection").Warn().Err(err).Str("field", sf.Name).Msg("skipping undecodable field")
					continue
				}
				fields = append(fields, f)
			}
			return fields, nil
		},
		PersistFn: func(inst interface{}, d *dpi.DPI, fields []*field.Field) error {
			ki := inst.(*kvInstance)
			stored := make([]storedField, 0, len(fields))
			for _, f := range fields {
				sf, ok := marshalStoredField(f)
				if !ok {
					continue
				}
				stored = append(stored, sf)
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			timer := metrics.NewTimer()
			err = store.Set(ki.key, &kvstore.Value{
				Type:    "collection",
				Data:    data,
				Created: time.Now(),
			})
			timer.ObserveDurationVec(metrics.KVOperationDuration, "default", "set")
			if err != nil {
				metrics.KVOperationsTotal.WithLabelValues("default", "set", "error").Inc()
				metrics.UpdateComponent("kvstore", false, err.Error())
				return err
			}
			metrics.KVOperationsTotal.WithLabelValues("default", "set", "ok").Inc()
			metrics.UpdateComponent("kvstore", true, "")
			return nil
		},
	})
}

func marshalStoredField(f *field.Field) (storedField, bool) {
	v, err := f.Value()
	if err != nil {
		return storedField{}, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return storedField{}, false
	}
	return storedField{Name: f.Name(), Type: f.Type(), Value: raw}, true
}

func unmarshalStoredField(sf storedField) (*field.Field, error) {
	switch sf.Type {
	case types.FieldTypeNum:
		var n int64
		if err := json.Unmarshal(sf.Value, &n); err != nil {
			return nil, err
		}
		return field.Create(sf.Name, types.FieldTypeNum, n), nil
	case types.FieldTypeNulStr:
		var s string
		if err := json.Unmarshal(sf.Value, &s); err != nil {
			return nil, err
		}
		return field.Create(sf.Name, sf.Type, s), nil
	case types.FieldTypeByteStr:
		var b []byte
		if err := json.Unmarshal(sf.Value, &b); err != nil {
			return nil, err
		}
		return field.Create(sf.Name, sf.Type, b), nil
	default:
		return nil, types.NewError(types.Invalid, "unsupported stored field type %v", sf.Type)
	}
}
