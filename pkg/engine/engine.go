// Package engine wires the action registry, collection-manager registry,
// KV store, event broker, and rule harness into the single object a
// host adapter drives through the connection/transaction lifecycle.
package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sentrywaf/engine/pkg/action"
	"github.com/sentrywaf/engine/pkg/collection"
	"github.com/sentrywaf/engine/pkg/event"
	"github.com/sentrywaf/engine/pkg/kvstore"
	"github.com/sentrywaf/engine/pkg/log"
	"github.com/sentrywaf/engine/pkg/metrics"
	"github.com/sentrywaf/engine/pkg/rule"
	"github.com/sentrywaf/engine/pkg/types"
)

// Engine is the top-level object returned by New. It owns the
// action and collection-manager registries and the default KV store.
// Ready freezes the action registry, so registering an action after it
// fails with Invalid, and marks the engine usable for connections. The
// collection-manager registry is not frozen.
type Engine struct {
	mu sync.RWMutex

	cfg *Config

	Actions     *action.Registry
	Collections *collection.Registry
	KV          *kvstore.Store
	Broker      *event.Broker
	Harness     *rule.Harness

	ready bool
}

// New builds an Engine from cfg: opens the configured KV backend,
// registers the five core actions, and registers the "kv" collection
// manager scheme against that store. The caller may still register
// additional actions, collection managers, or matchers before calling
// Ready.
func New(cfg *Config) (*Engine, error) {
	backend, err := newKVBackend(cfg.KV)
	if err != nil {
		return nil, err
	}
	if len(cfg.KV.EncryptionKey) > 0 {
		eb, err := kvstore.NewEncryptedBackend(backend, cfg.KV.EncryptionKey)
		if err != nil {
			return nil, err
		}
		backend = eb
	}
	store := kvstore.New(backend, kvstore.DefaultMergePolicy)

	e := &Engine{
		cfg:         cfg,
		Actions:     action.NewRegistry(),
		Collections: collection.NewRegistry(),
		KV:          store,
		Broker:      event.NewBroker(),
	}
	e.Harness = rule.NewHarness(func(ruleID string, err error) {
		log.WithRuleID(ruleID).Warn().Err(err).Msg("action execution error")
	})

	if err := action.RegisterCoreActions(e.Actions); err != nil {
		return nil, err
	}
	if err := registerKVCollectionManager(e.Collections, e.KV); err != nil {
		return nil, err
	}
	metrics.RegisterComponent("action_registry", true, "")
	metrics.RegisterComponent("collection_registry", true, "")
	return e, nil
}

func newKVBackend(cfg KVConfig) (kvstore.Backend, error) {
	switch cfg.Backend {
	case "", "filesystem":
		return kvstore.NewFilesystemBackend(cfg.DataDir), nil
	case "bolt":
		return kvstore.NewBoltBackend(cfg.DataDir), nil
	case "redis":
		return kvstore.NewRedisBackend(cfg.Addr), nil
	default:
		return nil, types.NewError(types.Invalid, "unknown kv backend %q", cfg.Backend)
	}
}

// Ready connects the KV store, starts the event broker, freezes the
// action registry, and marks the engine usable for connections. It is
// idempotent.
func (e *Engine) Ready() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}
	if err := e.KV.Connect(); err != nil {
		metrics.RegisterComponent("kvstore", false, err.Error())
		return err
	}
	metrics.RegisterComponent("kvstore", true, "")
	e.Broker.Start()
	e.Actions.Freeze()
	e.ready = true
	return nil
}

// IsReady reports whether Ready has completed.
func (e *Engine) IsReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

// Close disconnects the KV store and stops the event broker. The
// engine must not be used afterward.
func (e *Engine) Close() error {
	e.Broker.Stop()
	return e.KV.Disconnect()
}

// newTxID generates a transaction or connection identifier.
func newTxID() string {
	return uuid.NewString()
}

// Destroy mirrors the host boundary's engine_destroy: it calls Close
// and discards its error. Kept distinct because a host adapter's
// engine_destroy call site does not always have an error to propagate.
func (e *Engine) Destroy() {
	_ = e.Close()
}
