package engine

import (
	"github.com/sentrywaf/engine/pkg/arena"
	"github.com/sentrywaf/engine/pkg/collection"
	"github.com/sentrywaf/engine/pkg/log"
	"github.com/sentrywaf/engine/pkg/types"
)

// ConnInfo is the host-supplied metadata passed to ConnectionOpened,
// the host adapter boundary's connInfo argument.
type ConnInfo struct {
	RemoteAddr string
	LocalAddr  string
}

// Connection is a single client connection, which may host one or
// more transactions. Its arena is the parent of each transaction's
// per-transaction arena.
type Connection struct {
	ID     string
	Info   ConnInfo
	engine *Engine
	arena  *arena.Arena

	bindings []*collection.Binding
}

// ConnectionOpened implements the host boundary's connection_opened:
// it allocates the connection's arena and configures every collection
// binding from the engine's config against the collection registry.
func (e *Engine) ConnectionOpened(info ConnInfo) (*Connection, error) {
	if !e.IsReady() {
		return nil, types.NewError(types.Invalid, "engine not ready: call Ready() first")
	}
	c := &Connection{
		ID:     newTxID(),
		Info:   info,
		engine: e,
		arena:  arena.New(),
	}
	for _, cb := range e.cfg.Collections {
		b, err := e.Collections.Configure(cb.Name, cb.URI)
		if err != nil {
			c.arena.Release()
			return nil, err
		}
		c.bindings = append(c.bindings, b)
	}
	log.WithComponent("engine").Debug().Str("conn_id", c.ID).Msg("connection opened")
	return c, nil
}

// Close releases the connection's arena, which also releases every
// transaction arena still alive under it. Bound collection managers
// are unregistered first.
func (c *Connection) Close() error {
	for _, b := range c.bindings {
		if err := b.Unregister(); err != nil {
			log.WithComponent("engine").Warn().Err(err).Str("binding", b.Name()).Msg("collection unregister failed")
		}
	}
	c.arena.Release()
	return nil
}
