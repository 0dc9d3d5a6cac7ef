// Package storage persists graph snapshots in a key-value store.
//
// Every graph is stored as a single record under a namespaced key and is
// overwritten wholesale on save. There is no partial or incremental
// persistence.
//
// # Backends
//
//   - [MemoryStore]: in-process map, for tests and throwaway sessions
//   - [FileStore]: one file per key under a directory, written atomically;
//     the default for the CLI
//   - [RedisStore]: Redis via go-redis, for servers sharing state
//   - [MongoStore]: a MongoDB collection, one document per key
//
// All backends implement [Store] and are safe for concurrent use.
//
// # Keys
//
// A [Keyer] maps graph names to store keys. [DefaultKeyer] produces
// "nodegraph:graph:<name>"; [NewScopedKeyer] prepends a tenant prefix.
//
// # Graphs
//
// [Graphs] is the layer editors talk to. It validates names, maps them to
// keys, translates backend failures into STORAGE_* coded errors and reports
// to the registered observability hooks:
//
//	graphs := storage.NewGraphs(store, storage.NewDefaultKeyer())
//	if err := graphs.Save(ctx, "scene", data); err != nil {
//	    // errors.Is(err, errors.ErrCodeStorage)
//	}
//
// # Retries
//
// Remote backends wrap transient failures with [Retryable];
// [RetryWithBackoff] retries those with exponential backoff.
package storage
