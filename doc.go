// Package ssdb is a client for the SSDB key-value server.
//
// A Client owns a pool of TCP connections and exposes one method per server
// command (strings, hashmaps, sorted sets, queues). Each connection runs one
// exchange at a time; concurrent callers each get their own pooled
// connection.
//
//	client, err := ssdb.NewClient(ssdb.Config{Host: "127.0.0.1", Port: 8888, MaxSize: 4})
//	if err != nil { ... }
//	defer client.Close()
//
//	err = client.Set(ctx, "foo", "bar")
//	value, found, err := client.Get(ctx, "foo")
//
// The low-level wire codec lives in the proto subpackage and can be used
// directly to build clients with different pooling or dispatch policies.
package ssdb
