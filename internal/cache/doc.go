// Package cache provides byte-oriented block caches for immutable blobs.
//
// Remote blob stores serve dataset and checkpoint reads over the network.
// A block cache in front of them turns the many small sequential reads of a
// vector decode loop into a handful of backend range requests.
//
// Two implementations are provided:
//
//   - LRUBlockCache: single-lock LRU, fine for one reader
//   - ShardedLRUBlockCache: 64-way sharded LRU for concurrent readers
//
// Both account their memory against an optional resource.Controller.
package cache
