package persistence

import (
	"errors"
	"maps"
	"slices"
)

// ErrClosed is returned when committing to a closed store.
var ErrClosed = errors.New("store closed")

// Store is a durable key-value store with typed reads.
type Store interface {
	// Int64 returns the integer stored under key, or def.
	Int64(key string, def int64) int64

	// String returns the string stored under key, or def.
	String(key string, def string) string

	// Bool returns the boolean stored under key, or def.
	Bool(key string, def bool) bool

	// IDs returns the id set stored under key, or nil.
	IDs(key string) []int

	// Edit starts a write batch.
	Edit() Editor

	// Close releases the store.
	Close() error
}

// Editor accumulates writes until Commit.
type Editor interface {
	PutInt64(key string, v int64) Editor
	PutString(key string, v string) Editor
	PutBool(key string, v bool) Editor
	PutIDs(key string, ids []int) Editor
	Remove(key string) Editor

	// Commit applies the batch and forces it to durable storage.
	Commit() error
}

// Kind identifies the type of a stored value.
type Kind uint8

const (
	KindInt64 Kind = iota + 1
	KindString
	KindBool
	KindIDs
)

// value is a single stored record.
type value struct {
	Kind Kind   `cbor:"1,keyasint"`
	Int  int64  `cbor:"2,keyasint,omitempty"`
	Str  string `cbor:"3,keyasint,omitempty"`
	IDs  []int  `cbor:"4,keyasint,omitempty"`
}

// op is one pending write. A nil val removes the key.
type op struct {
	key string
	val *value
}

// batch is the Editor shared by all stores.
type batch struct {
	ops    []op
	commit func([]op) error
}

func newBatch(commit func([]op) error) *batch {
	return &batch{commit: commit}
}

func (b *batch) put(key string, v value) Editor {
	b.ops = append(b.ops, op{key: key, val: &v})
	return b
}

func (b *batch) PutInt64(key string, v int64) Editor {
	return b.put(key, value{Kind: KindInt64, Int: v})
}

func (b *batch) PutString(key string, v string) Editor {
	return b.put(key, value{Kind: KindString, Str: v})
}

func (b *batch) PutBool(key string, v bool) Editor {
	var i int64
	if v {
		i = 1
	}
	return b.put(key, value{Kind: KindBool, Int: i})
}

func (b *batch) PutIDs(key string, ids []int) Editor {
	return b.put(key, value{Kind: KindIDs, IDs: slices.Clone(ids)})
}

func (b *batch) Remove(key string) Editor {
	b.ops = append(b.ops, op{key: key})
	return b
}

func (b *batch) Commit() error {
	if len(b.ops) == 0 {
		return nil
	}
	ops := b.ops
	b.ops = nil
	return b.commit(ops)
}

// apply returns a copy of values with ops applied.
func apply(values map[string]value, ops []op) map[string]value {
	next := maps.Clone(values)
	if next == nil {
		next = make(map[string]value)
	}
	for _, o := range ops {
		if o.val == nil {
			delete(next, o.key)
			continue
		}
		next[o.key] = *o.val
	}
	return next
}

// Typed lookups over a value, falling back to def on a missing record or a
// kind mismatch.

func asInt64(v value, ok bool, def int64) int64 {
	if !ok || v.Kind != KindInt64 {
		return def
	}
	return v.Int
}

func asString(v value, ok bool, def string) string {
	if !ok || v.Kind != KindString {
		return def
	}
	return v.Str
}

func asBool(v value, ok bool, def bool) bool {
	if !ok || v.Kind != KindBool {
		return def
	}
	return v.Int != 0
}

func asIDs(v value, ok bool) []int {
	if !ok || v.Kind != KindIDs {
		return nil
	}
	return slices.Clone(v.IDs)
}
