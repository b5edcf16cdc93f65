// Package borshwire writes Go values in borsh layout, surfacing every scalar
// write as a discrete chunk, and derives borsh-compatible declarations and
// definition maps from Go types via reflection.
//
// Attribution over a derived schema pairs chunks with tree leaves in arrival
// order. Shapes whose encodings are structurally static (scalars, strings,
// fixed byte arrays and structs of those) pair one-to-one; variable-length
// shapes emit length prefixes and repeated elements the static tree does not
// model, so their pairing is positional only.
package borshwire

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"sort"
	"sync"
	"unsafe"
)

var (
	ErrUnsupported = errors.New("unsupported type")
	ErrNaN         = errors.New("nan is not encodable")
)

// Sink receives each chunk as the encoder writes it, in emission order. The
// slice may be reused between calls; a sink that keeps chunk bytes must copy
// them.
type Sink func(chunk []byte)

type Options struct {
	UnsafeStrings bool // hand string bytes to the sink without copying
}

// Encoder writes values in borsh layout, handing every write to a Sink as
// one chunk: scalars whole, strings and byte runs as a length prefix then a
// payload, sequences as a length prefix followed by their elements' chunks.
// The zero Encoder is ready to use and safe for concurrent Encode calls.
type Encoder struct {
	Opts Options
	mu   sync.RWMutex
	plan map[reflect.Type][]int
}

// Encode walks v and emits its borsh encoding through sink. A pointer root
// is dereferenced; pointers below the root encode as optionals.
func (e *Encoder) Encode(v any, sink Sink) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ErrUnsupported
	}
	var scratch [8]byte
	return e.encodeValue(rv, sink, scratch[:])
}

// Marshal returns v's borsh encoding as one contiguous buffer.
func Marshal(v any) ([]byte, error) {
	var out []byte
	err := marshaler.Encode(v, func(chunk []byte) {
		out = append(out, chunk...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var marshaler Encoder

func (e *Encoder) encodeValue(v reflect.Value, sink Sink, scratch []byte) error {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			scratch[0] = 1
		} else {
			scratch[0] = 0
		}
		sink(scratch[:1])
	case reflect.Int8:
		scratch[0] = byte(v.Int())
		sink(scratch[:1])
	case reflect.Uint8:
		scratch[0] = byte(v.Uint())
		sink(scratch[:1])
	case reflect.Int16:
		binary.LittleEndian.PutUint16(scratch, uint16(v.Int()))
		sink(scratch[:2])
	case reflect.Uint16:
		binary.LittleEndian.PutUint16(scratch, uint16(v.Uint()))
		sink(scratch[:2])
	case reflect.Int32:
		binary.LittleEndian.PutUint32(scratch, uint32(v.Int()))
		sink(scratch[:4])
	case reflect.Uint32:
		binary.LittleEndian.PutUint32(scratch, uint32(v.Uint()))
		sink(scratch[:4])
	case reflect.Int64, reflect.Int:
		binary.LittleEndian.PutUint64(scratch, uint64(v.Int()))
		sink(scratch[:8])
	case reflect.Uint64, reflect.Uint:
		binary.LittleEndian.PutUint64(scratch, v.Uint())
		sink(scratch[:8])
	case reflect.Float32:
		f := v.Float()
		if math.IsNaN(f) {
			return ErrNaN
		}
		binary.LittleEndian.PutUint32(scratch, math.Float32bits(float32(f)))
		sink(scratch[:4])
	case reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) {
			return ErrNaN
		}
		binary.LittleEndian.PutUint64(scratch, math.Float64bits(f))
		sink(scratch[:8])
	case reflect.String:
		s := v.String()
		binary.LittleEndian.PutUint32(scratch, uint32(len(s)))
		sink(scratch[:4])
		if e.Opts.UnsafeStrings {
			sink(unsafe.Slice(unsafe.StringData(s), len(s)))
		} else {
			sink([]byte(s))
		}
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := v.Bytes()
			binary.LittleEndian.PutUint32(scratch, uint32(len(b)))
			sink(scratch[:4])
			sink(b)
		} else {
			l := v.Len()
			binary.LittleEndian.PutUint32(scratch, uint32(l))
			sink(scratch[:4])
			for i := 0; i < l; i++ {
				if err := e.encodeValue(v.Index(i), sink, scratch); err != nil {
					return err
				}
			}
		}
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// fixed byte runs go out whole and carry no length prefix
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			sink(b)
		} else {
			for i := 0; i < v.Len(); i++ {
				if err := e.encodeValue(v.Index(i), sink, scratch); err != nil {
					return err
				}
			}
		}
	case reflect.Struct:
		for _, idx := range e.getPlan(v.Type()) {
			if err := e.encodeValue(v.Field(idx), sink, scratch); err != nil {
				return err
			}
		}
	case reflect.Map:
		return e.encodeMap(v, sink, scratch)
	case reflect.Pointer:
		if v.IsNil() {
			scratch[0] = 0
			sink(scratch[:1])
			return nil
		}
		scratch[0] = 1
		sink(scratch[:1])
		return e.encodeValue(v.Elem(), sink, scratch)
	default:
		return ErrUnsupported
	}
	return nil
}

// encodeMap writes a length prefix, then key/value pairs with keys in
// canonical order. Only string and integer keys have one.
func (e *Encoder) encodeMap(v reflect.Value, sink Sink, scratch []byte) error {
	keys := v.MapKeys()
	switch v.Type().Key().Kind() {
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	default:
		return ErrUnsupported
	}
	binary.LittleEndian.PutUint32(scratch, uint32(len(keys)))
	sink(scratch[:4])
	for _, k := range keys {
		if err := e.encodeValue(k, sink, scratch); err != nil {
			return err
		}
		if err := e.encodeValue(v.MapIndex(k), sink, scratch); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) getPlan(t reflect.Type) []int {
	e.mu.RLock()
	if p, ok := e.plan[t]; ok {
		e.mu.RUnlock()
		return p
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.plan[t]; ok {
		return p
	}
	if e.plan == nil {
		e.plan = make(map[reflect.Type][]int)
	}
	fields := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			continue // skip unexported
		}
		fields = append(fields, i)
	}
	e.plan[t] = fields
	return fields
}
