// Package nbt implements a small named-tag binary codec for the handful of
// value shapes the chunk and level formats need: the DataVersion/status
// metadata tags, compound block-entity/entity blobs and scheduled-tick
// lists. It is not a general NBT implementation, just the named-compound
// shape level.dat and region payloads are built from.
package nbt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

type tagID byte

const (
	tagEnd tagID = iota
	tagByte
	tagInt16
	tagInt32
	tagInt64
	tagFloat64
	tagString
	tagByteArray
	tagInt32Array
	tagInt64Array
	tagList
	tagCompound
)

// Encode writes m as a compound tag.
func Encode(w io.Writer, m map[string]any) error {
	e := &encoder{w: w}
	return e.compound(m)
}

// Decode reads a compound tag previously written by Encode.
func Decode(r io.Reader) (map[string]any, error) {
	d := &decoder{r: r}
	return d.compound()
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) u8(v byte)    { e.write([]byte{v}) }
func (e *encoder) u16(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); e.write(b[:]) }
func (e *encoder) i32(v int32)  { var b [4]byte; binary.BigEndian.PutUint32(b[:], uint32(v)); e.write(b[:]) }
func (e *encoder) i64(v int64)  { var b [8]byte; binary.BigEndian.PutUint64(b[:], uint64(v)); e.write(b[:]) }
func (e *encoder) f64(v float64) { e.i64(int64(math.Float64bits(v))) }

func (e *encoder) str(s string) {
	e.u16(uint16(len(s)))
	e.write([]byte(s))
}

func (e *encoder) value(v any) error {
	switch t := v.(type) {
	case int8:
		e.u8(tagByteVal)
		e.u8(byte(t))
	case bool:
		e.u8(tagByteVal)
		if t {
			e.u8(1)
		} else {
			e.u8(0)
		}
	case int16:
		e.u8(tagInt16Val)
		e.u16(uint16(t))
	case int:
		e.u8(tagInt32Val)
		e.i32(int32(t))
	case int32:
		e.u8(tagInt32Val)
		e.i32(t)
	case int64:
		e.u8(tagInt64Val)
		e.i64(t)
	case uint32:
		e.u8(tagInt32Val)
		e.i32(int32(t))
	case float64:
		e.u8(tagFloat64Val)
		e.f64(t)
	case string:
		e.u8(tagStringVal)
		e.str(t)
	case []byte:
		e.u8(tagByteArrayVal)
		e.i32(int32(len(t)))
		e.write(t)
	case []int32:
		e.u8(tagInt32ArrayVal)
		e.i32(int32(len(t)))
		for _, x := range t {
			e.i32(x)
		}
	case []int64:
		e.u8(tagInt64ArrayVal)
		e.i32(int32(len(t)))
		for _, x := range t {
			e.i64(x)
		}
	case []any:
		e.u8(tagListVal)
		e.i32(int32(len(t)))
		for _, x := range t {
			if err := e.value(x); err != nil {
				return err
			}
		}
	case []map[string]any:
		e.u8(tagListVal)
		e.i32(int32(len(t)))
		for _, x := range t {
			e.u8(tagCompoundVal)
			if err := e.compoundBody(x); err != nil {
				return err
			}
		}
	case map[string]any:
		e.u8(tagCompoundVal)
		if err := e.compoundBody(t); err != nil {
			return err
		}
	default:
		return fmt.Errorf("nbt: unsupported value type %T", v)
	}
	return e.err
}

// tagXVal constants avoid a naming collision with the tagID constants above
// (byte identical value, kept distinct for readability at call sites).
const (
	tagByteVal      = byte(tagByte)
	tagInt16Val     = byte(tagInt16)
	tagInt32Val     = byte(tagInt32)
	tagInt64Val     = byte(tagInt64)
	tagFloat64Val   = byte(tagFloat64)
	tagStringVal    = byte(tagString)
	tagByteArrayVal = byte(tagByteArray)
	tagInt32ArrayVal = byte(tagInt32Array)
	tagInt64ArrayVal = byte(tagInt64Array)
	tagListVal      = byte(tagList)
	tagCompoundVal  = byte(tagCompound)
)

func (e *encoder) compound(m map[string]any) error {
	if err := e.compoundBody(m); err != nil {
		return err
	}
	return e.err
}

func (e *encoder) compoundBody(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		// value writes the tag id followed by the payload; the named tag
		// puts the name between the two, as compoundBody on the decoder
		// side reads them.
		var payload bytes.Buffer
		if err := (&encoder{w: &payload}).value(m[k]); err != nil {
			return err
		}
		b := payload.Bytes()
		e.u8(b[0])
		e.str(k)
		e.write(b[1:])
	}
	e.u8(byte(tagEnd))
	return e.err
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) read(p []byte) {
	if d.err != nil {
		return
	}
	_, d.err = io.ReadFull(d.r, p)
}

func (d *decoder) u8() byte {
	var b [1]byte
	d.read(b[:])
	return b[0]
}
func (d *decoder) u16() uint16 {
	var b [2]byte
	d.read(b[:])
	return binary.BigEndian.Uint16(b[:])
}
func (d *decoder) i32() int32 {
	var b [4]byte
	d.read(b[:])
	return int32(binary.BigEndian.Uint32(b[:]))
}
func (d *decoder) i64() int64 {
	var b [8]byte
	d.read(b[:])
	return int64(binary.BigEndian.Uint64(b[:]))
}
func (d *decoder) f64() float64 { return math.Float64frombits(uint64(d.i64())) }

func (d *decoder) str() string {
	n := d.u16()
	b := make([]byte, n)
	d.read(b)
	return string(b)
}

func (d *decoder) value(id byte) (any, error) {
	switch tagID(id) {
	case tagByte:
		return int8(d.u8()), d.err
	case tagInt16:
		return int16(d.u16()), d.err
	case tagInt32:
		return d.i32(), d.err
	case tagInt64:
		return d.i64(), d.err
	case tagFloat64:
		return d.f64(), d.err
	case tagString:
		return d.str(), d.err
	case tagByteArray:
		n := d.i32()
		b := make([]byte, n)
		d.read(b)
		return b, d.err
	case tagInt32Array:
		n := d.i32()
		out := make([]int32, n)
		for i := range out {
			out[i] = d.i32()
		}
		return out, d.err
	case tagInt64Array:
		n := d.i32()
		out := make([]int64, n)
		for i := range out {
			out[i] = d.i64()
		}
		return out, d.err
	case tagList:
		n := d.i32()
		out := make([]any, n)
		for i := range out {
			id := d.u8()
			v, err := d.value(id)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, d.err
	case tagCompound:
		return d.compoundBody()
	default:
		return nil, fmt.Errorf("nbt: unknown tag id %d", id)
	}
}

func (d *decoder) compound() (map[string]any, error) {
	return d.compoundBody()
}

func (d *decoder) compoundBody() (map[string]any, error) {
	m := make(map[string]any)
	for {
		id := d.u8()
		if d.err != nil {
			return nil, d.err
		}
		if tagID(id) == tagEnd {
			return m, nil
		}
		key := d.str()
		v, err := d.value(id)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

// Marshal is a convenience wrapper around Encode returning the encoded
// bytes directly.
func Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is a convenience wrapper around Decode reading from a byte
// slice directly.
func Unmarshal(b []byte) (map[string]any, error) {
	return Decode(bytes.NewReader(b))
}
