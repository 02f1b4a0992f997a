// Package wire implements the binary schema spoken on the HTTP and
// websocket transports: protocol buffer messages encoded and decoded
// directly with protowire, with fixed field numbers below. Unknown
// fields are skipped on decode, so newer peers can add fields without
// breaking older ones.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ContentType is the media type for request and response bodies.
const ContentType = "application/x-protobuf"

// decoder walks a protobuf wire-format buffer field by field.
type decoder struct {
	buf []byte
}

// next returns the next field number and type. ok is false at end of input.
func (d *decoder) next() (num protowire.Number, typ protowire.Type, ok bool, err error) {
	if len(d.buf) == 0 {
		return 0, 0, false, nil
	}
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		return 0, 0, false, fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return num, typ, true, nil
}

func (d *decoder) varint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		return 0, fmt.Errorf("wire: invalid varint: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *decoder) int64() (int64, error) {
	v, err := d.varint()
	return int64(v), err
}

func (d *decoder) bytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		return nil, fmt.Errorf("wire: invalid length-delimited field: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *decoder) string() (string, error) {
	b, err := d.bytes()
	return string(b), err
}

// skip discards a field of the given type.
func (d *decoder) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.buf)
	if n < 0 {
		return fmt.Errorf("wire: invalid field %d: %w", num, protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return nil
}

// appendInt64 appends a varint field, omitting the proto3 zero default.
func appendInt64(buf []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, uint64(v))
}

// appendString appends a string field, omitting the empty default.
func appendString(buf []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendString(buf, s)
}

// appendStringPresent appends a string field even when empty, for
// optional fields whose presence is meaningful.
func appendStringPresent(buf []byte, num protowire.Number, s string) []byte {
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendString(buf, s)
}

// appendMessage appends an embedded message field.
func appendMessage(buf []byte, num protowire.Number, msg []byte) []byte {
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendBytes(buf, msg)
}
