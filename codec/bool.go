package codec

import (
	"strconv"

	"github.com/wippyai/bitfield/errors"
)

// BoolCodec stores a bool in a single bit.
type BoolCodec struct{}

// Bool is the codec for one-bit boolean fields.
var Bool BoolCodec

func (BoolCodec) Kind() Kind     { return KindBool }
func (BoolCodec) BitLen() int    { return 1 }
func (BoolCodec) String() string { return "bool" }

func (BoolCodec) Encode(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (BoolCodec) TryDecode(raw uint64) (bool, bool) {
	return raw&1 != 0, true
}

func (BoolCodec) Decode(raw uint64) bool {
	return raw&1 != 0
}

func (BoolCodec) Zeroes() bool { return false }
func (BoolCodec) Ones() bool   { return true }
func (BoolCodec) Min() bool    { return false }
func (BoolCodec) Max() bool    { return true }

func (c BoolCodec) encodeAny(v any) (uint64, error) {
	b, ok := v.(bool)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), "bool")
	}
	return c.Encode(b), nil
}

func (c BoolCodec) decodeAny(raw uint64) (any, error) {
	return c.Decode(raw), nil
}

func (BoolCodec) validate(uint64) error {
	return nil
}

func (BoolCodec) sentinelBits(s Sentinel) uint64 {
	if s == SentinelOnes || s == SentinelMax {
		return 1
	}
	return 0
}

func (BoolCodec) formatBits(raw uint64) string {
	return strconv.FormatBool(raw&1 != 0)
}

func (BoolCodec) parseBits(s string) (uint64, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return 0, errors.ParseFailed("bool", err)
	}
	if b {
		return 1, nil
	}
	return 0, nil
}
