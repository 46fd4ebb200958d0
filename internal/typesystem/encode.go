package typesystem

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// wireType is the CBOR form of a Type stored in the package catalog.
type wireType struct {
	Tags   []Tag  `cbor:"1,keyasint"`
	Opaque string `cbor:"2,keyasint,omitempty"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("typesystem: cbor enc mode: %v", err))
	}
}

// Marshal encodes t with canonical CBOR.
func Marshal(t Type) ([]byte, error) {
	w := wireType{Tags: Tags(t)}
	if o, ok := Terminal(t).(TOpaque); ok {
		w.Opaque = o.Name
	}
	return encMode.Marshal(w)
}

// Unmarshal decodes a Type written by Marshal.
func Unmarshal(data []byte) (Type, error) {
	var w wireType
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode type: %w", err)
	}
	return FromTags(w.Tags, w.Opaque)
}
