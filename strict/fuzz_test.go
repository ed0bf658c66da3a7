// Copyright 2026 Cairn Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build go1.18

package strict

import (
	"bytes"
	"testing"
)

func fuzzDescriptor() *Descriptor {
	return StructDesc(
		Field{Name: "version", Ty: UintDesc(W16)},
		Field{Name: "name", Ty: AsciiDesc(
			CharsetAlpha,
			CharsetAlphaNumLodash,
			NewSizing(1, 32),
		)},
		Field{Name: "tags", Ty: SetDesc(UintDesc(W8), SizingU8)},
		Field{Name: "payload", Ty: BytesDesc(SizingU16).AsOptional()},
	)
}

func FuzzDecode(f *testing.F) {
	// Seed corpus with valid encodings of the fuzz descriptor
	f.Add([]byte{0x00, 0x01, 0x01, 0x61, 0x00, 0x00})
	f.Add([]byte{0x00, 0x02, 0x01, 0x61, 0x02, 0x01, 0x04, 0x00})
	f.Add([]byte{
		0x00, 0x02, 0x03, 0x61, 0x62, 0x63,
		0x01, 0x07,
		0x01, 0x00, 0x02, 0xde, 0xad,
	})
	f.Add([]byte{})
	f.Add([]byte{0xff})

	d := fuzzDescriptor()
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Decode(data, d)
		if err != nil {
			return
		}
		// Everything accepted must re-encode to the same bytes
		reencoded, err := Encode(v, d)
		if err != nil {
			t.Fatalf("failed to re-encode accepted value %#v: %s", v, err)
		}
		if !bytes.Equal(data, reencoded) {
			t.Fatalf(
				"re-encoding mismatch\n  got: %x\n  wanted: %x",
				reencoded,
				data,
			)
		}
	})
}
