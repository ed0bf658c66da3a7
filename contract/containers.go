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

package contract

import (
	"sort"

	"github.com/cairnlabs-io/cairn/schema"
	"github.com/cairnlabs-io/cairn/strict"
)

var (
	fieldMapSizing    = strict.SizingU8
	metaValueSizing   = strict.SizingU16
	globalListSizing  = strict.SizingNonEmpty(0xffff)
	globalValueSizing = strict.SizingU16
)

// Metadata carries one opaque value per declared meta type. Values are
// canonical encodings of the declared type; the codec treats them as bytes
// and the schema validator checks their presence bounds.
type Metadata map[schema.MetaType][]byte

func (m Metadata) encode(w *strict.Writer, path strict.Path) error {
	keys := sortedU16Keys(m)
	if err := w.WriteCount(uint64(len(keys)), fieldMapSizing, path); err != nil {
		return err
	}
	for _, mt := range keys {
		if err := w.WriteUint(uint64(mt), strict.W16, path); err != nil {
			return err
		}
		if err := w.WriteByteString(m[mt], metaValueSizing, path.Index(int(mt))); err != nil {
			return err
		}
	}
	return nil
}

func decodeMetadata(r *strict.Reader, path strict.Path) (Metadata, error) {
	n, err := r.ReadCount(fieldMapSizing, path)
	if err != nil {
		return nil, err
	}
	m := make(Metadata, n)
	var prev *schema.MetaType
	for i := uint64(0); i < n; i++ {
		key, err := r.ReadUint(strict.W16, path)
		if err != nil {
			return nil, err
		}
		mt := schema.MetaType(key)
		if prev != nil {
			switch {
			case mt == *prev:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case mt < *prev:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		value, err := r.ReadByteString(metaValueSizing, path.Index(int(mt)))
		if err != nil {
			return nil, err
		}
		m[mt] = value
		mtCopy := mt
		prev = &mtCopy
	}
	return m, nil
}

// GlobalState carries ordered lists of opaque values per declared global
// state type.
type GlobalState map[schema.GlobalStateType][][]byte

func (g GlobalState) encode(w *strict.Writer, path strict.Path) error {
	keys := sortedU16Keys(g)
	if err := w.WriteCount(uint64(len(keys)), fieldMapSizing, path); err != nil {
		return err
	}
	for _, gt := range keys {
		if err := w.WriteUint(uint64(gt), strict.W16, path); err != nil {
			return err
		}
		gp := path.Index(int(gt))
		values := g[gt]
		if err := w.WriteCount(uint64(len(values)), globalListSizing, gp); err != nil {
			return err
		}
		for i, v := range values {
			if err := w.WriteByteString(v, globalValueSizing, gp.Index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeGlobalState(r *strict.Reader, path strict.Path) (GlobalState, error) {
	n, err := r.ReadCount(fieldMapSizing, path)
	if err != nil {
		return nil, err
	}
	g := make(GlobalState, n)
	var prev *schema.GlobalStateType
	for i := uint64(0); i < n; i++ {
		key, err := r.ReadUint(strict.W16, path)
		if err != nil {
			return nil, err
		}
		gt := schema.GlobalStateType(key)
		if prev != nil {
			switch {
			case gt == *prev:
				return nil, strict.DuplicateKeyError{Path: path, Index: int(i)}
			case gt < *prev:
				return nil, strict.OrderingViolationError{Path: path, Index: int(i)}
			}
		}
		gp := path.Index(int(gt))
		count, err := r.ReadCount(globalListSizing, gp)
		if err != nil {
			return nil, err
		}
		values := make([][]byte, 0, count)
		for j := uint64(0); j < count; j++ {
			v, err := r.ReadByteString(globalValueSizing, gp.Index(int(j)))
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		g[gt] = values
		gtCopy := gt
		prev = &gtCopy
	}
	return g, nil
}

func sortedU16Keys[K ~uint16, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
