package erc

import (
	"fmt"
	"io"
	"sort"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/sexp"
)

// WriteIgnored writes the keys of all ignored messages, including ignored
// keys read earlier whose owners do not exist at the moment:
//
//	(erc
//	 (ignore
//	  (item Component 4e1a... UnplacedOptionalSymbols)
//	 )
//	)
func (r *Registry) WriteIgnored(w io.Writer) error {
	ignore := sexp.NewList("ignore")
	for _, key := range r.IgnoredKeys() {
		ignore.Append(itemNode(key))
	}
	if err := sexp.Write(w, sexp.NewList("erc", ignore)); err != nil {
		return fmt.Errorf("erc: write ignore list: %w", err)
	}
	return nil
}

func itemNode(k Key) *sexp.List {
	return sexp.NewList("item",
		sexp.Symbol(string(k.OwnerKind)), sexp.String(k.OwnerKey), sexp.Symbol(k.MsgKey))
}

func (r *Registry) pendingKeys() []Key {
	keys := make([]Key, 0, len(r.pending))
	for k := range r.pending {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// ReadIgnored replaces the ignore state with the keys listed in rd. Keys of
// messages that are not registered yet are applied when they get registered.
// On error the ignore state is left unchanged.
func (r *Registry) ReadIgnored(rd io.Reader) error {
	root, err := sexp.ParseOne(rd, "erc")
	if err != nil {
		return fault.WrapRuntime(err, "erc: invalid ignore list")
	}
	var keys []Key
	for _, ignore := range sexp.FindAllNodes(root, "ignore") {
		for _, item := range sexp.FindAllNodes(ignore, "item") {
			if item.Len() != 4 {
				return fault.Runtimef("erc: invalid ignore item %s", item)
			}
			var parts [3]string
			for i := range parts {
				if parts[i], err = sexp.GetString(item, i+1); err != nil {
					return fault.WrapRuntime(err, "erc: invalid ignore item %s", item)
				}
			}
			keys = append(keys, Key{OwnerKind: OwnerKind(parts[0]), OwnerKey: parts[1], MsgKey: parts[2]})
		}
	}

	r.SetIgnoredKeys(keys)
	return nil
}
