package cvelist

import (
	"encoding/json"
	"strings"
)

// object is a decoded JSON object. Accessors report false instead of failing
// when a key is missing or holds an unexpected type.
type object map[string]interface{}

func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o object) child(key string) (object, bool) {
	return asObject(o[key])
}

func (o object) list(key string) ([]interface{}, bool) {
	l, ok := o[key].([]interface{})
	return l, ok
}

func (o object) str(key string) (string, bool) {
	s, ok := o[key].(string)
	return s, ok
}

func asObject(v interface{}) (object, bool) {
	m, ok := v.(map[string]interface{})
	return object(m), ok
}

// match is the contribution of a single record: how many affected entries
// named a target product and the record's lower-cased problem type
// descriptions. types is only filled when hits > 0.
type match struct {
	hits  int
	types []string
}

func decodeRecord(b []byte) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// matchRecord walks containers.cna.affected and containers.cna.problemTypes.
// Records missing either path contribute nothing.
func matchRecord(doc interface{}, products map[string]struct{}) match {
	root, ok := asObject(doc)
	if !ok {
		return match{}
	}
	containers, ok := root.child("containers")
	if !ok {
		return match{}
	}
	cna, ok := containers.child("cna")
	if !ok || !cna.has("affected") || !cna.has("problemTypes") {
		return match{}
	}
	affected, ok := cna.list("affected")
	if !ok {
		return match{}
	}

	var m match
	for _, a := range affected {
		entry, ok := asObject(a)
		if !ok {
			continue
		}
		product, ok := entry.str("product")
		if !ok {
			continue
		}
		if _, ok = products[strings.ToLower(product)]; !ok {
			continue
		}
		m.hits++
	}
	if m.hits > 0 {
		m.types = problemTypes(cna)
	}
	return m
}

func problemTypes(cna object) []string {
	pts, ok := cna.list("problemTypes")
	if !ok {
		return nil
	}

	var types []string
	for _, pt := range pts {
		p, ok := asObject(pt)
		if !ok {
			continue
		}
		descs, ok := p.list("descriptions")
		if !ok {
			continue
		}
		for _, d := range descs {
			desc, ok := asObject(d)
			if !ok {
				continue
			}
			if s, ok := desc.str("description"); ok {
				types = append(types, strings.ToLower(s))
			}
		}
	}
	return types
}
