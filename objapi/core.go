package objapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/lychee-technology/notionmap"
)

// Tagged is implemented by every variant of a closed union.
type Tagged interface {
	Type() string
}

// defaulter is implemented by variants whose absent fields decode to a non-nil default.
type defaulter interface {
	applyDefaults()
}

// Registry maps the discriminator of a union to the constructor of its variant.
// Constructors must return pointers so the decoder can fill them in place.
type Registry[T Tagged] struct {
	kind     string
	field    string
	variants map[string]func() T
}

// NewRegistry creates a registry for the union named kind whose discriminator
// lives in field (usually "type").
func NewRegistry[T Tagged](kind, field string) *Registry[T] {
	return &Registry[T]{
		kind:     kind,
		field:    field,
		variants: make(map[string]func() T),
	}
}

// Register adds variants. The tag is read from a fresh instance, so it is fixed
// by the variant type.
func (r *Registry[T]) Register(ctors ...func() T) {
	for _, ctor := range ctors {
		tag := ctor().Type()
		if _, exists := r.variants[tag]; exists {
			panic(fmt.Sprintf("objapi: duplicate %s variant '%s'", r.kind, tag))
		}
		r.variants[tag] = ctor
	}
}

// Tags returns the registered discriminators in sorted order.
func (r *Registry[T]) Tags() []string {
	tags := make([]string, 0, len(r.variants))
	for tag := range r.variants {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Has reports whether tag is a registered variant.
func (r *Registry[T]) Has(tag string) bool {
	_, ok := r.variants[tag]
	return ok
}

// New returns an empty variant for tag with defaults applied.
func (r *Registry[T]) New(tag string) (T, error) {
	var zero T
	ctor, ok := r.variants[tag]
	if !ok {
		return zero, notionmap.NewUnknownVariantError(r.kind, tag)
	}
	v := ctor()
	if d, ok := any(v).(defaulter); ok {
		d.applyDefaults()
	}
	return v, nil
}

// Decode reads the discriminator from data and decodes the matching variant.
func (r *Registry[T]) Decode(data []byte) (T, error) {
	var zero T
	tag, err := probeTag(data, r.kind, r.field)
	if err != nil {
		return zero, err
	}

	v, err := r.New(tag)
	if err != nil {
		return zero, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		var typed *notionmap.Error
		if errors.As(err, &typed) {
			return zero, err
		}
		return zero, notionmap.NewDecodeError(fmt.Sprintf("decode %s '%s'", r.kind, tag), err)
	}
	if d, ok := any(v).(defaulter); ok {
		d.applyDefaults()
	}
	return v, nil
}

// DecodeOptional decodes data, returning the zero value for absent or null payloads.
func (r *Registry[T]) DecodeOptional(data []byte) (T, error) {
	var zero T
	if isNull(data) {
		return zero, nil
	}
	return r.Decode(data)
}

// DecodeList decodes a JSON array of variants. A null or absent array yields an empty slice.
func (r *Registry[T]) DecodeList(data []byte) ([]T, error) {
	if isNull(data) {
		return []T{}, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, notionmap.NewDecodeError(fmt.Sprintf("decode %s list", r.kind), err)
	}
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		v, err := r.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s #%d: %w", r.kind, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func probeTag(data []byte, kind, field string) (string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", notionmap.NewDecodeError(fmt.Sprintf("%s payload is not a JSON object", kind), err)
	}
	raw, ok := probe[field]
	if !ok || isNull(raw) {
		return "", notionmap.NewMissingTagError(kind, field)
	}
	var tag string
	if err := json.Unmarshal(raw, &tag); err != nil {
		return "", notionmap.NewDecodeError(fmt.Sprintf("%s discriminator '%s' is not a string", kind, field), err)
	}
	return tag, nil
}

// marshalTagged encodes body (which must encode to a JSON object) with the
// discriminator prepended.
func marshalTagged(field, tag string, body any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	encoded = bytes.TrimSpace(encoded)
	if len(encoded) < 2 || encoded[0] != '{' {
		return nil, fmt.Errorf("objapi: variant '%s' does not encode to an object", tag)
	}
	tagJSON, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(encoded) + len(field) + len(tagJSON) + 4)
	buf.WriteString(`{"`)
	buf.WriteString(field)
	buf.WriteString(`":`)
	buf.Write(tagJSON)
	if len(encoded) > 2 {
		buf.WriteByte(',')
		buf.Write(encoded[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// EmptyConfig is the payload of variants that carry no configuration; it encodes as {}.
type EmptyConfig struct{}
