package tether

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the record tag with sentinel
	sentinel.Tag("tether")
}

// schema is the immutable per-type plan shared by every Record of a type.
type schema struct {
	typ       reflect.Type
	typeName  string
	endpoints Endpoints

	fields []fieldPlan     // fillable fields in declaration order
	byName map[string]int  // wire name -> fields index
	key    int             // fields index of the identifying key, -1 if none

	relations []relationPlan
	relByName map[string]int
}

// fieldPlan describes a single fillable field.
type fieldPlan struct {
	index  []int        // reflect.Value.FieldByIndex access path
	name   string       // wire name
	goName string       // struct field name for error messages
	typ    reflect.Type // declared slot type
}

// relationPlan describes a single association field.
type relationPlan struct {
	index  []int
	name   string
	goName string
	kind   Kind
	target reflect.Type
	local  int // fields index of the local key
}

// association is implemented by HasOne and any future association kinds.
type association interface {
	Kind() Kind
	Target() reflect.Type
	bind(s *slot)
}

var (
	associationType = reflect.TypeFor[association]()
	resourceType    = reflect.TypeFor[Resource]()
)

// keyField is the wire name used as identifying key when no field is tagged.
const keyField = "id"

// buildSchema creates the schema for type T by scanning its fields.
func buildSchema[T Resource]() (*schema, error) {
	meta := sentinel.Scan[T]()
	rt := reflect.TypeFor[T]()

	var zero T
	s := &schema{
		typ:       rt,
		typeName:  meta.TypeName,
		endpoints: zero.Endpoints(),
		byName:    make(map[string]int),
		key:       -1,
		relByName: make(map[string]int),
	}
	if s.typeName == "" {
		s.typeName = rt.Name()
	}

	type pendingRelation struct {
		plan relationPlan
		tag  map[string]string
	}
	var pending []pendingRelation

	for _, field := range meta.Fields {
		sf := rt.FieldByIndex(field.Index)
		if !sf.IsExported() {
			continue
		}

		name, skip := wireName(sf)
		if skip {
			continue
		}

		raw, _ := tagValue(field, sf, "tether")
		opts := parseTagOptions(raw)

		// Associations are recognised by type, never by probing
		if reflect.PointerTo(field.ReflectType).Implements(associationType) {
			pending = append(pending, pendingRelation{
				plan: relationPlan{
					index:  append([]int{}, field.Index...),
					name:   name,
					goName: field.Name,
				},
				tag: opts,
			})
			continue
		}

		if _, dup := s.byName[name]; dup {
			return nil, &SchemaError{Type: s.typeName, Field: field.Name, Reason: fmt.Sprintf("duplicate field name %q", name)}
		}

		if _, isKey := opts["key"]; isKey {
			if s.key >= 0 {
				return nil, &SchemaError{Type: s.typeName, Field: field.Name, Reason: "more than one key field"}
			}
			s.key = len(s.fields)
		}

		s.byName[name] = len(s.fields)
		s.fields = append(s.fields, fieldPlan{
			index:  append([]int{}, field.Index...),
			name:   name,
			goName: field.Name,
			typ:    field.ReflectType,
		})
	}

	if s.key < 0 {
		if i, ok := s.byName[keyField]; ok {
			s.key = i
		}
	}

	for _, p := range pending {
		plan := p.plan
		if _, clash := s.byName[plan.name]; clash {
			return nil, &SchemaError{Type: s.typeName, Field: plan.goName, Reason: fmt.Sprintf("relation name %q collides with a field", plan.name)}
		}
		if _, dup := s.relByName[plan.name]; dup {
			return nil, &SchemaError{Type: s.typeName, Field: plan.goName, Reason: fmt.Sprintf("duplicate relation name %q", plan.name)}
		}

		local, ok := p.tag["local"]
		if !ok || local == "" {
			return nil, &SchemaError{Type: s.typeName, Field: plan.goName, Reason: `missing "local=" key`}
		}
		li, ok := s.byName[local]
		if !ok {
			return nil, &SchemaError{Type: s.typeName, Field: plan.goName, Reason: fmt.Sprintf("local key %q is not a field", local)}
		}
		plan.local = li

		fieldType := rt.FieldByIndex(plan.index).Type
		assoc := reflect.New(fieldType).Interface().(association)
		plan.kind = assoc.Kind()
		if plan.kind != KindToOne {
			return nil, &SchemaError{Type: s.typeName, Field: plan.goName, Reason: fmt.Sprintf("unsupported association kind %s", plan.kind)}
		}

		plan.target = assoc.Target()
		if plan.target.Kind() != reflect.Struct || !plan.target.Implements(resourceType) {
			return nil, &SchemaError{Type: s.typeName, Field: plan.goName, Reason: fmt.Sprintf("target %s is not a struct resource", plan.target)}
		}

		s.relByName[plan.name] = len(s.relations)
		s.relations = append(s.relations, plan)
	}

	emitSchemaBuilt(context.Background(), s.typeName, len(s.fields), len(s.relations))
	return s, nil
}

// wireName returns the json name of a field and whether the field is excluded.
func wireName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", true
	}
	if name == "" {
		return sf.Name, false
	}
	return name, false
}

// tagValue reads a tag from sentinel metadata, falling back to the raw struct tag.
func tagValue(field sentinel.FieldMetadata, sf reflect.StructField, key string) (string, bool) {
	if val, ok := field.Tags[key]; ok {
		return val, true
	}
	return sf.Tag.Lookup(key)
}

// parseTagOptions splits "key,local=role_id" into {"key": "", "local": "role_id"}.
func parseTagOptions(raw string) map[string]string {
	opts := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		opts[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return opts
}

// keyName returns the wire name of the identifying key.
func (s *schema) keyName() string {
	if s.key < 0 {
		return keyField
	}
	return s.fields[s.key].name
}
