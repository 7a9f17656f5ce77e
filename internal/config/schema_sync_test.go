// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/invowk/mpycross/pkg/mpycross"
)

// These tests keep the embedded CUE schema aligned with the Go structs and
// with the option sets known to pkg/mpycross.

func compileSchema(t *testing.T) cue.Value {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile schema: %v", schema.Err())
	}
	return schema
}

// cueFields lists the field names declared by a schema definition.
func cueFields(t *testing.T, val cue.Value) []string {
	t.Helper()

	iter, err := val.Fields(cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}

	var fields []string
	for iter.Next() {
		fields = append(fields, strings.TrimSuffix(iter.Selector().String(), "?"))
	}
	slices.Sort(fields)
	return fields
}

// jsonFields lists the JSON tag names of a struct's direct fields.
func jsonFields(typ reflect.Type) []string {
	var fields []string
	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			fields = append(fields, name)
		}
	}
	slices.Sort(fields)
	return fields
}

func TestSchemaMatchesStructs(t *testing.T) {
	t.Parallel()

	schema := compileSchema(t)

	tests := []struct {
		definition string
		typ        reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#CompilerConfig", reflect.TypeFor[CompilerConfig]()},
		{"#DefaultsConfig", reflect.TypeFor[DefaultsConfig]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.definition, func(t *testing.T) {
			t.Parallel()

			def := schema.LookupPath(cue.ParsePath(tt.definition))
			if def.Err() != nil {
				t.Fatalf("definition %s not found: %v", tt.definition, def.Err())
			}

			cueNames := cueFields(t, def)
			goNames := jsonFields(tt.typ)
			if !slices.Equal(cueNames, goNames) {
				t.Errorf("schema fields %v do not match %s json tags %v", cueNames, tt.typ.Name(), goNames)
			}
		})
	}
}

func TestSchemaEnumsMatchCompilerOptions(t *testing.T) {
	t.Parallel()

	schema := compileSchema(t)

	accepts := func(def, value string) bool {
		v := schema.LookupPath(cue.ParsePath(def)).Unify(schema.Context().CompileString(`"` + value + `"`))
		return v.Validate(cue.Concrete(true)) == nil
	}

	for _, arch := range mpycross.Archs() {
		if !accepts("#Arch", arch.String()) {
			t.Errorf("schema #Arch rejects %q", arch)
		}
	}
	for _, emitter := range mpycross.Emitters() {
		if !accepts("#Emitter", emitter.String()) {
			t.Errorf("schema #Emitter rejects %q", emitter)
		}
	}
	if accepts("#Arch", "riscv") {
		t.Error("schema #Arch should reject unknown architectures")
	}
}
