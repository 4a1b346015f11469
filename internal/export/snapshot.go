// Package export writes a decompiled program as a MessagePack snapshot, so
// that other tools can consume the result without rerunning the pipeline.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"cdecomp/internal/ast"
	"cdecomp/internal/program"
)

// Current schema version - increment when the Snapshot format changes
const SchemaVersion uint16 = 1

var ErrSchemaMismatch = errors.New("snapshot schema mismatch")

// Snapshot is the serialized form of a program. Types and expressions are
// stored as the C text they print as.
type Snapshot struct {
	Schema uint16
	Source string

	Typedefs  []Typedef
	Structs   []Struct
	Globals   []Global
	Functions []Function
}

type Typedef struct {
	Name      string
	Signature string
}

type Field struct {
	Name string
	Type string
}

type Struct struct {
	Name   string
	Union  bool
	Fields []Field
}

type Global struct {
	Name        string
	Type        string
	Initializer string
}

type Function struct {
	Name        string
	ReturnType  string
	Params      []Field
	VarArg      bool
	Declaration bool
	Allocas     []Field
	Blocks      []Block
}

type Block struct {
	Label      string
	Statements []string
}

// Build captures the current state of p
func Build(source string, p *program.Program) *Snapshot {
	s := &Snapshot{Schema: SchemaVersion, Source: source}

	for _, td := range p.Types.Typedefs() {
		s.Typedefs = append(s.Typedefs, Typedef{Name: td.TypedefName, Signature: td.Signature()})
	}

	for _, st := range p.Structs.Structs() {
		out := Struct{Name: st.Name, Union: st.Union}
		for _, f := range st.Fields {
			out.Fields = append(out.Fields, Field{Name: f.Name, Type: f.Type.String()})
		}
		s.Structs = append(s.Structs, out)
	}

	for _, g := range p.Globals() {
		s.Globals = append(s.Globals, Global{Name: g.Name, Type: g.Type().String(), Initializer: g.Initializer})
	}

	for _, fn := range p.Functions() {
		s.Functions = append(s.Functions, function(fn))
	}
	return s
}

func function(fn *program.Function) Function {
	out := Function{
		Name:        fn.Name,
		ReturnType:  fn.ReturnType.String(),
		VarArg:      fn.VarArg,
		Declaration: fn.Declaration,
	}
	for _, p := range fn.Parameters {
		out.Params = append(out.Params, field(p))
	}
	for _, a := range fn.Allocas {
		out.Allocas = append(out.Allocas, field(a.Value))
	}
	for _, b := range fn.Blocks {
		block := Block{Label: b.Name}
		for _, e := range b.Exprs {
			block.Statements = append(block.Statements, e.String())
		}
		out.Blocks = append(out.Blocks, block)
	}
	return out
}

func field(v *ast.Value) Field {
	return Field{Name: v.Name, Type: v.Type().String()}
}

// Write stores the snapshot at path, replacing any previous file atomically
func Write(path string, s *Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read loads a snapshot written by Write
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Snapshot
	if err := msgpack.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", path, ErrSchemaMismatch, s.Schema, SchemaVersion)
	}
	return &s, nil
}

// Function returns the exported function with the given C name
func (s *Snapshot) Function(name string) *Function {
	for i := range s.Functions {
		if s.Functions[i].Name == name {
			return &s.Functions[i]
		}
	}
	return nil
}
