package driver

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ipdl/checker-go/pkg/ast"
)

// Tree documents are named after the source file they were parsed from.
const (
	ProtocolDocSuffix = ".ipdl.yaml"
	HeaderDocSuffix   = ".ipdlh.yaml"
)

// DocumentName is the document file name for the unit called name.
func DocumentName(name string, protocol bool) string {
	if protocol {
		return name + ProtocolDocSuffix
	}
	return name + HeaderDocSuffix
}

// DecodeDocument reads one translation-unit tree. Includes come back
// unresolved; the Loader links them. path only names the document in
// errors and supplies the default file name.
func DecodeDocument(r io.Reader, path string) (*ast.TranslationUnit, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw unitDoc
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("document: %s is empty", path)
		}
		return nil, fmt.Errorf("document: parse %s: %w", path, err)
	}
	tu, err := raw.toUnit(path)
	if err != nil {
		return nil, fmt.Errorf("document: %s: %w", path, err)
	}
	return tu, nil
}

type unitDoc struct {
	Name     string        `yaml:"name"`
	Filename string        `yaml:"filename"`
	Line     int           `yaml:"line"`
	Includes []includeDoc  `yaml:"includes"`
	Using    []usingDoc    `yaml:"using"`
	Types    []typeDeclDoc `yaml:"types"`
	Protocol *protocolDoc  `yaml:"protocol"`
}

type includeDoc struct {
	Name     string `yaml:"name"`
	Protocol bool   `yaml:"protocol"`
	Line     int    `yaml:"line"`
}

type usingDoc struct {
	Type       string         `yaml:"type"`
	Line       int            `yaml:"line"`
	Attributes []attributeDoc `yaml:"attributes"`
}

type attributeDoc struct {
	Name  string  `yaml:"name"`
	Value *string `yaml:"value"`
	Str   *string `yaml:"string"`
	Line  int     `yaml:"line"`
}

type typeDeclDoc struct {
	Kind       string         `yaml:"kind"`
	Name       string         `yaml:"name"`
	Namespaces []string       `yaml:"namespaces"`
	Line       int            `yaml:"line"`
	Fields     []fieldDoc     `yaml:"fields"`
	Components []string       `yaml:"components"`
	Attributes []attributeDoc `yaml:"attributes"`
}

type fieldDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Line int    `yaml:"line"`
}

type protocolDoc struct {
	Name       string         `yaml:"name"`
	Namespaces []string       `yaml:"namespaces"`
	Send       string         `yaml:"send"`
	Line       int            `yaml:"line"`
	Attributes []attributeDoc `yaml:"attributes"`
	Managers   []refDoc       `yaml:"managers"`
	Manages    []refDoc       `yaml:"manages"`
	Messages   []messageDoc   `yaml:"messages"`
}

type refDoc struct {
	Name string `yaml:"name"`
	Line int    `yaml:"line"`
}

type messageDoc struct {
	Name       string         `yaml:"name"`
	Send       string         `yaml:"send"`
	Direction  string         `yaml:"direction"`
	Line       int            `yaml:"line"`
	Params     []paramDoc     `yaml:"params"`
	Returns    []paramDoc     `yaml:"returns"`
	Attributes []attributeDoc `yaml:"attributes"`
}

type paramDoc struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Line       int            `yaml:"line"`
	Attributes []attributeDoc `yaml:"attributes"`
}

// unitNameFromFile strips the source extension: PFoo.ipdl -> PFoo.
func unitNameFromFile(filename string) string {
	base := filepath.Base(filename)
	if name, ok := strings.CutSuffix(base, ".ipdlh"); ok {
		return name
	}
	return strings.TrimSuffix(base, ".ipdl")
}

func (d unitDoc) toUnit(path string) (*ast.TranslationUnit, error) {
	filename := strings.TrimSpace(d.Filename)
	if filename == "" {
		filename = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = unitNameFromFile(filename)
	}
	// Diagnostics name the source file, not the document.
	file := filepath.Base(filename)
	at := func(line, fallback int) ast.Location {
		if line == 0 {
			line = fallback
		}
		return ast.NewLocation(file, line)
	}

	tu := ast.NewTranslationUnit(at(d.Line, 1), name, filename)
	for i, inc := range d.Includes {
		incName := strings.TrimSpace(inc.Name)
		if incName == "" {
			return nil, fmt.Errorf("includes[%d]: name must be provided", i)
		}
		tu.Includes = append(tu.Includes, ast.NewInclude(at(inc.Line, d.Line), incName, inc.Protocol, nil))
	}
	for i, u := range d.Using {
		typeName := strings.TrimSpace(u.Type)
		if typeName == "" {
			return nil, fmt.Errorf("using[%d]: type must be provided", i)
		}
		loc := at(u.Line, d.Line)
		attrs, err := decodeAttributes(u.Attributes, loc, at)
		if err != nil {
			return nil, fmt.Errorf("using %s: %w", typeName, err)
		}
		tu.Using = append(tu.Using, ast.NewUsingStmt(loc, ast.ParseQualifiedID(loc, typeName), attrs))
	}
	for i, td := range d.Types {
		decl, err := td.toTypeDecl(at(td.Line, d.Line), at)
		if err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		tu.TypeDecls = append(tu.TypeDecls, decl)
	}
	if d.Protocol != nil {
		p, err := d.Protocol.toProtocol(at(d.Protocol.Line, d.Line), at)
		if err != nil {
			return nil, err
		}
		tu.Protocol = p
	}
	return tu, nil
}

type locator func(line, fallback int) ast.Location

func decodeAttributes(docs []attributeDoc, owner ast.Location, at locator) (ast.Attributes, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	attrs := make(ast.Attributes, 0, len(docs))
	for _, a := range docs {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, fmt.Errorf("attribute name must be provided")
		}
		var value *ast.AttributeValue
		switch {
		case a.Value != nil && a.Str != nil:
			return nil, fmt.Errorf("attribute %s: value and string are mutually exclusive", name)
		case a.Value != nil:
			value = &ast.AttributeValue{Kind: ast.ValueIdentifier, Text: strings.TrimSpace(*a.Value)}
		case a.Str != nil:
			value = &ast.AttributeValue{Kind: ast.ValueString, Text: *a.Str}
		}
		attrs = append(attrs, ast.NewAttribute(at(a.Line, owner.Line), name, value))
	}
	return attrs, nil
}

func (d typeDeclDoc) toTypeDecl(loc ast.Location, at locator) (ast.TypeDecl, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("%s name must be provided", d.Kind)
	}
	attrs, err := decodeAttributes(d.Attributes, loc, at)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", d.Kind, name, err)
	}
	switch d.Kind {
	case "struct":
		if len(d.Components) > 0 {
			return nil, fmt.Errorf("struct %s: structs have fields, not components", name)
		}
		fields := make([]*ast.StructField, 0, len(d.Fields))
		for _, f := range d.Fields {
			floc := at(f.Line, loc.Line)
			spec, err := ast.ParseTypeSpec(floc, f.Type)
			if err != nil {
				return nil, fmt.Errorf("struct %s: field %s: %w", name, f.Name, err)
			}
			fields = append(fields, ast.NewStructField(floc, strings.TrimSpace(f.Name), spec))
		}
		return ast.NewStructDecl(loc, d.Namespaces, name, fields, attrs), nil
	case "union":
		if len(d.Fields) > 0 {
			return nil, fmt.Errorf("union %s: unions have components, not fields", name)
		}
		components := make([]*ast.TypeSpec, 0, len(d.Components))
		for _, c := range d.Components {
			spec, err := ast.ParseTypeSpec(loc, c)
			if err != nil {
				return nil, fmt.Errorf("union %s: %w", name, err)
			}
			components = append(components, spec)
		}
		return ast.NewUnionDecl(loc, d.Namespaces, name, components, attrs), nil
	default:
		return nil, fmt.Errorf("%s: unknown type declaration kind %q", name, d.Kind)
	}
}

func (d protocolDoc) toProtocol(loc ast.Location, at locator) (*ast.Protocol, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("protocol name must be provided")
	}
	send, err := ast.ParseSendSemantics(strings.TrimSpace(d.Send))
	if err != nil {
		return nil, fmt.Errorf("protocol %s: %w", name, err)
	}
	attrs, err := decodeAttributes(d.Attributes, loc, at)
	if err != nil {
		return nil, fmt.Errorf("protocol %s: %w", name, err)
	}
	p := ast.NewProtocol(loc, d.Namespaces, name, send, attrs)
	for _, m := range d.Managers {
		p.Managers = append(p.Managers, ast.NewManager(at(m.Line, loc.Line), strings.TrimSpace(m.Name)))
	}
	for _, m := range d.Manages {
		p.Manages = append(p.Manages, ast.NewManagesStmt(at(m.Line, loc.Line), strings.TrimSpace(m.Name)))
	}
	for _, md := range d.Messages {
		msg, err := md.toMessage(at(md.Line, loc.Line), at)
		if err != nil {
			return nil, fmt.Errorf("protocol %s: %w", name, err)
		}
		p.Messages = append(p.Messages, msg)
	}
	return p, nil
}

func (d messageDoc) toMessage(loc ast.Location, at locator) (*ast.MessageDecl, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("message name must be provided")
	}
	send, err := ast.ParseSendSemantics(strings.TrimSpace(d.Send))
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", name, err)
	}
	dir, err := ast.ParseDirection(strings.TrimSpace(d.Direction))
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", name, err)
	}
	attrs, err := decodeAttributes(d.Attributes, loc, at)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", name, err)
	}
	msg := ast.NewMessageDecl(loc, name, send, dir, attrs)
	if msg.InParams, err = decodeParams(d.Params, loc, at); err != nil {
		return nil, fmt.Errorf("message %s: %w", name, err)
	}
	if msg.OutParams, err = decodeParams(d.Returns, loc, at); err != nil {
		return nil, fmt.Errorf("message %s: returns: %w", name, err)
	}
	return msg, nil
}

func decodeParams(docs []paramDoc, owner ast.Location, at locator) ([]*ast.Param, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	params := make([]*ast.Param, 0, len(docs))
	for _, p := range docs {
		loc := at(p.Line, owner.Line)
		spec, err := ast.ParseTypeSpec(loc, p.Type)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		attrs, err := decodeAttributes(p.Attributes, loc, at)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		params = append(params, ast.NewParam(loc, strings.TrimSpace(p.Name), spec, attrs))
	}
	return params, nil
}
