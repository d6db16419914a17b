// Package render formats track records with user supplied templates.
//
// Templates use text/template syntax where every canonical field is also
// available as a bare name, so "{{artist}} - {{title}}" works alongside
// "{{.artist}} - {{.title}}". Whole-history templates iterate the tracks
// with "{{range tracks}}{{.artist}}{{end}}". Bare names always refer to the
// newest track, so they are rejected inside range, where the dotted form
// must be used.
package render

import (
	"fmt"
	"slices"
	"strings"
	"text/template"
	tparse "text/template/parse"

	"github.com/zachfi/nowplaying/pkg/track"
)

// Default is the template used when none is configured or the configured
// one cannot be parsed.
const Default = "{{artist}} - {{title}}"

// HTML is a built in whole-history template listing the tracks as a web page.
const HTML = `<!DOCTYPE html>
<html>
    <body>
        {{- range tracks}}
        <p>{{html .artist}} - {{html .title}}</p>
        {{- end}}
    </body>
</html>
`

const tracksName = "tracks"

// Bindings are the values available to a template: the fields of the
// current track and, for whole-history templates, every track.
type Bindings struct {
	Fields map[string]string
	Tracks []map[string]string
}

// ForRecord returns the bindings for a single record.
func ForRecord(r track.Record) Bindings {
	return Bindings{Fields: r.Map()}
}

// ForHistory returns bindings for a history snapshot, oldest first. The
// top level fields are those of the newest record.
func ForHistory(records []track.Record) Bindings {
	b := Bindings{Tracks: make([]map[string]string, 0, len(records))}
	for _, r := range records {
		b.Tracks = append(b.Tracks, r.Map())
	}
	if n := len(records); n > 0 {
		b.Fields = records[n-1].Map()
	}
	return b
}

// Template is a parsed template.
type Template struct {
	src  string
	tmpl *template.Template
}

var defaultTemplate = mustParse(Default)

// Parse parses src. A malformed template yields the default template along
// with the parse error, so callers can warn and carry on.
func Parse(src string) (*Template, error) {
	if src == "" {
		return defaultTemplate, nil
	}

	t, err := parse(src)
	if err != nil {
		return defaultTemplate, err
	}
	return t, nil
}

func parse(src string) (*Template, error) {
	tmpl, err := template.New("output").
		Option("missingkey=zero").
		Funcs(placeholders()).
		Parse(src)
	if err != nil {
		return nil, err
	}

	for _, t := range tmpl.Templates() {
		if t.Tree == nil {
			continue
		}
		if err := checkRanges(t.Tree.Root, false); err != nil {
			return nil, fmt.Errorf("template: %s: %w", t.Name(), err)
		}
	}

	return &Template{src: src, tmpl: tmpl}, nil
}

// checkRanges reports a bare field name used inside a range body.
func checkRanges(node tparse.Node, inRange bool) error {
	switch n := node.(type) {
	case *tparse.ListNode:
		if n == nil {
			return nil
		}
		for _, c := range n.Nodes {
			if err := checkRanges(c, inRange); err != nil {
				return err
			}
		}
	case *tparse.ActionNode:
		return checkRanges(n.Pipe, inRange)
	case *tparse.PipeNode:
		if n == nil {
			return nil
		}
		for _, cmd := range n.Cmds {
			for _, arg := range cmd.Args {
				if err := checkRanges(arg, inRange); err != nil {
					return err
				}
			}
		}
	case *tparse.IdentifierNode:
		if inRange && slices.Contains(track.Fields, n.Ident) {
			return fmt.Errorf("use {{.%s}} instead of {{%s}} inside range", n.Ident, n.Ident)
		}
	case *tparse.IfNode:
		return checkBranch(&n.BranchNode, inRange, inRange)
	case *tparse.WithNode:
		return checkBranch(&n.BranchNode, inRange, inRange)
	case *tparse.RangeNode:
		return checkBranch(&n.BranchNode, inRange, true)
	case *tparse.TemplateNode:
		return checkRanges(n.Pipe, inRange)
	}
	return nil
}

func checkBranch(b *tparse.BranchNode, outer, body bool) error {
	if err := checkRanges(b.Pipe, outer); err != nil {
		return err
	}
	if err := checkRanges(b.List, body); err != nil {
		return err
	}
	return checkRanges(b.ElseList, outer)
}

func mustParse(src string) *Template {
	t, err := parse(src)
	if err != nil {
		panic("render: invalid built in template: " + err.Error())
	}
	return t
}

// Source returns the template text.
func (t *Template) Source() string { return t.src }

// IsDefault reports whether t is the built in default.
func (t *Template) IsDefault() bool { return t == defaultTemplate }

// Execute renders the template. On failure the default template is rendered
// instead and the error is returned alongside its output.
func (t *Template) Execute(b Bindings) (string, error) {
	out, err := t.execute(b)
	if err != nil && t != defaultTemplate {
		fallback, _ := defaultTemplate.execute(b)
		return fallback, err
	}
	return out, err
}

func (t *Template) execute(b Bindings) (string, error) {
	tmpl, err := t.tmpl.Clone()
	if err != nil {
		return "", err
	}
	tmpl.Funcs(values(b))

	data := make(map[string]any, len(track.Fields)+1)
	for _, f := range track.Fields {
		data[f] = b.Fields[f]
	}
	data[tracksName] = b.Tracks

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// placeholders declares the bare names at parse time.
func placeholders() template.FuncMap {
	return values(Bindings{})
}

func values(b Bindings) template.FuncMap {
	fm := make(template.FuncMap, len(track.Fields)+1)
	for _, f := range track.Fields {
		v := b.Fields[f]
		fm[f] = func() string { return v }
	}
	tracks := b.Tracks
	fm[tracksName] = func() []map[string]string { return tracks }
	return fm
}
