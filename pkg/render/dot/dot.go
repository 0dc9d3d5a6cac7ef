package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/preset"
)

// Options configures DOT generation.
type Options struct {
	// Types appends each socket's type to its port label.
	Types bool
	// Title is drawn above the diagram when set.
	Title string
}

// ToDOT converts g to Graphviz DOT source.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=Mrecord, style=filled, fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		from, to := endpoint(g, e.From, "e"), endpoint(g, e.To, "w")
		fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, opts Options) []string {
	attrs := []string{"label=" + quote(recordLabel(n, opts))}
	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color))
		if dark(n.Color) {
			attrs = append(attrs, "fontcolor=white")
		}
	}
	if n.Collapsed {
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	return attrs
}

// recordLabel lays out title, body and bottom row. With rankdir=LR the
// top level of a record stacks vertically and every brace level flips.
func recordLabel(n *graph.Node, opts Options) string {
	title := escape(n.Preset)
	if n.Collapsed {
		return title
	}

	var ins, outs, bottom []string
	for i, s := range n.Sockets {
		field := fmt.Sprintf("<%s> %s", port(i), socketText(s, opts))
		switch {
		case s.IsBottom():
			bottom = append(bottom, field)
		case s.IsOutput():
			outs = append(outs, field)
		default:
			ins = append(ins, field)
		}
	}

	parts := []string{title}
	if len(ins)+len(outs) > 0 {
		parts = append(parts, fmt.Sprintf("{ { %s } | { %s } }", group(ins), group(outs)))
	}
	if len(bottom) > 0 {
		parts = append(parts, fmt.Sprintf("{ %s }", strings.Join(bottom, " | ")))
	}
	return strings.Join(parts, " | ")
}

func group(fields []string) string {
	if len(fields) == 0 {
		return " "
	}
	return strings.Join(fields, " | ")
}

func socketText(s *graph.Socket, opts Options) string {
	text := escape(s.Name())
	if opts.Types {
		text += escape(" : " + string(s.Type))
	}
	return text
}

func port(i int) string { return "p" + strconv.Itoa(i) }

// endpoint returns the DOT endpoint of a socket: node:port:compass, or the
// bare node when it is collapsed or the socket is gone.
func endpoint(g *graph.Graph, key graph.SocketKey, compass string) string {
	n, ok := g.Node(key.NodeID)
	if !ok || n.Collapsed {
		return strconv.Quote(key.NodeID)
	}
	for i, s := range n.Sockets {
		if s.Key == key {
			if s.IsBottom() {
				compass = "s"
				if key.Direction == preset.Output {
					compass = "se"
				}
			}
			return fmt.Sprintf("%q:%s:%s", key.NodeID, port(i), compass)
		}
	}
	return strconv.Quote(key.NodeID)
}

var recordSpecial = strings.NewReplacer(
	`{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

func escape(s string) string { return recordSpecial.Replace(s) }

// quote wraps s in DOT string quotes. DOT only unescapes \", so record
// escapes must pass through untouched.
func quote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"` }

// dark reports whether a #rgb or #rrggbb color needs light text.
func dark(color string) bool {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return false
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	return 0.299*r+0.587*g+0.114*b < 128
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(src string) ([]byte, error) {
	return RenderSVGContext(context.Background(), src)
}

// RenderSVGContext is RenderSVG with a caller-supplied context.
func RenderSVGContext(ctx context.Context, src string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so browsers scale the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
