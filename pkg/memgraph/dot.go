package memgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

const pointsPerInch = 72.0

// DOTOptions configures DOT export.
type DOTOptions struct {
	// Dark selects light text on a dark background.
	Dark bool
}

// ToDOT converts a graph to Graphviz DOT. Node positions are pinned, so the
// picture matches the computed layout rather than a Graphviz layout.
// Screen y grows downward; DOT y grows upward, so y is negated.
func ToDOT(g Graph, opts DOTOptions) string {
	fg, bg, fill := "black", "white", "white"
	if opts.Dark {
		fg, bg, fill = "#E6E6E6", "#1E1E1E", "#2B2B2B"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph memory {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", bg)
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%q, color=%q, fontcolor=%q, fontsize=12, fixedsize=true];\n", fill, fg, fg)
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName(n), strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		src, tgt := edgeEnds(e)
		attrs := []string{fmt.Sprintf("color=%q", e.Color)}
		if e.Kind == EdgeDangling {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", src, tgt, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeName keeps DOT names unique across layers. Heap ids such as "0" are
// only unique within their layer.
func nodeName(n Node) string {
	return string(n.Kind) + ":" + n.ID
}

func edgeEnds(e Edge) (string, string) {
	src := string(KindStack) + ":" + e.Source
	tgt := string(KindStack) + ":" + e.Target
	if e.Kind == EdgeActive || e.Kind == EdgeDangling {
		tgt = string(KindHeap) + ":" + e.Target
	}
	return src, tgt
}

func nodeAttrs(n Node) []string {
	cx := n.Position.X + n.Width/2
	cy := -(n.Position.Y + n.Height/2)
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n)),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx, cy),
	}
	if n.Kind == KindLabel {
		return append(attrs, "shape=plaintext", "style=\"\"", "fontsize=16")
	}
	attrs = append(attrs,
		fmt.Sprintf("width=%.3f", n.Width/pointsPerInch),
		fmt.Sprintf("height=%.3f", n.Height/pointsPerInch),
	)
	switch {
	case n.Extra.IsFree || n.Extra.BlockState == "Unallocated":
		attrs = append(attrs, "style=\"rounded,dashed\"")
	case n.TypeTag == "LB":
		attrs = append(attrs, fmt.Sprintf("color=%q", WarningColor))
	}
	return attrs
}

func nodeLabel(n Node) string {
	if n.Kind == KindLabel {
		return n.Label
	}
	parts := []string{n.Label}
	if n.Value != "" {
		parts[0] += " = " + n.Value
	}
	if n.TypeTag != "" {
		parts = append(parts, n.TypeTag)
	}
	if n.Extra.Address != "" {
		parts = append(parts, n.Extra.Address)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine, which
// honours the pinned positions written by [ToDOT].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
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

// normalizeViewBox replaces Graphviz's fixed-size svg tag with one that
// scales to its container.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
