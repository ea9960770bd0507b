package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	xsdedit "github.com/agentflare-ai/go-xsdedit"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: inspect <schema.xsd>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read schema file: %v", err)
	}

	tree, err := xsdedit.Parse(string(data))
	if err != nil {
		log.Fatalf("Failed to parse schema: %v", err)
	}

	printNode(tree, 0)
}

func printNode(n *xsdedit.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s", indent, n.Kind())
	if name := n.Name(); name != "" {
		line += fmt.Sprintf(" %q", name)
	}
	if o := n.Occurs(); !o.IsDefault() {
		line += fmt.Sprintf(" [%s]", o)
	}
	switch n.Kind() {
	case xsdedit.KindElement:
		if ref := n.Element().TypeRef; ref != "" {
			line += " type=" + ref
		}
	case xsdedit.KindFacet:
		d := n.Facet()
		line += fmt.Sprintf(" %s=%q", d.Kind, d.Value)
	case xsdedit.KindRestriction:
		if base := n.Restriction().Base; base != "" {
			line += " base=" + base
		}
	}
	fmt.Println(line)
	for _, c := range n.Children() {
		printNode(c, depth+1)
	}
}
