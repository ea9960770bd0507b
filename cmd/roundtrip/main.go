package main

import (
	"fmt"
	"log"
	"os"

	xsdedit "github.com/agentflare-ai/go-xsdedit"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: roundtrip <schema.xsd>")
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

	out, err := xsdedit.Serialize(tree, xsdedit.DefaultSerializeOptions())
	if err != nil {
		log.Fatalf("Failed to serialize schema: %v", err)
	}

	// Sanity check: the emitted text must parse back to the same tree.
	back, err := xsdedit.Parse(out)
	if err != nil {
		log.Fatalf("Re-parse of serialized output failed: %v", err)
	}
	if !xsdedit.StructurallyEqual(tree, back) {
		log.Fatal("Round trip is not structurally stable")
	}

	fmt.Print(out)
}
