// Command shapefix checks and repairs JSON/YAML documents against schema
// definitions written in YAML (see package defs).
//
//	shapefix validate schema.yaml doc.json
//	shapefix fix -diff schema.yaml doc.yaml
//	shapefix -config shapefix.yaml is -def Address schema.yaml - < doc.json
package main

import (
	"context"

	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}
