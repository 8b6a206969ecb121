package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/memmodel"
	"github.com/shabykov/modelbind/serializer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "modelbind CLI\n\nUsage:\n  modelbind validate -schema schema.yaml -model NAME -data input.json [-partial] [-many]\n\nValidates a JSON document against a YAML-described model schema and prints\nthe validated representation (stdout) or the error mapping (stderr).")
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath, modelName, dataPath string
	var partial, many bool
	fs.StringVar(&schemaPath, "schema", "", "YAML schema document")
	fs.StringVar(&modelName, "model", "", "model name inside the schema document")
	fs.StringVar(&dataPath, "data", "", "JSON input document")
	fs.BoolVar(&partial, "partial", false, "partial-update semantics (absent fields are skipped)")
	fs.BoolVar(&many, "many", false, "treat the input as a sequence of objects")
	_ = fs.Parse(args)
	if schemaPath == "" || modelName == "" || dataPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	models, err := memmodel.LoadSchemas(schemaBytes)
	if err != nil {
		fatalf("%v", err)
	}
	model, ok := models[modelName]
	if !ok {
		fatalf("schema document has no model %q", modelName)
	}

	dataBytes, err := os.ReadFile(dataPath)
	if err != nil {
		fatalf("read data: %v", err)
	}
	var input any
	if err := json.Unmarshal(dataBytes, &input); err != nil {
		fatalf("input is not valid json: %v", err)
	}

	tmpl := serializer.NewModelTemplate(serializer.Meta{
		Model:  model,
		Fields: []string{serializer.AllFields},
	})
	opts := []serializer.Option{serializer.WithData(input)}
	if partial {
		opts = append(opts, serializer.Partial())
	}
	if many {
		opts = append(opts, serializer.Many())
	}
	s := tmpl.New(opts...)

	ok, err = s.IsValid(context.Background())
	if err != nil {
		fatalf("%v", err)
	}
	if !ok {
		out, merr := json.Marshal(modelbind.ErrorShape(s.Errors()))
		if merr != nil {
			fatalf("%v", merr)
		}
		fmt.Fprintln(os.Stderr, string(out))
		os.Exit(1)
	}
	repr, err := s.Data(context.Background())
	if err != nil {
		fatalf("%v", err)
	}
	out, err := json.Marshal(repr)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(string(out))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
