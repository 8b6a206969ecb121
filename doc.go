package modelbind

// Package modelbind provides:
//
// - A declarative data-binding and validation engine converting between
//   wire-format mappings and domain-model instances (field/serializer core)
// - A stable error model via ValidationError/FieldErrors/ListErrors
//   (field-keyed, human-readable, marshals to the transport error shape)
// - Model-collaborator contracts (Instance, Relation, Model) and the schema
//   snapshot (ModelInfo) consumed by model-driven serializer generation
//
// Design policy:
// - Keep only public contracts in the root package; put the field hierarchy
//   under field/, validators under validate/, and the serializer engine
//   under serializer/.
// - Every operation that may call out to a model collaborator takes a
//   context.Context.
// - Validation failures are returned as data; definition-time
//   misconfiguration panics, because it indicates a defect in the
//   serializer definition, not bad input.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	tmpl := serializer.New().
//		Field("title", field.Char(field.MaxLength(255))).
//		Field("enabled", field.Boolean()).
//		MustBuild()
//
//	s := tmpl.New(serializer.WithData(input))
//	if ok, err := s.IsValid(ctx); err != nil {
//		return err // internal failure, aborts the request
//	} else if !ok {
//		return s.Errors() // field-keyed validation errors
//	}
//	out, err := s.Data(ctx)
