package serializer

import (
	"context"
	"fmt"
	"sort"

	"github.com/shabykov/modelbind"
	"github.com/shabykov/modelbind/field"
	"github.com/shabykov/modelbind/validate"
)

// AllFields is the sentinel for Meta.Fields meaning "every generated
// field".
const AllFields = "__all__"

// Extra overrides the kwargs of one generated field. A read-only override
// strips incompatible kwargs (required, default, length bounds,
// validators), since they are meaningless on a read-only field.
type Extra struct {
	ReadOnly   bool
	WriteOnly  bool
	Required   *bool
	Nullable   *bool
	Default    any
	MinLength  *int
	MaxLength  *int
	Validators []validate.Validator
}

// Meta configures model-driven template generation. Exactly one of Fields
// and Exclude must be set; Fields may be the AllFields sentinel or an
// explicit allow-list, Exclude is a deny-list applied to the generated
// default set.
type Meta struct {
	// Name labels the serializer in diagnostics. Defaults to the model
	// name plus "Serializer".
	Name string

	Model modelbind.Model

	Fields  []string
	Exclude []string

	// ReadOnlyFields marks generated fields read-only, shorthand for an
	// Extra{ReadOnly: true} entry per name.
	ReadOnlyFields []string

	// Extra holds per-name kwargs overrides; they win over the
	// model-derived kwargs.
	Extra map[string]Extra

	// Declared holds explicitly declared fields used as-is instead of the
	// generated ones.
	Declared map[string]field.Field

	// OnCreate/OnUpdate replace the generic model-backed hooks.
	OnCreate CreateFunc
	OnUpdate UpdateFunc
}

type fieldFactory func(fi modelbind.FieldInfo, opts []field.Option) field.Field

// fieldFactories maps a descriptor's storage-type name to the field subtype
// it generates. An unmapped storage type is a fatal configuration error.
var fieldFactories = map[string]fieldFactory{
	"IntField":      func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Integer(opts...) },
	"BigIntField":   func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Integer(opts...) },
	"SmallIntField": func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Integer(opts...) },
	"BinaryField":   func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Binary(opts...) },
	"BooleanField":  func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Boolean(opts...) },
	"CharField":     func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Char(opts...) },
	"TextField":     func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Char(opts...) },
	"DateField":     func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Date(opts...) },
	"DatetimeField": func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.DateTime(opts...) },
	"DecimalField":  func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Decimal(opts...) },
	"FloatField":    func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.Float(opts...) },
	"TimeDeltaField": func(fi modelbind.FieldInfo, opts []field.Option) field.Field {
		return field.Time(opts...)
	},
	"UUIDField": func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.UUID(opts...) },
	"JSONField": func(fi modelbind.FieldInfo, opts []field.Option) field.Field { return field.JSON(opts...) },

	"ForeignKeyField":         relationFactory(field.PrimaryKey),
	"ForeignKeyFieldInstance": relationFactory(field.PrimaryKey),
	"OneToOneField":           relationFactory(field.PrimaryKey),
	"OneToOneFieldInstance":   relationFactory(field.PrimaryKey),
	"ManyToManyField": relationFactory(func(m modelbind.Model, opts ...field.Option) *field.MultiPrimaryKeyField {
		return field.MultiPrimaryKey(m, opts...)
	}),
}

func relationFactory[F field.Field](ctor func(m modelbind.Model, opts ...field.Option) F) fieldFactory {
	return func(fi modelbind.FieldInfo, opts []field.Option) field.Field {
		if fi.Related == nil {
			panic(fmt.Sprintf("serializer: relation field %q has no related model in the schema snapshot", fi.Name))
		}
		return ctor(fi.Related, opts...)
	}
}

// NewModelTemplate derives a template from a model collaborator's schema
// snapshot, merging generated fields with explicitly declared ones.
// Configuration defects panic; they indicate a broken serializer
// definition, not bad input.
func NewModelTemplate(meta Meta) *Template {
	name := meta.Name
	if meta.Model == nil {
		panic(fmt.Sprintf("serializer: %s is missing Meta.Model", metaName(name)))
	}
	info := meta.Model.Describe()
	if name == "" {
		name = info.Name + "Serializer"
	}
	if info.Abstract {
		panic(fmt.Sprintf("serializer: cannot use %s with an abstract model", name))
	}
	fieldsSet := len(meta.Fields) > 0
	excludeSet := len(meta.Exclude) > 0
	if fieldsSet && excludeSet {
		panic(fmt.Sprintf("serializer: cannot set both 'Fields' and 'Exclude' options on %s", name))
	}
	if !fieldsSet && !excludeSet {
		panic(fmt.Sprintf("serializer: %s requires either 'Fields' (may be AllFields) or 'Exclude'", name))
	}

	generated, order := generatedFields(info)
	if len(generated) == 0 {
		panic(fmt.Sprintf("serializer: model %s must have fields", info.Name))
	}

	extra := mergedExtra(meta)
	names := resolveFieldNames(name, meta, generated, order)

	bld := New()
	for _, fn := range names {
		if decl, ok := meta.Declared[fn]; ok {
			bld.Field(fn, decl)
			continue
		}
		fi, ok := generated[fn]
		if !ok {
			// Allow-list names without a model counterpart are skipped;
			// only declared fields can introduce non-model names.
			continue
		}
		factory := fieldFactories[fi.Type]
		bld.Field(fn, factory(fi, generatedOptions(fi, extra[fn])))
	}

	create := meta.OnCreate
	if create == nil {
		create = modelCreate(name, meta.Model)
	}
	update := meta.OnUpdate
	if update == nil {
		update = modelUpdate(meta.Model)
	}
	return bld.OnCreate(create).OnUpdate(update).MustBuild()
}

func metaName(name string) string {
	if name == "" {
		return "a model serializer"
	}
	return name
}

// generatedFields maps every descriptor to its field factory, asserting the
// storage type is mappable. Order is the snapshot's generation order.
func generatedFields(info modelbind.ModelInfo) (map[string]modelbind.FieldInfo, []string) {
	out := map[string]modelbind.FieldInfo{}
	var order []string
	for _, fi := range info.All() {
		if fi.Name == "" {
			continue
		}
		if _, mapped := fieldFactories[fi.Type]; !mapped {
			panic(fmt.Sprintf("serializer: model %s field %q has unmapped storage type %q", info.Name, fi.Name, fi.Type))
		}
		if _, dup := out[fi.Name]; !dup {
			order = append(order, fi.Name)
		}
		out[fi.Name] = fi
	}
	return out, order
}

// mergedExtra folds ReadOnlyFields into the Extra overrides.
func mergedExtra(meta Meta) map[string]Extra {
	out := map[string]Extra{}
	for k, v := range meta.Extra {
		out[k] = v
	}
	for _, fn := range meta.ReadOnlyFields {
		e := out[fn]
		e.ReadOnly = true
		out[fn] = e
	}
	return out
}

func resolveFieldNames(name string, meta Meta, generated map[string]modelbind.FieldInfo, order []string) []string {
	explicit := len(meta.Fields) > 0 && !(len(meta.Fields) == 1 && meta.Fields[0] == AllFields)
	if explicit {
		allowed := map[string]struct{}{}
		for _, fn := range meta.Fields {
			allowed[fn] = struct{}{}
		}
		declared := make([]string, 0, len(meta.Declared))
		for fn := range meta.Declared {
			declared = append(declared, fn)
		}
		sort.Strings(declared)
		for _, fn := range declared {
			if _, ok := allowed[fn]; !ok {
				panic(fmt.Sprintf("serializer: the field %q was declared on %s but has not been included in the 'Fields' option", fn, name))
			}
		}
		return append([]string(nil), meta.Fields...)
	}

	if len(meta.Exclude) == 0 {
		return append([]string(nil), order...)
	}
	excluded := map[string]struct{}{}
	for _, fn := range meta.Exclude {
		if _, ok := meta.Declared[fn]; ok {
			panic(fmt.Sprintf("serializer: cannot both declare the field %q and include it in the %s 'Exclude' option", fn, name))
		}
		if _, ok := generated[fn]; !ok {
			panic(fmt.Sprintf("serializer: the field %q was included on %s in the 'Exclude' option, but does not match any model field", fn, name))
		}
		excluded[fn] = struct{}{}
	}
	out := make([]string, 0, len(order))
	for _, fn := range order {
		if _, skip := excluded[fn]; !skip {
			out = append(out, fn)
		}
	}
	return out
}

// generatedOptions derives field kwargs from the model descriptor merged
// with the Extra override for that name.
func generatedOptions(fi modelbind.FieldInfo, extra Extra) []field.Option {
	opts := []field.Option{field.Named(fi.Name)}
	if extra.ReadOnly {
		// Incompatible kwargs are stripped: a read-only field is never
		// validated or written.
		opts = append(opts, field.ReadOnly())
		if extra.WriteOnly {
			opts = append(opts, field.WriteOnly())
		}
		return opts
	}
	if extra.WriteOnly {
		opts = append(opts, field.WriteOnly())
	}
	nullable := fi.Nullable
	if extra.Nullable != nil {
		nullable = *extra.Nullable
	}
	if nullable {
		opts = append(opts, field.Nullable())
	}
	if extra.Required != nil && !*extra.Required {
		opts = append(opts, field.Optional())
	}
	def := fi.Default
	if extra.Default != nil {
		def = extra.Default
	}
	if def != nil {
		opts = append(opts, field.Default(def))
		// A default makes the field optional unless an explicit Required
		// override says otherwise.
		if extra.Required == nil || !*extra.Required {
			opts = append(opts, field.Optional())
		}
	}
	if extra.MinLength != nil {
		opts = append(opts, field.MinLength(*extra.MinLength))
	}
	if extra.MaxLength != nil {
		opts = append(opts, field.MaxLength(*extra.MaxLength))
	}
	if len(extra.Validators) > 0 {
		opts = append(opts, field.With(extra.Validators...))
	}
	return opts
}

// modelCreate builds the generic create hook. Many-to-many values are
// extracted before constructing the row (the relation table needs an
// existing primary key); relations are cleared and repopulated only after
// construction succeeds.
func modelCreate(name string, model modelbind.Model) CreateFunc {
	return func(ctx context.Context, validated *modelbind.Map) (modelbind.Instance, error) {
		info := model.Describe()
		manyToMany := map[string][]modelbind.Instance{}
		var m2mOrder []string
		for _, fi := range info.M2M {
			if v, ok := validated.Delete(fi.Name); ok {
				manyToMany[fi.Name] = asInstances(v)
				m2mOrder = append(m2mOrder, fi.Name)
			}
		}

		inst, err := model.Create(ctx, validated.Values())
		if err != nil {
			return nil, fmt.Errorf(
				"serializer: %s.Create failed for %s; a writable serializer field may not be a valid %s field: %w",
				info.Name, name, info.Name, err)
		}

		for _, fn := range m2mOrder {
			if err := repopulateRelation(ctx, inst, fn, manyToMany[fn]); err != nil {
				return nil, err
			}
		}
		return inst, nil
	}
}

// modelUpdate builds the generic update hook: many-to-many names route to
// relation clear+repopulate, everything else to attribute assignment, with
// one Save at the end.
func modelUpdate(model modelbind.Model) UpdateFunc {
	return func(ctx context.Context, inst modelbind.Instance, validated *modelbind.Map) (modelbind.Instance, error) {
		m2m := map[string]struct{}{}
		for _, fn := range model.Describe().M2MNames() {
			m2m[fn] = struct{}{}
		}
		var relErr error
		validated.Range(func(fn string, v any) bool {
			if _, isM2M := m2m[fn]; isM2M {
				if err := repopulateRelation(ctx, inst, fn, asInstances(v)); err != nil {
					relErr = err
					return false
				}
				return true
			}
			inst.SetAttr(fn, v)
			return true
		})
		if relErr != nil {
			return nil, relErr
		}
		if err := model.Save(ctx, inst); err != nil {
			return nil, err
		}
		return inst, nil
	}
}

func repopulateRelation(ctx context.Context, inst modelbind.Instance, name string, items []modelbind.Instance) error {
	attr, ok := inst.Attr(name)
	if !ok {
		return nil
	}
	rel, ok := attr.(modelbind.Relation)
	if !ok {
		return fmt.Errorf("serializer: attribute %q is not a relation handle", name)
	}
	if err := rel.Clear(ctx); err != nil {
		return err
	}
	for _, item := range items {
		if err := rel.Add(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func asInstances(v any) []modelbind.Instance {
	switch t := v.(type) {
	case []modelbind.Instance:
		return t
	case []any:
		out := make([]modelbind.Instance, 0, len(t))
		for _, el := range t {
			if inst, ok := el.(modelbind.Instance); ok {
				out = append(out, inst)
			}
		}
		return out
	case modelbind.Instance:
		return []modelbind.Instance{t}
	}
	return nil
}
