package modelbind

// FieldInfo describes one model field in a schema snapshot.
type FieldInfo struct {
	Name     string
	Type     string // storage-type name, e.g. "IntField", "CharField"
	Nullable bool
	Unique   bool
	Default  any
	// Related is the collaborator of the referenced model. Set only on
	// foreign-key, one-to-one and many-to-many descriptors.
	Related Model
}

// ModelInfo is the schema snapshot returned by Model.Describe. It is
// consumed at serializer-generation time only and is not retained on live
// serializer instances.
type ModelInfo struct {
	Name     string
	Abstract bool
	PK       FieldInfo
	Data     []FieldInfo
	FK       []FieldInfo
	O2O      []FieldInfo
	M2M      []FieldInfo
}

// All returns every descriptor in generation order: primary key, data
// fields, foreign keys, one-to-one, many-to-many.
func (mi ModelInfo) All() []FieldInfo {
	out := make([]FieldInfo, 0, 1+len(mi.Data)+len(mi.FK)+len(mi.O2O)+len(mi.M2M))
	out = append(out, mi.PK)
	out = append(out, mi.Data...)
	out = append(out, mi.FK...)
	out = append(out, mi.O2O...)
	out = append(out, mi.M2M...)
	return out
}

// M2MNames returns the names of the many-to-many descriptors.
func (mi ModelInfo) M2MNames() []string {
	out := make([]string, 0, len(mi.M2M))
	for _, fi := range mi.M2M {
		out = append(out, fi.Name)
	}
	return out
}
