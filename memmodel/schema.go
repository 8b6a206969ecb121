package memmodel

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shabykov/modelbind"
)

// YAML schema descriptors. A document defines one or more models:
//
//	models:
//	  - name: task
//	    pk: {name: id, type: IntField}
//	    fields:
//	      - {name: title, type: CharField}
//	      - {name: enabled, type: BooleanField, default: true}
//	    many_to_many:
//	      - {name: tags, type: ManyToManyField, model: tag}
//	  - name: tag
//	    pk: {name: id, type: IntField}
//	    fields:
//	      - {name: label, type: CharField}
//
// Relation entries reference other models in the same document by name.

type schemaDoc struct {
	Models []modelDoc `yaml:"models"`
}

type modelDoc struct {
	Name        string     `yaml:"name"`
	Abstract    bool       `yaml:"abstract"`
	PK          fieldDoc   `yaml:"pk"`
	Fields      []fieldDoc `yaml:"fields"`
	ForeignKeys []fieldDoc `yaml:"foreign_keys"`
	OneToOne    []fieldDoc `yaml:"one_to_one"`
	ManyToMany  []fieldDoc `yaml:"many_to_many"`
}

type fieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
	Unique   bool   `yaml:"unique"`
	Default  any    `yaml:"default"`
	Model    string `yaml:"model"`
}

// LoadSchemas parses a YAML schema document and returns the defined models
// keyed by name, with relation descriptors resolved across the document.
func LoadSchemas(data []byte) (map[string]*Model, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("memmodel: unreadable schema document: %w", err)
	}
	if len(doc.Models) == 0 {
		return nil, fmt.Errorf("memmodel: schema document defines no models")
	}

	models := map[string]*Model{}
	for _, md := range doc.Models {
		if md.Name == "" {
			return nil, fmt.Errorf("memmodel: model missing name")
		}
		info, err := md.info()
		if err != nil {
			return nil, err
		}
		models[md.Name] = New(info)
	}

	// Second pass: resolve relation targets across the document.
	for _, md := range doc.Models {
		m := models[md.Name]
		resolve := func(fis []modelbind.FieldInfo, docs []fieldDoc) error {
			for i, fd := range docs {
				target, ok := models[fd.Model]
				if !ok {
					return fmt.Errorf("memmodel: model %s relation %q references unknown model %q", md.Name, fd.Name, fd.Model)
				}
				fis[i].Related = target
			}
			return nil
		}
		if err := resolve(m.info.FK, md.ForeignKeys); err != nil {
			return nil, err
		}
		if err := resolve(m.info.O2O, md.OneToOne); err != nil {
			return nil, err
		}
		if err := resolve(m.info.M2M, md.ManyToMany); err != nil {
			return nil, err
		}
	}
	return models, nil
}

func (md modelDoc) info() (modelbind.ModelInfo, error) {
	info := modelbind.ModelInfo{
		Name:     md.Name,
		Abstract: md.Abstract,
	}
	pk, err := md.PK.info(md.Name)
	if err != nil {
		return info, err
	}
	info.PK = pk
	for _, fd := range md.Fields {
		fi, err := fd.info(md.Name)
		if err != nil {
			return info, err
		}
		info.Data = append(info.Data, fi)
	}
	for _, fd := range md.ForeignKeys {
		fi, err := fd.info(md.Name)
		if err != nil {
			return info, err
		}
		info.FK = append(info.FK, fi)
	}
	for _, fd := range md.OneToOne {
		fi, err := fd.info(md.Name)
		if err != nil {
			return info, err
		}
		info.O2O = append(info.O2O, fi)
	}
	for _, fd := range md.ManyToMany {
		fi, err := fd.info(md.Name)
		if err != nil {
			return info, err
		}
		info.M2M = append(info.M2M, fi)
	}
	return info, nil
}

func (fd fieldDoc) info(model string) (modelbind.FieldInfo, error) {
	if fd.Name == "" {
		return modelbind.FieldInfo{}, fmt.Errorf("memmodel: model %s has a field without a name", model)
	}
	if fd.Type == "" {
		return modelbind.FieldInfo{}, fmt.Errorf("memmodel: model %s field %q is missing a type", model, fd.Name)
	}
	return modelbind.FieldInfo{
		Name:     fd.Name,
		Type:     fd.Type,
		Nullable: fd.Nullable,
		Unique:   fd.Unique,
		Default:  fd.Default,
	}, nil
}
