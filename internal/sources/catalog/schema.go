package catalog

// Config is the top-level structure of a catalog file. Like the Homepage
// layout it uses dynamic keys: a list of single-key maps from category to
// a list of single-key maps from service name to its properties.
type Config []map[string][]map[string]Entry

// Entry contains the properties of one catalog service.
type Entry struct {
	ID          string `yaml:"id,omitempty"`
	Website     string `yaml:"website"`
	Description string `yaml:"description,omitempty"`
}
