package sync

import "sort"

// State records what one database sync wrote during this run. Cleanup
// deletes whatever exists under Root but is not recorded here.
type State struct {
	Root string

	tables map[string]map[string]struct{}

	SchemasSynced int
	TablesSynced  int
}

func NewState(root string) *State {
	return &State{Root: root, tables: map[string]map[string]struct{}{}}
}

// AddSchema records a schema, even one that ends up with no tables.
func (s *State) AddSchema(schema string) {
	if _, ok := s.tables[schema]; ok {
		return
	}
	s.tables[schema] = map[string]struct{}{}
	s.SchemasSynced++
}

// AddTable records a table and, implicitly, its schema.
func (s *State) AddTable(schema, table string) {
	s.AddSchema(schema)
	if _, ok := s.tables[schema][table]; ok {
		return
	}
	s.tables[schema][table] = struct{}{}
	s.TablesSynced++
}

func (s *State) HasSchema(schema string) bool {
	_, ok := s.tables[schema]
	return ok
}

func (s *State) HasTable(schema, table string) bool {
	_, ok := s.tables[schema][table]
	return ok
}

// Schemas returns the recorded schema names, sorted.
func (s *State) Schemas() []string {
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tables returns the recorded tables of schema, sorted.
func (s *State) Tables(schema string) []string {
	out := make([]string, 0, len(s.tables[schema]))
	for name := range s.tables[schema] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge folds other into s. Both must describe the same Root.
func (s *State) Merge(other *State) {
	for schema, tables := range other.tables {
		s.AddSchema(schema)
		for table := range tables {
			s.AddTable(schema, table)
		}
	}
}
