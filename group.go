package options

// Group designates a set of options displayed under a common heading in
// help output. Options join a group through the InGroup setting:
//
//	dbOpts := options.NewGroup("Database Options", "", 0)
//
//	options.Attributes(&Server{}, options.Decls{
//		"DBURL": {options.Set("--db",
//			options.Type(options.String),
//			options.Metavar("URL"),
//			options.Describe("Database URL"),
//			options.InGroup(dbOpts),
//		)},
//	})
//
// The sort key determines the relative order of group headings (lower keys
// first). Groups with the same sort key appear in the order they were
// created. The description, if any, is printed under the heading and
// before the group's options.
type Group struct {
	Title       string
	Description string
	SortKey     int

	seq uint64
}

// NewGroup creates a group heading with the given title, optional
// description and sort key.
func NewGroup(title, description string, sortKey int) *Group {
	return &Group{
		Title:       title,
		Description: description,
		SortKey:     sortKey,
		seq:         nextSeq(),
	}
}
