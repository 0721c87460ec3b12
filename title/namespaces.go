package title

// defaultNamespaces is the stock MediaWiki namespace set with English names.
// Sites override it with their siteinfo tables.
var defaultNamespaces = []Namespace{
	{ID: -2, Name: "Media"},
	{ID: -1, Name: "Special"},
	{ID: 0, Name: ""},
	{ID: 1, Name: "Talk"},
	{ID: 2, Name: "User"},
	{ID: 3, Name: "User talk"},
	{ID: 4, Name: "Project"},
	{ID: 5, Name: "Project talk"},
	{ID: 6, Name: "File", Aliases: []string{"Image"}},
	{ID: 7, Name: "File talk", Aliases: []string{"Image talk"}},
	{ID: 8, Name: "MediaWiki"},
	{ID: 9, Name: "MediaWiki talk"},
	{ID: 10, Name: "Template"},
	{ID: 11, Name: "Template talk"},
	{ID: 12, Name: "Help"},
	{ID: 13, Name: "Help talk"},
	{ID: 14, Name: "Category"},
	{ID: 15, Name: "Category talk"},
}
