/*
Package dsl provides a Go DSL for programmatically constructing itemtree layouts.

It describes a tree with a fluent builder instead of a YAML or JSON file. Items are added
flat by id and attached with In, in any order; Build assembles them into one tree, keeping
the order of the Add calls among siblings. Ids are unique across the whole builder.

Example usage:

	b := dsl.New()

	b.Add("player").Widget()
	b.Add("menu").Options().In("player")
	b.Add("title").Tag("h2").Class("heading").In("player")
	b.Add("icon").Tag("svg").Namespace(domain.NamespaceSVG).In("title")

	root, err := b.Build(memory.NewDocument())
*/
package dsl
