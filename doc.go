/*
Package itemtree keeps an ordered tree of named items in sync with a DOM-like view.

Every item owns an element of the view. Adding, inserting, replacing or removing an item
moves the element with it, so the tree and the view always show the same children in the
same order. Queries run against the view with CSS selectors and resolve back to items.

# Concept

Items live in pkg/tree. Each node keeps its children in an insertion ordered map keyed by id
and a back-reference to its parent. The view is reached only through the ports.View interface,
so the same tree drives an in-memory HTML document (pkg/adapters/memory) or a live browser
page (pkg/adapters/rod).

Named trees are served from a workspace (pkg/workspace), which serializes access per tree and
can take a Redis lock when several processes share one view. The workspace is exposed over
HTTP (pkg/adapters/http) and MCP (pkg/adapters/mcp).

# Usage

	doc := memory.NewDocument()
	root, err := tree.NewWidget(doc, "player")
	if err != nil {
		log.Fatal(err)
	}
	menu, _ := tree.NewOptions(doc, "menu")
	if _, err := root.Add(menu); err != nil {
		log.Fatal(err)
	}
	found, _ := root.FindOne(".user-widget-options")
	fmt.Println(found.ID()) // menu

Layouts describe whole trees declaratively and can be rendered without any server:

	spec, err := layout.Load("panel.yaml")
	if err != nil {
		log.Fatal(err)
	}
	html, err := itemtree.Render(spec)
*/
package itemtree
