// Package blocktype provides block-type templates and their data adapters.
//
// The editor core never interprets a block's type string. Everything that
// depends on the kind of block (its size, its connectors, the form fields
// shown inside it and how those fields map to the block's data payload) is
// looked up here by type key.
//
// # Templates
//
// A [Template] is decoded from a TOML descriptor:
//
//	type   = "calculator"
//	label  = "Calculator"
//	width  = 180
//	height = 60
//
//	[[fields]]
//	name    = "expression"
//	kind    = "text"
//	default = ""
//
// Descriptors come from a [Source]. Built-in descriptors are embedded in
// the binary ([EmbeddedSource]); users can add their own in a directory
// ([DirSource]) or serve them from a template server ([HTTPSource]).
// [CachedSource] keeps fetched descriptors in a [cache.Cache] and
// [ChainSource] combines several sources.
//
// # Adapters
//
// An [Adapter] moves data between a block's payload and its rendered
// element. The default [FieldAdapter] is driven by the template's field
// list, so new block types need no code. A [Registry] can override the
// adapter of a type with [Registry.Register].
package blocktype
