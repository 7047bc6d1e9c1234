package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeFindDeadFiles() string {
	return `Finds JavaScript source files that no entry point reaches through require(), import or export-from.

USE WHEN:
- Cleaning up a project before a release
- Checking whether a file is safe to delete
- Auditing leftovers after a refactor

INTERPRETING RESULTS:
- dead_files: candidate files never reached from any entry point
- dynamic_references: require() calls with a computed argument; the target is unknown,
  so files listed as dead may still be loaded at runtime
- unresolved_dependencies: specifiers that mapped to no file (missing modules or typos)
- unparsed_dependencies: reached files that could not be read or parsed
- ignored_dependencies: reached files that match an ignore glob

Entry points default to the project's package.json "deadcode" settings or its "main" field.`
}

func describeDependencyGraph() string {
	return `Draws the module graph reachable from the entry points as a Mermaid flowchart.

USE WHEN:
- Explaining how entry points pull in the rest of a project
- Locating the import chain that keeps a file alive

INTERPRETING RESULTS:
- Each arrow is one resolved require(), import or export-from reference
- Nodes styled as "dead" are candidate files that nothing reaches
- Large projects are truncated to the first 100 modules in discovery order`
}
