package projecttree

const (
	srcDirName        = "src"
	componentsDirName = "components"
	stylesDirName     = "styles"
)

const packageJSON = `{
  "name": "generated-app",
  "private": true,
  "version": "0.0.1",
  "type": "module",
  "scripts": {
    "dev": "vite",
    "build": "vite build",
    "preview": "vite preview"
  },
  "dependencies": {
    "react": "^18.2.0",
    "react-dom": "^18.2.0"
  },
  "devDependencies": {
    "@vitejs/plugin-react": "^4.2.0",
    "vite": "^5.0.0"
  }
}
`

const viteConfigJS = `import { defineConfig } from 'vite'
import react from '@vitejs/plugin-react'

export default defineConfig({
  plugins: [react()],
})
`

const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>Generated App</title>
  </head>
  <body>
    <div id="root"></div>
    <script type="module" src="/src/main.jsx"></script>
  </body>
</html>
`

// New returns the fixed project skeleton: manifest, build config, HTML
// entry point, and the reserved src/components and src/styles subtrees.
// Generated content is merged in later; the skeleton itself never
// changes.
func New() *Tree {
	src := NewDirectory()
	src.Set(componentsDirName, &Node{Directory: NewDirectory()})
	src.Set(stylesDirName, &Node{Directory: NewDirectory()})

	root := NewDirectory()
	root.SetFile("package.json", packageJSON)
	root.SetFile("vite.config.js", viteConfigJS)
	root.SetFile("index.html", indexHTML)
	root.Set(srcDirName, &Node{Directory: src})

	return &Tree{Root: root}
}

// Merge inserts a generation payload into the tree: components under
// src/components, styles under src/styles, pages directly under src.
// Re-merging a filename replaces its contents in place; a missing
// payload section is skipped. Filenames within a section are applied in
// sorted order so repeated merges produce identical trees.
func (t *Tree) Merge(p Payload) {
	src := t.ensureDir(t.Root, srcDirName)
	components := t.ensureDir(src, componentsDirName)
	styles := t.ensureDir(src, stylesDirName)

	for _, name := range sortedKeys(p.Components) {
		components.SetFile(name, p.Components[name])
	}
	for _, name := range sortedKeys(p.Styles) {
		styles.SetFile(name, p.Styles[name])
	}
	for _, name := range sortedKeys(p.Pages) {
		src.SetFile(name, p.Pages[name])
	}
}

// ensureDir resolves a child directory, recreating it if a prior merge
// or malformed input clobbered the reserved subtree.
func (t *Tree) ensureDir(parent *Directory, name string) *Directory {
	if node, ok := parent.Get(name); ok && node.Directory != nil {
		return node.Directory
	}
	dir := NewDirectory()
	parent.Set(name, &Node{Directory: dir})
	return dir
}
