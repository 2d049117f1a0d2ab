package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var fileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// File is one migration with its up and down scripts
type File struct {
	Version uint
	Name    string
	HasDown bool
}

// List returns the migrations in fsys ordered by version. Files that do not
// follow the NNNNNN_name.up|down.sql convention are ignored.
func List(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	byVersion := map[uint]*File{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		f, ok := byVersion[uint(v)]
		if !ok {
			f = &File{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = f
		}
		if m[3] == "down" {
			f.HasDown = true
		}
	}
	out := make([]File, 0, len(byVersion))
	for _, f := range byVersion {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Versions lists the migration versions in fsys in ascending order
func Versions(fsys fs.FS) ([]uint, error) {
	files, err := List(fsys)
	if err != nil {
		return nil, err
	}
	versions := make([]uint, len(files))
	for i, f := range files {
		versions[i] = f.Version
	}
	return versions, nil
}

const upTemplate = `-- {{.Name}}
-- Created: {{.Created}}

`

const downTemplate = `-- Rollback of {{.Name}}

`

// Create writes an empty up/down pair numbered after the newest migration in dir
func Create(dir, name string) (File, []string, error) {
	slug := Slug(name)
	if slug == "" {
		return File{}, nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return File{}, nil, fmt.Errorf("create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return File{}, nil, err
	}
	next := uint(1)
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	f := File{Version: next, Name: slug, HasDown: true}
	base := fmt.Sprintf("%06d_%s", next, slug)
	data := map[string]string{"Name": name, "Created": time.Now().Format(time.RFC3339)}
	paths := []string{
		filepath.Join(dir, base+".up.sql"),
		filepath.Join(dir, base+".down.sql"),
	}
	for i, tmpl := range []string{upTemplate, downTemplate} {
		if err := writeTemplate(paths[i], tmpl, data); err != nil {
			for _, p := range paths[:i] {
				_ = os.Remove(p)
			}
			return File{}, nil, err
		}
	}
	return f, paths, nil
}

// Slug lowercases name and joins its alphanumeric runs with underscores
func Slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

func writeTemplate(path, text string, data any) error {
	tmpl := template.Must(template.New(filepath.Base(path)).Parse(text))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}
