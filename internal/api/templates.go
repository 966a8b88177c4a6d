package api

import (
	"html/template"
	"io/fs"
)

// LoadTemplates parses the layouts and pages found in fsys. Pages define
// themselves under their path, e.g. "pages/study.html".
func LoadTemplates(fsys fs.FS) (*template.Template, error) {
	funcs := template.FuncMap{
		"plural": func(n int, singular, plural string) string {
			if n == 1 {
				return singular
			}
			return plural
		},
	}

	t := template.New("base").Funcs(funcs)

	patterns := []string{
		"layouts/*.html",
		"pages/*.html",
	}
	for _, p := range patterns {
		if matches, _ := fs.Glob(fsys, p); len(matches) == 0 {
			continue
		}
		if _, err := t.ParseFS(fsys, p); err != nil {
			return nil, err
		}
	}

	return t, nil
}
