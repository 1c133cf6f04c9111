package templates

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/oops"
	"git.handmade.network/hmn/pngscope/src/utils"
	"github.com/Masterminds/sprig"
)

//go:embed src
var embeddedTemplateFs embed.FS
var embeddedTemplates map[string]*template.Template

func getTemplatesFromFS(templateFS fs.ReadDirFS) (map[string]*template.Template, map[string]error) {
	templates := make(map[string]*template.Template)
	errs := make(map[string]error)

	files := utils.Must1(templateFS.ReadDir("src"))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}
		t := template.New(f.Name())
		t = t.Funcs(sprig.TxtFuncMap())
		t = t.Funcs(PNGTemplateFuncs)
		t, err := t.ParseFS(templateFS,
			"src/include/*",
			"src/"+f.Name(),
		)
		if err != nil {
			errs[f.Name()] = err
			continue
		}
		templates[f.Name()] = t
	}

	return templates, errs
}

func init() {
	var errs map[string]error
	type errEntry struct {
		name string
		err  error
	}

	embeddedTemplates, errs = getTemplatesFromFS(embeddedTemplateFs)
	if len(errs) > 0 {
		var errsList []errEntry
		for filename, err := range errs {
			errsList = append(errsList, errEntry{filename, err})
		}
		sort.Slice(errsList, func(i, j int) bool {
			return strings.Compare(errsList[i].name, errsList[j].name) < 0
		})
		for _, err := range errsList {
			logging.Error().Str("filename", err.name).Err(err.err).Msg("Failed to parse template")
		}
		panic("Failed to parse templates; see above")
	}
}

func GetTemplate(name string) *template.Template {
	template, hasTemplate := embeddedTemplates[name]
	if !hasTemplate {
		panic(oops.New(nil, "Template not found: %s", name))
	}
	return template
}

// Render executes the named template into w.
func Render(w io.Writer, name string, data any) error {
	if err := GetTemplate(name).Execute(w, data); err != nil {
		return oops.New(err, "failed to render %s", name)
	}
	return nil
}

var PNGTemplateFuncs = template.FuncMap{
	"hex32": func(v uint32) string {
		return fmt.Sprintf("%08x", v)
	},
	"rule": func(char string, n int) string {
		return strings.Repeat(char, n)
	},
	"chunkGrid": func(types []string, perLine int) []string {
		var lines []string
		var line strings.Builder
		for i, t := range types {
			fmt.Fprintf(&line, "%5d: %s", i, t)
			if (i+1)%perLine == 0 {
				lines = append(lines, line.String())
				line.Reset()
			}
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
		return lines
	},
}
