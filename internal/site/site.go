// Package site writes the static HTML pages that embed the rendered charts.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/roadstats-cli/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Layout of the output directory.
const (
	AutoDir   = "auto"
	ChartsDir = "charts"
	DataDir   = "data"
	IndexFile = "index.html"
)

// KeyStats are shown on the index page.
var KeyStats = []string{
	"19,768,518 estimated number of vehicles",
	"238,499 million kilometres travelled, an average of 12.1 thousand kilometres per vehicle",
	"33,019 megalitres of fuel consumed",
	"223,949 million tonne-kilometres of freight moved",
}

// Options describe one site build.
type Options struct {
	OutDir string
	Title  string
	Groups [][]string
	// Start and End are the compared years named in captions.
	Start, End int
	// First and Last bound the cleaned data.
	First, Last int
	// Ext is the chart image extension without the dot.
	Ext string
	// DataFile and Workbook are links relative to OutDir; Workbook may be empty.
	DataFile string
	Workbook string
}

// Page is one group page.
type Page struct {
	Name   string
	Fields []string
	// Path is relative to the output directory, slash separated.
	Path  string
	Label string
}

// Builder renders pages from parsed templates.
type Builder struct {
	opt  Options
	tmpl *template.Template
}

// New parses the templates once.
func New(opt Options) (*Builder, error) {
	if opt.OutDir == "" {
		return nil, errors.New("output directory not set")
	}
	if len(opt.Groups) == 0 {
		return nil, errors.New("no page groups configured")
	}
	if opt.Ext == "" {
		opt.Ext = "jpg"
	}
	caser := cases.Title(language.English)
	funcs := template.FuncMap{
		"title": func(s string) string { return caser.String(strings.ReplaceAll(s, "_", " ")) },
	}
	tmpl, err := template.New("site").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Builder{opt: opt, tmpl: tmpl}, nil
}

// PageName joins a group's fields into its file stem.
func PageName(fields []string) string { return strings.Join(fields, "_") }

// Pages lists the group pages in configuration order.
func (b *Builder) Pages() []Page {
	out := make([]Page, len(b.opt.Groups))
	for i, g := range b.opt.Groups {
		name := PageName(g)
		out[i] = Page{
			Name:   name,
			Fields: append([]string(nil), g...),
			Path:   path.Join(AutoDir, name+".html"),
			Label:  strings.Join(g, ", "),
		}
	}
	return out
}

type pageData struct {
	Title    string
	Root     string
	Pages    []Page
	DataFile string
	Workbook string

	// group pages
	Fields    []string
	ChartsDir string
	Ext       string
	Start     int
	End       int

	// index
	KeyStats    []string
	First, Last int
}

func (b *Builder) base(root string) pageData {
	return pageData{
		Title:    b.opt.Title,
		Root:     root,
		Pages:    b.Pages(),
		DataFile: b.opt.DataFile,
		Workbook: b.opt.Workbook,
	}
}

// WriteGroupPages writes <out>/auto/<group>.html for every group and
// returns the written paths.
func (b *Builder) WriteGroupPages() ([]string, error) {
	dir := filepath.Join(b.opt.OutDir, AutoDir)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	var written []string
	for _, p := range b.Pages() {
		data := b.base("../")
		data.Fields = p.Fields
		data.ChartsDir = ChartsDir
		data.Ext = b.opt.Ext
		data.Start, data.End = b.opt.Start, b.opt.End

		out := filepath.Join(b.opt.OutDir, filepath.FromSlash(p.Path))
		if err := b.write(out, "group", data); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

// WriteIndex writes <out>/index.html and returns its path.
func (b *Builder) WriteIndex() (string, error) {
	if err := utils.EnsureDir(b.opt.OutDir); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}
	data := b.base("")
	data.KeyStats = KeyStats
	data.First, data.Last = b.opt.First, b.opt.Last
	out := filepath.Join(b.opt.OutDir, IndexFile)
	return out, b.write(out, "index", data)
}

func (b *Builder) write(out, name string, data pageData) error {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(out), err)
	}
	return utils.SafeWriteFile(out, buf.Bytes())
}
