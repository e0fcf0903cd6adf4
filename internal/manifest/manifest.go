package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/roadstats-cli/internal/utils"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// Manifest records what a site build wrote and what failed.
type Manifest struct {
	RunID       string    `json:"run_id"`
	DataFile    string    `json:"data_file"`
	Rows        int       `json:"rows"`
	StartYear   int       `json:"start_year"`
	EndYear     int       `json:"end_year"`
	Charts      []Entry   `json:"charts"`
	Pages       []Entry   `json:"pages"`
	Workbook    string    `json:"workbook,omitempty"`
	Failures    []Failure `json:"failures,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	// Not serialized: the output directory holding manifest.json
	rootDir string `json:"-"`
}

// Entry is one generated file, relative to the output directory.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Failure is a report that could not be rendered.
type Failure struct {
	Report string `json:"report"`
	Error  string `json:"error"`
}

// New starts a manifest for a build writing into rootDir.
func New(rootDir, dataFile string) *Manifest {
	return &Manifest{
		RunID:    uuid.NewString(),
		DataFile: dataFile,
		rootDir:  rootDir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the output directory.
func (m *Manifest) RootDir() string { return m.rootDir }

// AddChart records a chart. path is a filesystem path; it is stored relative
// to the output directory.
func (m *Manifest) AddChart(name, path string) {
	m.Charts = append(m.Charts, Entry{Name: name, Path: m.rel(path)})
}

// AddPage records an HTML page.
func (m *Manifest) AddPage(name, path string) {
	m.Pages = append(m.Pages, Entry{Name: name, Path: m.rel(path)})
}

// AddFailure records a report that failed.
func (m *Manifest) AddFailure(report string, err error) {
	m.Failures = append(m.Failures, Failure{Report: report, Error: err.Error()})
}

// Save writes manifest.json using atomic write. Pages are sorted by path.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	sort.SliceStable(m.Pages, func(i, j int) bool { return m.Pages[i].Path < m.Pages[j].Path })
	m.GeneratedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, FileName), data)
}

func (m *Manifest) rel(path string) string {
	if m.rootDir == "" {
		return filepath.ToSlash(path)
	}
	root, err := filepath.Abs(m.rootDir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	r, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}
