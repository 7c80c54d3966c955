package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/TWRT/wmx-migrator/internal/models"
)

// Filename conventions of the Python toolbox scripts. The import side of
// older exports has nothing but these to go on, so they are kept verbatim
// alongside the manifest.
const (
	diagramPrefix  = "Diagram___"
	templatePrefix = "Template___"

	settingsFile       = "settings___EmailNotifications.json"
	emailTemplatesFile = "EmailTemplate___ALL.json"
	lookupsFile        = "lookups___status.json"

	manifestFile = "manifest.json"
	idMapFile    = "diagram_id_map.json"
)

// ErrNoManifest is returned by ReadManifest when the directory was produced
// by an export that predates manifests.
var ErrNoManifest = errors.New("archive: no manifest in directory")

// Archive is one export directory: per-object JSON files, the fixed-name
// notification and lookup files, the manifest and the diagram id map.
type Archive struct {
	dir string
}

// Open creates the directory if it does not exist yet.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory %s: %w", dir, err)
	}
	return &Archive{dir: dir}, nil
}

func (a *Archive) Dir() string {
	return a.dir
}

func (a *Archive) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(a.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (a *Archive) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(a.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (a *Archive) WriteDiagram(d models.Diagram) (string, error) {
	name := diagramPrefix + d.ID + ".json"
	return name, a.writeJSON(name, d)
}

func (a *Archive) ReadDiagram(file string) (models.Diagram, error) {
	var d models.Diagram
	err := a.readJSON(file, &d)
	return d, err
}

func (a *Archive) WriteJobTemplate(t models.JobTemplate) (string, error) {
	name := templatePrefix + t.ID + ".json"
	return name, a.writeJSON(name, t)
}

func (a *Archive) ReadJobTemplate(file string) (models.JobTemplate, error) {
	var t models.JobTemplate
	err := a.readJSON(file, &t)
	return t, err
}

func (a *Archive) WriteEmailSettings(s models.EmailSettings) (string, error) {
	return settingsFile, a.writeJSON(settingsFile, s)
}

func (a *Archive) ReadEmailSettings() (models.EmailSettings, error) {
	var s models.EmailSettings
	err := a.readJSON(settingsFile, &s)
	return s, err
}

func (a *Archive) WriteEmailTemplates(templates []models.EmailTemplate) (string, error) {
	return emailTemplatesFile, a.writeJSON(emailTemplatesFile, templates)
}

func (a *Archive) ReadEmailTemplates() ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	err := a.readJSON(emailTemplatesFile, &templates)
	return templates, err
}

func (a *Archive) WriteLookups(l models.LookupTable) (string, error) {
	return lookupsFile, a.writeJSON(lookupsFile, l)
}

func (a *Archive) ReadLookups() (models.LookupTable, error) {
	var l models.LookupTable
	err := a.readJSON(lookupsFile, &l)
	return l, err
}

func (a *Archive) WriteManifest(m models.Manifest) error {
	return a.writeJSON(manifestFile, m)
}

func (a *Archive) ReadManifest() (models.Manifest, error) {
	var m models.Manifest
	if _, err := os.Stat(filepath.Join(a.dir, manifestFile)); errors.Is(err, fs.ErrNotExist) {
		return m, ErrNoManifest
	}
	err := a.readJSON(manifestFile, &m)
	return m, err
}

func (a *Archive) WriteDiagramIDMap(m models.DiagramIDMap) error {
	return a.writeJSON(idMapFile, m)
}

func (a *Archive) ReadDiagramIDMap() (models.DiagramIDMap, error) {
	var m models.DiagramIDMap
	if _, err := os.Stat(filepath.Join(a.dir, idMapFile)); errors.Is(err, fs.ErrNotExist) {
		return models.DiagramIDMap{Mappings: map[string]string{}}, nil
	}
	err := a.readJSON(idMapFile, &m)
	if m.Mappings == nil {
		m.Mappings = map[string]string{}
	}
	return m, err
}

// Entries lists the objects in the archive, preferring the manifest and
// falling back to the legacy filename classification for directories written
// by the Python toolbox scripts.
func (a *Archive) Entries() ([]models.ManifestEntry, error) {
	m, err := a.ReadManifest()
	if err == nil {
		return m.Entries, nil
	}
	if !errors.Is(err, ErrNoManifest) {
		return nil, err
	}
	return a.classifyByFilename()
}

// classifyByFilename reproduces the import classification of the Python
// toolbox: the fixed names select the notification and lookup files, a
// "Template_" substring selects job templates, everything else is a diagram.
func (a *Archive) classifyByFilename() ([]models.ManifestEntry, error) {
	files, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("list archive directory %s: %w", a.dir, err)
	}

	var entries []models.ManifestEntry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		switch {
		case name == manifestFile || name == idMapFile:
			continue
		case name == settingsFile:
			entries = append(entries, models.ManifestEntry{Type: models.ObjectTypeEmailSettings, File: name})
		case name == emailTemplatesFile:
			entries = append(entries, models.ManifestEntry{Type: models.ObjectTypeEmailTemplates, File: name})
		case name == lookupsFile:
			entries = append(entries, models.ManifestEntry{Type: models.ObjectTypeLookups, File: name})
		case strings.Contains(name, "Template_"):
			entries = append(entries, models.ManifestEntry{
				Type: models.ObjectTypeJobTemplate,
				ID:   idFromFilename(name),
				File: name,
			})
		default:
			entries = append(entries, models.ManifestEntry{
				Type: models.ObjectTypeDiagram,
				ID:   idFromFilename(name),
				File: name,
			})
		}
	}
	return entries, nil
}

// idFromFilename recovers the object id from a Type___id.json filename.
func idFromFilename(name string) string {
	_, after, found := strings.Cut(name, "___")
	if !found {
		return ""
	}
	return strings.TrimSuffix(after, ".json")
}
