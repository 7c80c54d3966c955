package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TWRT/wmx-migrator/internal/archive"
	"github.com/TWRT/wmx-migrator/internal/client"
	"github.com/TWRT/wmx-migrator/internal/models"
	"github.com/TWRT/wmx-migrator/internal/repository"
)

// ImportService replays an archive against a destination workflow item.
// Diagrams and job templates are deduplicated by name, extended-property
// tables by table name. The diagram id map is persisted into the archive so
// job-template import also works in a later process invocation.
type ImportService struct {
	dest       client.WorkflowClient
	archive    *archive.Archive
	destItemID string

	// LegacyTableBranch reproduces the extended-property branch selection
	// of the Python toolbox import, which keys the decision off a single
	// table name instead of the novel subset. Suspect; kept only for
	// byte-for-byte compatible migrations.
	LegacyTableBranch bool

	runRepo  *repository.RunRepository
	itemRepo *repository.ItemResultRepository
	logger   *zap.Logger
}

func NewImportService(
	dest client.WorkflowClient,
	arc *archive.Archive,
	destItemID string,
	runRepo *repository.RunRepository,
	itemRepo *repository.ItemResultRepository,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		dest:       dest,
		archive:    arc,
		destItemID: destItemID,
		runRepo:    runRepo,
		itemRepo:   itemRepo,
		logger:     logger,
	}
}

func (s *ImportService) Run() (*Report, error) {
	runID := uuid.NewString()
	report := newReport(runID)
	rec := &recorder{report: report, items: s.itemRepo}

	if s.runRepo != nil {
		err := s.runRepo.Create(&repository.Run{
			ID:        runID,
			Kind:      repository.RunKindImport,
			DestItem:  s.destItemID,
			Directory: s.archive.Dir(),
			Status:    "running",
		})
		if err != nil {
			return nil, err
		}
	}

	entries, err := s.archive.Entries()
	if err != nil {
		return report, err
	}

	idMap := s.importDiagrams(rec, entries)
	s.importJobTemplates(rec, entries, idMap)
	s.importEmailNotifications(rec, entries)
	s.importLookups(rec, entries)

	if s.runRepo != nil {
		err := s.runRepo.Complete(runID, report.Status(),
			report.Succeeded(), report.Skipped(), report.Failed())
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func entriesOfType(entries []models.ManifestEntry, t models.ObjectType) []models.ManifestEntry {
	var out []models.ManifestEntry
	for _, e := range entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// importDiagrams creates the diagrams missing at the destination and returns
// the source→destination id map. Diagrams that already exist by name still
// get an id map entry, resolved against the matching destination diagram.
func (s *ImportService) importDiagrams(rec *recorder, entries []models.ManifestEntry) map[string]string {
	idMap, err := s.archive.ReadDiagramIDMap()
	if err != nil {
		s.logger.Warn("unreadable diagram id map artifact, starting empty", zap.Error(err))
		idMap = models.DiagramIDMap{Mappings: map[string]string{}}
	}

	diagramEntries := entriesOfType(entries, models.ObjectTypeDiagram)
	if len(diagramEntries) == 0 {
		return idMap.Mappings
	}

	existing := map[string]string{} // destination name -> id
	summaries, err := s.dest.Diagrams()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepDiagrams, Type: models.ObjectTypeDiagram,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list destination diagrams", Err: err},
		})
		return idMap.Mappings
	}
	for _, d := range summaries {
		existing[d.Name] = d.ID
	}

	for _, entry := range diagramEntries {
		d, err := s.archive.ReadDiagram(entry.File)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: entry.Name, SourceID: entry.ID,
				Status: repository.ItemStatusFailed,
				Err:    &ArchiveError{File: entry.File, Err: err},
			})
			continue
		}

		sourceID := d.ID
		if sourceID == "" {
			sourceID = entry.ID
		}

		if destID, ok := existing[d.Name]; ok {
			s.logger.Info("diagram already exists in destination workflow item",
				zap.String("name", d.Name))
			idMap.Mappings[sourceID] = destID
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: d.Name, SourceID: sourceID, DestID: destID,
				Status: repository.ItemStatusSkipped,
			})
			continue
		}

		newID, err := s.dest.CreateDiagram(d)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: d.Name, SourceID: sourceID,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "create diagram " + d.Name, Err: err},
			})
			continue
		}

		s.logger.Info("imported diagram",
			zap.String("name", d.Name), zap.String("newId", newID))
		idMap.Mappings[sourceID] = newID
		rec.record(ItemOutcome{
			Step: StepDiagrams, Type: models.ObjectTypeDiagram,
			Name: d.Name, SourceID: sourceID, DestID: newID,
			Status: repository.ItemStatusSucceeded,
		})
	}

	if err := s.archive.WriteDiagramIDMap(idMap); err != nil {
		s.logger.Warn("writing diagram id map artifact failed", zap.Error(err))
	}
	return idMap.Mappings
}

func (s *ImportService) importJobTemplates(rec *recorder, entries []models.ManifestEntry, idMap map[string]string) {
	templateEntries := entriesOfType(entries, models.ObjectTypeJobTemplate)
	if len(templateEntries) == 0 {
		return
	}

	destTables := map[string]bool{}
	tableNames, err := s.dest.TableDefinitions()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list destination table definitions", Err: err},
		})
		return
	}
	for _, name := range tableNames {
		destTables[name] = true
	}

	existing := map[string]bool{}
	summaries, err := s.dest.JobTemplates()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list destination job templates", Err: err},
		})
		return
	}
	for _, t := range summaries {
		existing[t.Name] = true
	}

	for _, entry := range templateEntries {
		t, err := s.archive.ReadJobTemplate(entry.File)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: entry.Name, SourceID: entry.ID,
				Status: repository.ItemStatusFailed,
				Err:    &ArchiveError{File: entry.File, Err: err},
			})
			continue
		}

		if existing[t.Name] {
			s.logger.Info("job template already exists in destination workflow item",
				zap.String("name", t.Name))
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: t.Name, SourceID: t.ID,
				Status: repository.ItemStatusSkipped,
			})
			continue
		}

		sourceID := t.ID
		if newDiagramID, ok := idMap[t.DiagramID]; ok {
			t.DiagramID = newDiagramID
		} else {
			// No mapped diagram at the destination; create the template
			// without a diagram reference rather than a dangling one.
			t.DiagramID = ""
			t.DiagramName = ""
		}

		newID, err := s.createJobTemplate(t, destTables)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: t.Name, SourceID: sourceID,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "create job template " + t.Name, Err: err},
			})
			continue
		}

		s.logger.Info("imported job template",
			zap.String("name", t.Name), zap.String("newId", newID))
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Name: t.Name, SourceID: sourceID, DestID: newID,
			Status: repository.ItemStatusSucceeded,
		})
	}
}

// createJobTemplate picks the create shape for a template's extended-property
// tables. Default: tables that already exist at the destination are dropped
// individually; the definitions field goes on the wire only when a novel
// table remains. A template with no definitions takes the same shape as one
// whose tables all exist.
func (s *ImportService) createJobTemplate(t models.JobTemplate, destTables map[string]bool) (string, error) {
	if s.LegacyTableBranch {
		return s.createJobTemplateLegacy(t, destTables)
	}

	var novel []models.TableDefinition
	for _, def := range t.ExtendedPropertyTableDefinitions {
		if !destTables[def.TableName()] {
			novel = append(novel, def)
		}
	}

	if len(novel) == 0 {
		t.ExtendedPropertyTableDefinitions = nil
		return s.dest.CreateJobTemplate(t, false)
	}
	t.ExtendedPropertyTableDefinitions = novel
	return s.dest.CreateJobTemplate(t, true)
}

// createJobTemplateLegacy reproduces the Python toolbox import: an empty
// definitions list is sent on the wire as-is, and when definitions exist the
// branch is chosen from the first table name alone, ignoring the rest.
func (s *ImportService) createJobTemplateLegacy(t models.JobTemplate, destTables map[string]bool) (string, error) {
	defs := t.ExtendedPropertyTableDefinitions
	if len(defs) == 0 {
		return s.dest.CreateJobTemplate(t, true)
	}

	s.logger.Warn("legacy extended-property branch selection keys off the first table name only",
		zap.String("template", t.Name), zap.String("table", defs[0].TableName()))
	if !destTables[defs[0].TableName()] {
		return s.dest.CreateJobTemplate(t, true)
	}
	t.ExtendedPropertyTableDefinitions = nil
	return s.dest.CreateJobTemplate(t, false)
}

func (s *ImportService) importEmailNotifications(rec *recorder, entries []models.ManifestEntry) {
	if len(entriesOfType(entries, models.ObjectTypeEmailSettings)) > 0 {
		s.importEmailSettings(rec)
	}
	if len(entriesOfType(entries, models.ObjectTypeEmailTemplates)) > 0 {
		s.importEmailTemplates(rec)
	}
}

// importEmailSettings updates the destination only when it has no settings
// yet; existing settings are never overwritten.
func (s *ImportService) importEmailSettings(rec *recorder) {
	destSettings, err := s.dest.Settings()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "get destination settings", Err: err},
		})
		return
	}
	if len(destSettings) > 0 {
		s.logger.Info("destination already has email notification settings, leaving them untouched")
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
			Status: repository.ItemStatusSkipped,
		})
		return
	}

	settings, err := s.archive.ReadEmailSettings()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
			Status: repository.ItemStatusFailed,
			Err:    &ArchiveError{File: "settings___EmailNotifications.json", Err: err},
		})
		return
	}

	if err := s.dest.UpdateSettings(settings); err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "update settings", Err: err},
		})
		return
	}

	s.logger.Info("imported email notification settings")
	rec.record(ItemOutcome{
		Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
		Status: repository.ItemStatusSucceeded,
	})
}

func (s *ImportService) importEmailTemplates(rec *recorder) {
	existing := map[string]bool{}
	destTemplates, err := s.dest.EmailTemplates()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list destination email templates", Err: err},
		})
		return
	}
	for _, t := range destTemplates {
		existing[t.TemplateName] = true
	}

	templates, err := s.archive.ReadEmailTemplates()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
			Status: repository.ItemStatusFailed,
			Err:    &ArchiveError{File: "EmailTemplate___ALL.json", Err: err},
		})
		return
	}

	for _, t := range templates {
		if existing[t.TemplateName] {
			s.logger.Warn("email template already exists in destination",
				zap.String("name", t.TemplateName))
			rec.record(ItemOutcome{
				Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
				Name:   t.TemplateName,
				Status: repository.ItemStatusSkipped,
			})
			continue
		}

		newID, err := s.dest.CreateEmailTemplate(t)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
				Name:   t.TemplateName,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "create email template " + t.TemplateName, Err: err},
			})
			continue
		}

		s.logger.Info("imported email template",
			zap.String("name", t.TemplateName), zap.String("newId", newID))
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
			Name: t.TemplateName, DestID: newID,
			Status: repository.ItemStatusSucceeded,
		})
	}
}

// importLookups replaces the destination status lookup set with the archived
// one. Pre-existing entries are a warning, not an error, and rerunning with
// the same file leaves the destination unchanged.
func (s *ImportService) importLookups(rec *recorder, entries []models.ManifestEntry) {
	if len(entriesOfType(entries, models.ObjectTypeLookups)) == 0 {
		return
	}

	destLookups, err := s.dest.Lookups("status")
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepLookups, Type: models.ObjectTypeLookups,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "get destination status lookups", Err: err},
		})
		return
	}
	if len(destLookups.Lookups) > 0 {
		names := make([]string, 0, len(destLookups.Lookups))
		for _, l := range destLookups.Lookups {
			names = append(names, l.LookupName())
		}
		s.logger.Warn("destination status lookups will be replaced",
			zap.Strings("existing", names))
	}

	imported, err := s.archive.ReadLookups()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepLookups, Type: models.ObjectTypeLookups,
			Status: repository.ItemStatusFailed,
			Err:    &ArchiveError{File: "lookups___status.json", Err: err},
		})
		return
	}

	if err := s.dest.CreateLookup("status", imported.Lookups); err != nil {
		rec.record(ItemOutcome{
			Step: StepLookups, Type: models.ObjectTypeLookups,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "replace status lookups", Err: err},
		})
		return
	}

	s.logger.Info("imported status lookups", zap.Int("count", len(imported.Lookups)))
	rec.record(ItemOutcome{
		Step: StepLookups, Type: models.ObjectTypeLookups,
		Status: repository.ItemStatusSucceeded,
	})
}
