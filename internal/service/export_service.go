package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TWRT/wmx-migrator/internal/archive"
	"github.com/TWRT/wmx-migrator/internal/client"
	"github.com/TWRT/wmx-migrator/internal/models"
	"github.com/TWRT/wmx-migrator/internal/repository"
)

// ExportService pulls the configuration of one workflow item and writes it
// into an archive directory, one JSON file per object plus a manifest.
type ExportService struct {
	source       client.WorkflowClient
	archive      *archive.Archive
	sourceItemID string
	runRepo      *repository.RunRepository
	itemRepo     *repository.ItemResultRepository
	logger       *zap.Logger
}

func NewExportService(
	source client.WorkflowClient,
	arc *archive.Archive,
	sourceItemID string,
	runRepo *repository.RunRepository,
	itemRepo *repository.ItemResultRepository,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		source:       source,
		archive:      arc,
		sourceItemID: sourceItemID,
		runRepo:      runRepo,
		itemRepo:     itemRepo,
		logger:       logger,
	}
}

func (s *ExportService) Run() (*Report, error) {
	runID := uuid.NewString()
	report := newReport(runID)
	rec := &recorder{report: report, items: s.itemRepo}

	if s.runRepo != nil {
		err := s.runRepo.Create(&repository.Run{
			ID:         runID,
			Kind:       repository.RunKindExport,
			SourceItem: s.sourceItemID,
			Directory:  s.archive.Dir(),
			Status:     "running",
		})
		if err != nil {
			return nil, err
		}
	}

	manifest := models.Manifest{
		ExportedAt:   time.Now().UTC(),
		SourceItemID: s.sourceItemID,
	}

	s.exportDiagrams(rec, &manifest)
	s.exportJobTemplates(rec, &manifest)
	s.exportEmailNotifications(rec, &manifest)
	s.exportLookups(rec, &manifest)

	if err := s.archive.WriteManifest(manifest); err != nil {
		return report, err
	}

	if s.runRepo != nil {
		err := s.runRepo.Complete(runID, report.Status(),
			report.Succeeded(), report.Skipped(), report.Failed())
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *ExportService) exportDiagrams(rec *recorder, manifest *models.Manifest) {
	summaries, err := s.source.Diagrams()
	if err != nil {
		s.logger.Error("listing source diagrams failed", zap.Error(err))
		rec.record(ItemOutcome{
			Step:   StepDiagrams,
			Type:   models.ObjectTypeDiagram,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list diagrams", Err: err},
		})
		return
	}

	for _, summary := range summaries {
		d, err := s.source.Diagram(summary.ID)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: summary.Name, SourceID: summary.ID,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "get diagram " + summary.ID, Err: err},
			})
			continue
		}

		// Archived diagrams are always marked active so they land
		// importable, matching the Python toolbox export.
		d.Active = true

		file, err := s.archive.WriteDiagram(*d)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: d.Name, SourceID: d.ID,
				Status: repository.ItemStatusFailed,
				Err:    &ArchiveError{File: file, Err: err},
			})
			continue
		}

		manifest.Entries = append(manifest.Entries, models.ManifestEntry{
			Type: models.ObjectTypeDiagram, ID: d.ID, Name: d.Name, File: file,
		})
		s.logger.Info("exported diagram", zap.String("name", d.Name), zap.String("id", d.ID))
		rec.record(ItemOutcome{
			Step: StepDiagrams, Type: models.ObjectTypeDiagram,
			Name: d.Name, SourceID: d.ID,
			Status: repository.ItemStatusSucceeded,
		})
	}
}

func (s *ExportService) exportJobTemplates(rec *recorder, manifest *models.Manifest) {
	summaries, err := s.source.JobTemplates()
	if err != nil {
		s.logger.Error("listing source job templates failed", zap.Error(err))
		rec.record(ItemOutcome{
			Step:   StepJobTemplates,
			Type:   models.ObjectTypeJobTemplate,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list job templates", Err: err},
		})
		return
	}

	for _, summary := range summaries {
		t, err := s.source.JobTemplate(summary.ID)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: summary.Name, SourceID: summary.ID,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "get job template " + summary.ID, Err: err},
			})
			continue
		}

		file, err := s.archive.WriteJobTemplate(*t)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: t.Name, SourceID: t.ID,
				Status: repository.ItemStatusFailed,
				Err:    &ArchiveError{File: file, Err: err},
			})
			continue
		}

		manifest.Entries = append(manifest.Entries, models.ManifestEntry{
			Type: models.ObjectTypeJobTemplate, ID: t.ID, Name: t.Name, File: file,
		})
		s.logger.Info("exported job template", zap.String("name", t.Name), zap.String("id", t.ID))
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Name: t.Name, SourceID: t.ID,
			Status: repository.ItemStatusSucceeded,
		})
	}
}

func (s *ExportService) exportEmailNotifications(rec *recorder, manifest *models.Manifest) {
	settings, err := s.source.Settings()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "get settings", Err: err},
		})
	} else {
		file, werr := s.archive.WriteEmailSettings(models.EmailSettings{Settings: settings})
		if werr != nil {
			rec.record(ItemOutcome{
				Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
				Status: repository.ItemStatusFailed,
				Err:    &ArchiveError{File: file, Err: werr},
			})
		} else {
			manifest.Entries = append(manifest.Entries, models.ManifestEntry{
				Type: models.ObjectTypeEmailSettings, File: file,
			})
			// Exported settings carry placeholder credentials only.
			s.logger.Info("exported email notification settings; update the email password after import")
			rec.record(ItemOutcome{
				Step: StepEmailNotifications, Type: models.ObjectTypeEmailSettings,
				Status: repository.ItemStatusSucceeded,
			})
		}
	}

	templates, err := s.source.EmailTemplates()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list email templates", Err: err},
		})
		return
	}

	file, err := s.archive.WriteEmailTemplates(templates)
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
			Status: repository.ItemStatusFailed,
			Err:    &ArchiveError{File: file, Err: err},
		})
		return
	}

	manifest.Entries = append(manifest.Entries, models.ManifestEntry{
		Type: models.ObjectTypeEmailTemplates, File: file,
	})
	s.logger.Info("exported email templates", zap.Int("count", len(templates)))
	rec.record(ItemOutcome{
		Step: StepEmailNotifications, Type: models.ObjectTypeEmailTemplates,
		Status: repository.ItemStatusSucceeded,
	})
}

func (s *ExportService) exportLookups(rec *recorder, manifest *models.Manifest) {
	lookups, err := s.source.Lookups("status")
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepLookups, Type: models.ObjectTypeLookups,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "get status lookups", Err: err},
		})
		return
	}

	file, err := s.archive.WriteLookups(lookups)
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepLookups, Type: models.ObjectTypeLookups,
			Status: repository.ItemStatusFailed,
			Err:    &ArchiveError{File: file, Err: err},
		})
		return
	}

	manifest.Entries = append(manifest.Entries, models.ManifestEntry{
		Type: models.ObjectTypeLookups, File: file,
	})
	s.logger.Info("exported status lookups", zap.Int("count", len(lookups.Lookups)))
	rec.record(ItemOutcome{
		Step: StepLookups, Type: models.ObjectTypeLookups,
		Status: repository.ItemStatusSucceeded,
	})
}
