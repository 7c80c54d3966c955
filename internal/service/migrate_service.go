package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TWRT/wmx-migrator/internal/client"
	"github.com/TWRT/wmx-migrator/internal/models"
	"github.com/TWRT/wmx-migrator/internal/repository"
)

// MigrateService copies diagrams and job templates straight from one
// workflow item to another, without the file round trip. Unlike the archive
// import, deduplication here is by id: the direct path assumes the
// destination was seeded from the source at some point.
type MigrateService struct {
	source       client.WorkflowClient
	dest         client.WorkflowClient
	sourceItemID string
	destItemID   string
	runRepo      *repository.RunRepository
	itemRepo     *repository.ItemResultRepository
	logger       *zap.Logger
}

func NewMigrateService(
	source client.WorkflowClient,
	dest client.WorkflowClient,
	sourceItemID string,
	destItemID string,
	runRepo *repository.RunRepository,
	itemRepo *repository.ItemResultRepository,
	logger *zap.Logger,
) *MigrateService {
	return &MigrateService{
		source:       source,
		dest:         dest,
		sourceItemID: sourceItemID,
		destItemID:   destItemID,
		runRepo:      runRepo,
		itemRepo:     itemRepo,
		logger:       logger,
	}
}

func (s *MigrateService) Run() (*Report, error) {
	runID := uuid.NewString()
	report := newReport(runID)
	rec := &recorder{report: report, items: s.itemRepo}

	if s.runRepo != nil {
		err := s.runRepo.Create(&repository.Run{
			ID:         runID,
			Kind:       repository.RunKindMigrate,
			SourceItem: s.sourceItemID,
			DestItem:   s.destItemID,
			Status:     "running",
		})
		if err != nil {
			return nil, err
		}
	}

	idMap := s.migrateDiagrams(rec)
	s.migrateJobTemplates(rec, idMap)

	if s.runRepo != nil {
		err := s.runRepo.Complete(runID, report.Status(),
			report.Succeeded(), report.Skipped(), report.Failed())
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *MigrateService) migrateDiagrams(rec *recorder) map[string]string {
	idMap := map[string]string{}

	destSummaries, err := s.dest.Diagrams()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepDiagrams, Type: models.ObjectTypeDiagram,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list destination diagrams", Err: err},
		})
		return idMap
	}
	existing := map[string]bool{}
	for _, d := range destSummaries {
		existing[d.ID] = true
	}

	sourceSummaries, err := s.source.Diagrams()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepDiagrams, Type: models.ObjectTypeDiagram,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list source diagrams", Err: err},
		})
		return idMap
	}

	for _, summary := range sourceSummaries {
		if existing[summary.ID] {
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: summary.Name, SourceID: summary.ID, DestID: summary.ID,
				Status: repository.ItemStatusSkipped,
			})
			continue
		}

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

		// The direct path derives the active flag from the
		// version rather than hard-coding it.
		d.Active = d.Version >= 0

		newID, err := s.dest.CreateDiagram(*d)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepDiagrams, Type: models.ObjectTypeDiagram,
				Name: d.Name, SourceID: d.ID,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "create diagram " + d.Name, Err: err},
			})
			continue
		}

		s.logger.Info("migrated diagram",
			zap.String("name", d.Name), zap.String("newId", newID))
		idMap[summary.ID] = newID
		rec.record(ItemOutcome{
			Step: StepDiagrams, Type: models.ObjectTypeDiagram,
			Name: d.Name, SourceID: d.ID, DestID: newID,
			Status: repository.ItemStatusSucceeded,
		})
	}
	return idMap
}

func (s *MigrateService) migrateJobTemplates(rec *recorder, idMap map[string]string) {
	destSummaries, err := s.dest.JobTemplates()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list destination job templates", Err: err},
		})
		return
	}
	existing := map[string]bool{}
	for _, t := range destSummaries {
		existing[t.ID] = true
	}

	sourceSummaries, err := s.source.JobTemplates()
	if err != nil {
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Status: repository.ItemStatusFailed,
			Err:    &RemoteError{Op: "list source job templates", Err: err},
		})
		return
	}

	for _, summary := range sourceSummaries {
		if existing[summary.ID] {
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: summary.Name, SourceID: summary.ID, DestID: summary.ID,
				Status: repository.ItemStatusSkipped,
			})
			continue
		}

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

		if destDiagramID, ok := idMap[t.DiagramID]; ok {
			t.DiagramID = destDiagramID
		} else {
			t.DiagramID = ""
			t.DiagramName = ""
		}

		newID, err := s.dest.CreateJobTemplate(*t, true)
		if err != nil {
			rec.record(ItemOutcome{
				Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
				Name: t.Name, SourceID: summary.ID,
				Status: repository.ItemStatusFailed,
				Err:    &RemoteError{Op: "create job template " + t.Name, Err: err},
			})
			continue
		}

		s.logger.Info("migrated job template",
			zap.String("name", t.Name), zap.String("newId", newID))
		rec.record(ItemOutcome{
			Step: StepJobTemplates, Type: models.ObjectTypeJobTemplate,
			Name: t.Name, SourceID: summary.ID, DestID: newID,
			Status: repository.ItemStatusSucceeded,
		})
	}
}
