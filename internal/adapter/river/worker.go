package river

import (
	"context"

	"github.com/riverqueue/river"
	"github.com/sirupsen/logrus"
)

// ChangeWorker consumes change jobs. It records them in the log; delivery to
// notification channels plugs in here.
type ChangeWorker struct {
	river.WorkerDefaults[ChangeJobArgs]
	log logrus.FieldLogger
}

// NewChangeWorker creates a worker that logs through log.
func NewChangeWorker(log logrus.FieldLogger) *ChangeWorker {
	return &ChangeWorker{log: log}
}

func (w *ChangeWorker) Work(_ context.Context, job *river.Job[ChangeJobArgs]) error {
	w.log.WithFields(logrus.Fields{
		"change":    job.Args.Change,
		"entity_id": job.Args.EntityID,
		"event_id":  job.Args.EventID,
		"status":    job.Args.Status,
		"job_id":    job.ID,
		"attempt":   job.Attempt,
	}).Info("processing change")
	return nil
}
