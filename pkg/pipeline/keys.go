package pipeline

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Artifact key layout. Everything under WorkPrefix(jobID) is transient and
// swept after the job finishes; output keys live outside the work prefix and
// survive cleanup.
const (
	workRoot   = "excel-work"
	outputRoot = "translated"
)

// WorkPrefix returns the storage prefix holding every transient artifact for
// a job.
func WorkPrefix(jobID string) string {
	return workRoot + "/" + jobID + "/"
}

func batchKey(jobID string, batchID int) string {
	return fmt.Sprintf("%sbatch_%d.json", WorkPrefix(jobID), batchID)
}

func translationKey(jobID string, batchID int) string {
	return fmt.Sprintf("%stranslation_%d.json", WorkPrefix(jobID), batchID)
}

func workDataKey(jobID string) string {
	return WorkPrefix(jobID) + "work_data.json"
}

// OutputKey derives the translated document's storage key from the source
// document's key. A random path segment keeps repeated runs against the same
// source from overwriting each other.
func OutputKey(documentKey string) string {
	base := path.Base(documentKey)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s/%s/%s_translated%s", outputRoot, uuid.NewString(), name, ext)
}
