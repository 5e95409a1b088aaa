package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/PlateCut/internal/model"
)

// SavedJob is one packing run saved to disk: the request that defines
// it, plus an optional result snapshot taken when the job was packed.
// The snapshot is a convenience for re-printing paperwork; re-running
// the request always reproduces it.
type SavedJob struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Request   model.PackRequest `json:"request"`
	Result    *model.PackResult `json:"result,omitempty"`
}

// NewSavedJob creates a job with a generated ID and current timestamps.
func NewSavedJob(name string, request model.PackRequest, result *model.PackResult) SavedJob {
	now := time.Now().UTC().Format(time.RFC3339)
	return SavedJob{
		ID:        uuid.New().String()[:8],
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Request:   request,
		Result:    result,
	}
}

// DefaultJobsDir returns the directory saved jobs live in,
// ~/.platecut/jobs.
func DefaultJobsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".platecut", "jobs"), nil
}

// JobPath returns the file path a job is stored at within dir.
func JobPath(dir string, job SavedJob) string {
	return filepath.Join(dir, job.ID+".json")
}

// SaveJob writes a job to <dir>/<id>.json, creating the directory if
// needed, and refreshes the job's UpdatedAt stamp.
func SaveJob(dir string, job SavedJob) (string, error) {
	if job.ID == "" {
		return "", errors.New("job has no ID")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", err
	}
	path := JobPath(dir, job)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// LoadJob reads one saved job from a file.
func LoadJob(path string) (SavedJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SavedJob{}, err
	}
	var job SavedJob
	if err := json.Unmarshal(data, &job); err != nil {
		return SavedJob{}, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	if job.ID == "" {
		return SavedJob{}, fmt.Errorf("job file %s has no ID", path)
	}
	return job, nil
}

// ListJobs loads every job in dir, newest first. Files that fail to
// parse are skipped; a missing directory yields an empty list.
func ListJobs(dir string) ([]SavedJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var jobs []SavedJob
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		job, err := LoadJob(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt != jobs[j].CreatedAt {
			return jobs[i].CreatedAt > jobs[j].CreatedAt
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs, nil
}

// DeleteJob removes a saved job's file from dir.
func DeleteJob(dir string, id string) error {
	if id == "" {
		return errors.New("job has no ID")
	}
	return os.Remove(filepath.Join(dir, id+".json"))
}
