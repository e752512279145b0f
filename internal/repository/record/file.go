package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/sunrise-deploy/internal/config"
	domain "github.com/oshokin/sunrise-deploy/internal/domain/deploy"
)

// Repository defines persistence operations for the last deployment record.
type Repository interface {
	Load(ctx context.Context) (*domain.Record, error)
	Save(ctx context.Context, rec *domain.Record) error
}

// FileRepository persists the deployment record to a YAML file on disk,
// matching the format of the rest of the tool's on-disk artifacts.
type FileRepository struct {
	// path is the filesystem location of the YAML record file.
	path string
	// mu protects concurrent access to the record file.
	mu sync.Mutex
}

// ErrNotFound is returned when no deployment has been recorded yet.
var ErrNotFound = errors.New("deployment record not found")

// DefaultRecordFilename is the record file kept inside the project directory.
const DefaultRecordFilename = "sunrise-deploy-last-run.yaml"

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the record from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read record file: %w", err)
	}

	var stored storedRecord
	if err = yaml.Unmarshal(contents, &stored); err != nil {
		return nil, fmt.Errorf("decode record file: %w", err)
	}

	return fromStored(&stored), nil
}

// Save writes the record to disk using YAML representation.
func (r *FileRepository) Save(_ context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(toStored(rec))
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}

	return nil
}

// storedRecord is the YAML shape of a deployment record.
type storedRecord struct {
	Timestamp             time.Time    `yaml:"timestamp"`
	Actor                 *storedActor `yaml:"actor,omitempty"`
	Branch                string       `yaml:"branch"`
	Head                  string       `yaml:"head"`
	CodeUpdated           bool         `yaml:"code_updated"`
	DependenciesInstalled bool         `yaml:"dependencies_installed"`
	Succeeded             bool         `yaml:"succeeded"`
	Failure               string       `yaml:"failure,omitempty"`
}

// storedActor is the YAML shape of the actor who deployed.
type storedActor struct {
	Hostname string `yaml:"hostname"`
	Username string `yaml:"username"`
}

// fromStored converts the YAML shape into the domain Record model.
func fromStored(stored *storedRecord) *domain.Record {
	var actor *domain.Actor
	if stored.Actor != nil {
		actor = &domain.Actor{
			Hostname: stored.Actor.Hostname,
			Username: stored.Actor.Username,
		}
	}

	return &domain.Record{
		Timestamp:             stored.Timestamp,
		Actor:                 actor,
		Branch:                stored.Branch,
		Head:                  stored.Head,
		CodeUpdated:           stored.CodeUpdated,
		DependenciesInstalled: stored.DependenciesInstalled,
		Succeeded:             stored.Succeeded,
		Failure:               stored.Failure,
	}
}

// toStored converts the domain Record model into its YAML shape.
func toStored(rec *domain.Record) *storedRecord {
	var actor *storedActor
	if rec.Actor != nil {
		actor = &storedActor{
			Hostname: rec.Actor.Hostname,
			Username: rec.Actor.Username,
		}
	}

	return &storedRecord{
		Timestamp:             rec.Timestamp,
		Actor:                 actor,
		Branch:                rec.Branch,
		Head:                  rec.Head,
		CodeUpdated:           rec.CodeUpdated,
		DependenciesInstalled: rec.DependenciesInstalled,
		Succeeded:             rec.Succeeded,
		Failure:               rec.Failure,
	}
}
