package deploy

import (
	"fmt"
	"os"
	"os/user"
	"time"
)

// Actor identifies who performed a deployment.
type Actor struct {
	// Hostname is the machine the deployment ran on.
	Hostname string
	// Username is the system user who triggered the deployment.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// DetectActor gathers host and user information for the audit trail.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// Record captures the outcome of a single deployment run.
type Record struct {
	// Timestamp is when the run finished.
	Timestamp time.Time
	// Actor is who triggered the run.
	Actor *Actor
	// Branch is the branch that was synced.
	Branch string
	// Head is the commit the working tree pointed at after the sync.
	Head string
	// CodeUpdated reports whether the sync changed the working tree.
	CodeUpdated bool
	// DependenciesInstalled reports whether the install step ran.
	DependenciesInstalled bool
	// Succeeded is the run's overall outcome.
	Succeeded bool
	// Failure holds the failure message for unsuccessful runs.
	Failure string
}

// Clone returns a copy of the record to avoid leaking internal references.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Actor = r.Actor.Clone()

	return &cloned
}
