// Package artifact selects which build artifact to deploy.
package artifact

import (
	"context"
	"sort"

	"ghdeploy/internal/models"
)

// Lister is the slice of the API client the locator needs.
type Lister interface {
	ListArtifacts(ctx context.Context, repo string, page int) (models.ArtifactsPage, error)
}

// Locator finds the freshest artifact matching a deploy spec.
type Locator struct {
	client Lister
}

// NewLocator creates a locator backed by the given API client.
func NewLocator(client Lister) *Locator {
	return &Locator{client: client}
}

// Locate retrieves the full artifact listing and returns the freshest record
// matching the spec's name and branch filters. Returns a NoMatchError when
// nothing matches.
func (l *Locator) Locate(ctx context.Context, spec models.DeploySpec) (models.Artifact, error) {
	all, err := l.listAll(ctx, spec.Repo)
	if err != nil {
		return models.Artifact{}, err
	}

	wanted := filter(all, spec.Artifact, spec.Branch)
	if len(wanted) == 0 {
		return models.Artifact{}, &models.NoMatchError{
			Repo:     spec.Repo,
			Artifact: spec.Artifact,
			Branch:   spec.Branch,
		}
	}

	// Stable sort: records tied on the maximum timestamp keep the
	// provider's relative order, and the first one wins.
	sort.SliceStable(wanted, func(i, j int) bool {
		return wanted[i].UpdatedAt.After(wanted[j].UpdatedAt)
	})

	return wanted[0], nil
}

// listAll pages through the listing until the provider-reported total count
// is reached. The page size is provider-defined; termination depends only on
// the total.
func (l *Locator) listAll(ctx context.Context, repo string) ([]models.Artifact, error) {
	page, err := l.client.ListArtifacts(ctx, repo, 1)
	if err != nil {
		return nil, err
	}

	all := page.Artifacts
	for pageNum := 2; len(all) < page.TotalCount; pageNum++ {
		next, err := l.client.ListArtifacts(ctx, repo, pageNum)
		if err != nil {
			return nil, err
		}
		if len(next.Artifacts) == 0 {
			// The provider promised more records than it serves.
			return nil, &models.APIError{
				URL:    repo,
				Detail: "listing ended before reaching the reported total count",
			}
		}
		all = append(all, next.Artifacts...)
	}

	return all, nil
}

func filter(all []models.Artifact, name, branch string) []models.Artifact {
	var wanted []models.Artifact
	for _, art := range all {
		if art.Name != name {
			continue
		}
		if branch != "" && art.WorkflowRun.HeadBranch != branch {
			continue
		}
		wanted = append(wanted, art)
	}
	return wanted
}
