package source

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/nps-cli/internal/model"
)

// Seeder is implemented by sources that accept bulk fixture loads.
type Seeder interface {
	Seed(ctx context.Context, subs []model.Submission) (int64, error)
}

// fixtureFile is the YAML layout of a seed file.
type fixtureFile struct {
	Submissions []model.Submission `yaml:"submissions"`
}

// LoadFixtures decodes submissions from YAML. Entries without an id get a
// random UUID and entries without a status are marked completed.
func LoadFixtures(r io.Reader) ([]model.Submission, error) {
	var f fixtureFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if eris.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "source: decode fixtures")
	}
	for i := range f.Submissions {
		if f.Submissions[i].ID == "" {
			f.Submissions[i].ID = uuid.NewString()
		}
		if f.Submissions[i].Status == "" {
			f.Submissions[i].Status = defaultCompletedStatus
		}
	}
	return f.Submissions, nil
}
