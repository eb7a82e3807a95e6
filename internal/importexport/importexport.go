// Package importexport implements the TOML package dump/restore
// collaborator named in spec §6 ("Import/export collaborators ... expect
// deterministic round-trip of package key/title/description/timestamps").
// It is a thin shell over internal/publishing's public operations: it has
// no authority over versioning/publishing semantics of its own.
package importexport

import (
	"bytes"
	"context"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/tansive/learncore/internal/publishing"
	"github.com/tansive/learncore/internal/store/models"
)

// packageDoc mirrors original_source's TOMLLearningPackageFile layout
// ([learning_package] table with title/key/description/created/updated).
type packageDoc struct {
	LearningPackage packageFields `toml:"learning_package"`
	Entities        []entityDoc   `toml:"entity"`
}

type packageFields struct {
	Title       string    `toml:"title"`
	Key         string    `toml:"key"`
	Description string    `toml:"description"`
	Created     time.Time `toml:"created"`
	Updated     time.Time `toml:"updated"`
}

// entityDoc mirrors original_source's TOMLPublishableEntityFile: entity /
// entity_draft / entity_published sub-tables, keyed by the entity's key so
// round-trip doesn't depend on database-assigned ids.
type entityDoc struct {
	Key           string    `toml:"key"`
	UUID          string    `toml:"uuid"`
	CanStandAlone bool      `toml:"can_stand_alone"`
	Created       time.Time `toml:"created"`

	DraftVersionNum     int32     `toml:"draft_version_num"`
	DraftTitle          string    `toml:"draft_title"`
	DraftCreated        time.Time `toml:"draft_created"`
	HasPublishedVersion bool      `toml:"has_published_version"`
	PublishedVersionNum int32     `toml:"published_version_num"`
}

// ExportPackage renders packageID as a TOML document (spec §6 "TOML-based
// package dump"). Each entity's current draft version_num is recorded so
// RestorePackage can replay it verbatim via force_version_num, matching the
// original's restore path. The published version_num is recorded as well,
// but RestorePackage does not replay it.
func ExportPackage(ctx context.Context, e *publishing.Engine, packageID int64) ([]byte, error) {
	pkg, err := e.GetPackage(ctx, packageID)
	if err != nil {
		return nil, errors.Wrap(err, "get package")
	}
	ents, lerr := e.ListEntitiesByPackage(ctx, packageID)
	if lerr != nil {
		return nil, errors.Wrap(lerr, "list entities")
	}

	doc := packageDoc{
		LearningPackage: packageFields{
			Title:       pkg.Title,
			Key:         pkg.Key,
			Description: pkg.Description,
			Created:     pkg.CreatedAt,
			Updated:     pkg.UpdatedAt,
		},
	}
	for _, ent := range ents {
		ed := entityDoc{Key: ent.Key, UUID: ent.UUID, CanStandAlone: ent.CanStandAlone, Created: ent.CreatedAt}
		if draft, derr := e.GetDraft(ctx, ent.ID); derr != nil {
			return nil, errors.Wrap(derr, "get draft")
		} else if draft != nil {
			ed.DraftVersionNum = draft.VersionNum
			ed.DraftTitle = draft.Title
			ed.DraftCreated = draft.CreatedAt
		}
		if pub, perr := e.GetPublished(ctx, ent.ID); perr != nil {
			return nil, errors.Wrap(perr, "get published")
		} else if pub != nil {
			ed.HasPublishedVersion = true
			ed.PublishedVersionNum = pub.VersionNum
		}
		doc.Entities = append(doc.Entities, ed)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encode toml")
	}
	return buf.Bytes(), nil
}

// RestorePackage recreates a package and its entities/versions from a
// document produced by ExportPackage, replaying each entity's recorded draft
// version_num verbatim via force_version_num (spec §6), grounded on
// original_source's backup_restore restore path always supplying an
// explicit version number rather than letting the database pick one. An
// entity that had a published version gets its restored draft published;
// its published version_num is not restored separately.
func RestorePackage(ctx context.Context, e *publishing.Engine, data []byte, restoredBy string) (*models.LearningPackage, error) {
	var doc packageDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.Wrap(err, "decode toml")
	}

	pkg, err := e.CreatePackage(ctx, doc.LearningPackage.Key, doc.LearningPackage.Title, doc.LearningPackage.Description, doc.LearningPackage.Created)
	if err != nil {
		return nil, errors.Wrap(err, "create package")
	}

	for _, ed := range doc.Entities {
		ent, err := e.CreateEntity(ctx, pkg.ID, ed.Key, restoredBy, ed.CanStandAlone, ed.Created)
		if err != nil {
			return nil, errors.Wrap(err, "create entity "+ed.Key)
		}
		if ed.DraftVersionNum > 0 {
			if _, err := e.CreateVersion(ctx, ent.ID, ed.DraftVersionNum, ed.DraftTitle, restoredBy, ed.DraftCreated); err != nil {
				return nil, errors.Wrap(err, "restore draft version for "+ed.Key)
			}
		}
		if ed.HasPublishedVersion {
			if _, err := e.PublishFromDrafts(ctx, pkg.ID, []int64{ent.ID}, "restored from export", restoredBy); err != nil {
				return nil, errors.Wrap(err, "replay publish for "+ed.Key)
			}
		}
	}
	return pkg, nil
}
