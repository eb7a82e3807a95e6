// Package olximport implements the OLX course import collaborator named in
// spec §6. It is intentionally narrow, mirroring
// original_source/olx_importer/management/commands/load_components.py's
// own admission that it is "quick and hacky ... to validate basic
// questions about the data model": this package only handles the
// create-or-reuse-by-key path for leaf components, and never touches
// versioning/publishing semantics directly — every mutation goes through
// internal/publishing's public operations.
package olximport

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/tansive/learncore/internal/publishing"
	"github.com/tansive/learncore/internal/store/models"
)

// staticRefPattern matches '/static/<path>' references the way the
// original's static_files_regex does, for rewriting into content
// references (spec §6; original_source's create_content/static asset scan).
var staticRefPattern = regexp.MustCompile(`['"]\/static\/(.+?)["'?]`)

// BlockPayload is one OLX block already converted to JSON upstream (this
// package does not parse XML itself; it consumes the JSON an external OLX
// reader hands it, using gjson/sjson to pick fields out of a payload shape
// this repo doesn't own a struct for).
type BlockPayload struct {
	BlockType   string
	URLName     string
	DisplayName string
	RawOLX      string // the block's raw <block_type ...>...</block_type> source
	JSON        string // gjson-queryable metadata blob for this block
}

// ImportComponent creates (or reuses, by external key) a Component entity
// and a new version titled from the block's display name, supplementing the
// spec per SPEC_FULL §3's "component create-or-reuse by external key"
// feature. The static references and block metadata gathered from the
// payload are used only for the title fallback; the version does not store
// the OLX source or the references.
func ImportComponent(ctx context.Context, e *publishing.Engine, packageID int64, block BlockPayload, importedBy string) (*models.PublishableEntity, *models.PublishableEntityVersion, error) {
	externalKey := block.BlockType + ":" + block.URLName

	ent, err := e.GetEntityByKey(ctx, packageID, externalKey)
	if err != nil {
		// zero Time: this collaborator imports live content, not a
		// historical replay, so the entity is stamped with the engine's
		// current clock (spec §4.1 create_package's created? default).
		ent, err = e.Component(ctx, packageID, externalKey, importedBy, time.Time{})
		if err != nil {
			return nil, nil, errors.Wrap(err, "create component "+externalKey)
		}
	}

	augmented := block.JSON
	if augmented == "" {
		augmented = "{}"
	}
	staticRefs := staticRefPattern.FindAllStringSubmatch(block.RawOLX, -1)
	for i, m := range staticRefs {
		augmented, _ = sjson.Set(augmented, "static_refs."+strconv.Itoa(i), m[1])
	}
	augmented, _ = sjson.Set(augmented, "block_type", block.BlockType)
	augmented, _ = sjson.Set(augmented, "url_name", block.URLName)

	title := block.DisplayName
	if title == "" {
		title = gjson.Get(augmented, "display_name").String()
	}

	v, verr := e.CreateNextVersion(ctx, ent.ID, title, importedBy, time.Time{})
	if verr != nil {
		return nil, nil, errors.Wrap(verr, "create version for "+externalKey)
	}
	return ent, v, nil
}
