package query

import (
	"context"
	"strings"

	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
	"github.com/sitehatch/sitehatch-backend/internal/application/sanitize"
)

type GetPreview struct {
	artifacts interfaces.ArtifactStore
}

func NewGetPreview(artifacts interfaces.ArtifactStore) *GetPreview {
	return &GetPreview{artifacts: artifacts}
}

// Query serves one stored artifact. The submission ID must round-trip
// through canonical encoding and the filename must be on the fixed artifact
// list, so path traversal never reaches storage.
func (c *GetPreview) Query(ctx context.Context, rawID, filename string) ([]byte, string, error) {
	id, ok := sanitize.ID(rawID)
	if !ok {
		return nil, "", errs.InvalidInputError{Msg: "id is not a valid identifier"}
	}
	if filename == "" {
		filename = "index.html"
	}
	if !consts.IsArtifactFile(filename) {
		return nil, "", errs.InvalidInputError{Msg: "file is not a served artifact"}
	}

	content, err := c.artifacts.GetArtifact(ctx, id.String(), filename)
	if err != nil {
		return nil, "", errs.NotFoundError{Entity: "preview", ID: id.String()}
	}
	return content, contentTypeFor(filename), nil
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(filename, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(filename, ".js"):
		return "application/javascript"
	default:
		return "application/octet-stream"
	}
}
