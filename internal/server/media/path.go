// Package media names and post-processes uploaded profile images.
package media

import (
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/userservice/internal/common"
)

// ProfileImagePath returns a fresh storage path for an uploaded file,
// keeping the original extension.
func ProfileImagePath(filename string) string {
	return path.Join(common.ProfileImageDir, uuid.NewString()+filepath.Ext(filename))
}
