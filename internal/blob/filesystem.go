package blob

import (
	fsstore "starfieldpedia/internal/infra/blob/fs"
)

// NewFilesystem returns a Store reading documents from the directory root.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}
