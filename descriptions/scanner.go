package descriptions

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/abiharness/utils"
	"github.com/pkg/errors"
)

// DescriptionFileExtension describes the file extension which marks a file as a contract ABI description.
const DescriptionFileExtension = ".json"

// DescriptionFile describes an ABI description discovered on disk, along with the logical contract name derived from
// its file name.
type DescriptionFile struct {
	// Path describes the location of the description file on disk.
	Path string

	// Name describes the logical contract name: the last path segment with the extension removed.
	Name string
}

// NewDescriptionFile creates a DescriptionFile for the provided path, deriving its logical name.
func NewDescriptionFile(path string) DescriptionFile {
	return DescriptionFile{
		Path: path,
		Name: utils.GetFileNameWithoutExtension(path),
	}
}

// Scan walks the directory tree rooted at root and returns a lazy sequence of every regular file whose name ends with
// DescriptionFileExtension. Subdirectories are visited in lexical order, so the sequence is stable for a fixed
// filesystem snapshot. If the root does not exist, ErrRootNotFound is returned before any iteration takes place.
// Errors encountered during traversal are yielded as the second element of the sequence, after which it stops.
func Scan(root string) (iter.Seq2[DescriptionFile, error], error) {
	// Verify the root exists and refers to a directory
	rootInfo, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRootNotFound, "could not scan '%s'", root)
		}
		return nil, errors.WithStack(err)
	}
	if !rootInfo.IsDir() {
		return nil, errors.Errorf("could not scan '%s' because it does not refer to a directory", root)
	}

	return func(yield func(DescriptionFile, error) bool) {
		walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			// Only regular files with the description extension are of interest
			if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), DescriptionFileExtension) {
				return nil
			}

			if !yield(NewDescriptionFile(path), nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil {
			yield(DescriptionFile{}, errors.WithStack(walkErr))
		}
	}, nil
}

// CollectDescriptionFiles drains the sequence produced by Scan for the provided root into a slice.
func CollectDescriptionFiles(root string) ([]DescriptionFile, error) {
	seq, err := Scan(root)
	if err != nil {
		return nil, err
	}

	files := make([]DescriptionFile, 0)
	for file, err := range seq {
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
